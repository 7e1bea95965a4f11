package store

import (
	"context"
	"fmt"

	"github.com/example/salon-agenda/internal/db"
)

// PostgresResource keeps the document as one JSONB row of agenda_documents,
// keyed by name. The table comes from the embedded migrations.
type PostgresResource struct {
	db   *db.DB
	name string
}

func NewPostgresResource(d *db.DB, name string) *PostgresResource {
	return &PostgresResource{db: d, name: name}
}

func (p *PostgresResource) Read(ctx context.Context) ([]byte, error) {
	var body string
	err := p.db.QueryRow(ctx, `SELECT body::text FROM agenda_documents WHERE name=$1`, p.name).Scan(&body)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("document %q: %w", p.name, ErrMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", p.name, err)
	}
	return []byte(body), nil
}

func (p *PostgresResource) Write(ctx context.Context, body []byte) error {
	err := p.db.Exec(ctx, `
INSERT INTO agenda_documents(name, body, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (name) DO UPDATE SET body=EXCLUDED.body, updated_at=now()`,
		p.name, string(body))
	if err != nil {
		return fmt.Errorf("upsert document %q: %w", p.name, err)
	}
	return nil
}

func (p *PostgresResource) String() string { return "postgres:agenda_documents/" + p.name }
