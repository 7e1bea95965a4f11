package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/example/salon-agenda/internal/db"
	"github.com/example/salon-agenda/internal/migrate"
	"github.com/redis/go-redis/v9"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported DATA_URL scheme")

	// ErrMissing is returned by every Resource whose document does not exist
	// yet: no file, HTTP 404, no postgres row, no redis key.
	ErrMissing = errors.New("document missing")
)

type Options struct {
	DocumentName string
	RedisKey     string
	Migrate      bool
}

// Open picks the resource backend from the scheme of dataURL. The returned
// closer releases pools/clients and is never nil.
func Open(ctx context.Context, dataURL string, opts Options) (Resource, io.Closer, error) {
	scheme := ""
	if i := strings.Index(dataURL, "://"); i > 0 {
		scheme = strings.ToLower(dataURL[:i])
	}

	switch scheme {
	case "":
		return NewFileResource(dataURL), nopCloser{}, nil
	case "file":
		u, err := url.Parse(dataURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse DATA_URL: %w", err)
		}
		return NewFileResource(u.Host + u.Path), nopCloser{}, nil
	case "http", "https":
		return NewHTTPResource(dataURL, nil), nopCloser{}, nil
	case "postgres", "postgresql":
		d, err := db.Open(ctx, dataURL)
		if err != nil {
			return nil, nil, err
		}
		if err := d.Ping(ctx); err != nil {
			d.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		if opts.Migrate {
			if err := migrate.Up(ctx, d); err != nil {
				d.Close()
				return nil, nil, err
			}
		}
		return NewPostgresResource(d, documentName(opts)), closerFunc(func() error { d.Close(); return nil }), nil
	case "redis", "rediss":
		ro, err := redis.ParseURL(dataURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse DATA_URL: %w", err)
		}
		rdb := redis.NewClient(ro)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		key := opts.RedisKey
		if key == "" {
			key = "salonagenda:data"
		}
		r := NewRedisResource(rdb, key)
		return r, r, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

func documentName(opts Options) string {
	if opts.DocumentName == "" {
		return "default"
	}
	return opts.DocumentName
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
