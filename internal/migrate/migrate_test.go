package migrate

import (
	"strings"
	"testing"
)

func TestFiles_SortedAndEmbedded(t *testing.T) {
	files, err := Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	if files[0] != "0001_agenda_documents.sql" {
		t.Fatalf("expected 0001_agenda_documents.sql first, got %s", files[0])
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Fatalf("migrations not sorted: %v", files)
		}
	}
	b, err := fs.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "agenda_documents") {
		t.Fatalf("first migration does not create agenda_documents")
	}
}
