package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateGUIDFormat(t *testing.T) {
	id, err := GenerateGUID("usr")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(id, "usr-") {
		t.Fatalf("expected usr- prefix, got %s", id)
	}
	if len(id) != len("usr-")+8 {
		t.Fatalf("unexpected length: %s", id)
	}
	for _, r := range id[len("usr-"):] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			t.Fatalf("unexpected character %q in %s", r, id)
		}
	}
}

func TestGenerateGUIDTrimsTrailingDash(t *testing.T) {
	id, err := GenerateGUID("msg-")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.HasPrefix(id, "msg--") {
		t.Fatalf("double dash in %s", id)
	}
	if !strings.HasPrefix(id, "msg-") {
		t.Fatalf("expected msg- prefix, got %s", id)
	}
}

func TestGenerateGUIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewMessageID()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestSessionValid(t *testing.T) {
	if (Session{}).Valid() {
		t.Fatal("empty session must be invalid")
	}
	if !(Session{UserID: "usr-x"}).Valid() {
		t.Fatal("expected valid session")
	}
}

func TestInitAndDiscoverStore(t *testing.T) {
	root := t.TempDir()

	store, err := InitStore(root, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if store.DBPath != filepath.Join(root, ".ripple", "chat.db") {
		t.Fatalf("unexpected db path %s", store.DBPath)
	}

	// Discovery requires the database file itself, not just the directory.
	if _, err := DiscoverStore(root); err == nil {
		t.Fatal("expected discovery failure before db file exists")
	}
	if err := os.WriteFile(store.DBPath, []byte{}, 0o644); err != nil {
		t.Fatalf("touch db: %v", err)
	}

	// Discovery walks up from nested directories.
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := DiscoverStore(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if found.Root != store.Root || found.DBPath != store.DBPath {
		t.Fatalf("discovery mismatch: %+v vs %+v", found, store)
	}
}

func TestInitStoreRefusesReinit(t *testing.T) {
	root := t.TempDir()
	store, err := InitStore(root, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(store.DBPath, []byte{}, 0o644); err != nil {
		t.Fatalf("touch db: %v", err)
	}

	if _, err := InitStore(root, false); err == nil {
		t.Fatal("expected error without --force")
	}
	if _, err := InitStore(root, true); err != nil {
		t.Fatalf("force reinit: %v", err)
	}
}
