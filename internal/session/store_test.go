package session

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGetOrCreateIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	first, err := store.GetOrCreate(42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(first, "chat_") {
		t.Fatalf("unexpected session id format: %q", first)
	}

	second, err := store.GetOrCreate(42)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if second != first {
		t.Fatalf("session id regenerated: %q != %q", second, first)
	}

	// A fresh store over the same file must see the same id.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	third, err := reopened.GetOrCreate(42)
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if third != first {
		t.Fatalf("session id not persisted: %q != %q", third, first)
	}

	other, err := store.GetOrCreate(43)
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	if other == first {
		t.Fatalf("distinct chats share a session id")
	}
}

func TestThemeRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := store.Theme(1); got != ThemeFull {
		t.Fatalf("default theme = %q, want %q", got, ThemeFull)
	}
	if err := store.SetTheme(1, ThemeCompact); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if got := store.Theme(1); got != ThemeCompact {
		t.Fatalf("theme = %q, want %q", got, ThemeCompact)
	}

	// Setting the theme must not disturb an existing session id.
	id, err := store.GetOrCreate(1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SetTheme(1, ThemeFull); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	again, _ := store.GetOrCreate(1)
	if again != id {
		t.Fatalf("theme write regenerated session id")
	}
}
