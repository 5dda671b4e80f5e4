package digest

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSubscriberFileRepo_CRUD(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "subscriptions.json")
	repo, err := NewFileRepository(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	s1 := Subscriber{ChatID: 1, SubscribedAt: time.Unix(10, 0).UTC()}
	s2 := Subscriber{ChatID: 2, SubscribedAt: time.Unix(20, 0).UTC()}
	if err := repo.Upsert(s1); err != nil {
		t.Fatalf("upsert1: %v", err)
	}
	if err := repo.Upsert(s2); err != nil {
		t.Fatalf("upsert2: %v", err)
	}
	// upserting an existing chat must not duplicate it
	if err := repo.Upsert(s1); err != nil {
		t.Fatalf("upsert1 again: %v", err)
	}

	items, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2, got %d", len(items))
	}

	if err := repo.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = repo.LoadAll()
	if len(items) != 1 || items[0].ChatID != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
}
