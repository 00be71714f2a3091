package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artpar/mailcraft/adapters/memory"
	"github.com/artpar/mailcraft/domain/export"
)

func TestExportStore_SaveAndGet(t *testing.T) {
	store := memory.NewExportStore()
	ctx := context.Background()

	rec := export.Record{ID: "e1", DocumentID: "doc", HTML: "<table>", Skipped: []string{"m1"}}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	rec.Skipped[0] = "mutated"

	got, err := store.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.HTML != "<table>" {
		t.Errorf("HTML = %q, want <table>", got.HTML)
	}
	if got.Skipped[0] != "m1" {
		t.Errorf("Skipped = %v, want [m1]", got.Skipped)
	}

	if err := store.Save(ctx, export.Record{ID: "e1"}); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestExportStore_NotFound(t *testing.T) {
	store := memory.NewExportStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	if _, err := store.Latest(ctx, "nope"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("Latest error = %v, want ErrNotFound", err)
	}
}

func TestExportStore_Ordering(t *testing.T) {
	store := memory.NewExportStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	saves := []export.Record{
		{ID: "old", DocumentID: "doc", CreatedAt: base},
		{ID: "new", DocumentID: "doc", CreatedAt: base.Add(time.Hour)},
		{ID: "tie", DocumentID: "doc", CreatedAt: base.Add(time.Hour)},
		{ID: "other", DocumentID: "doc-2", CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, r := range saves {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save %s: %v", r.ID, err)
		}
	}

	list, _ := store.ListByDocument(ctx, "doc", 0)
	want := []string{"tie", "new", "old"}
	if len(list) != len(want) {
		t.Fatalf("len = %d, want %d", len(list), len(want))
	}
	for i, r := range list {
		if r.ID != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, r.ID, want[i])
		}
	}

	limited, _ := store.ListByDocument(ctx, "doc", 1)
	if len(limited) != 1 || limited[0].ID != "tie" {
		t.Errorf("limited = %v, want [tie]", limited)
	}

	latest, _ := store.Latest(ctx, "doc")
	if latest.ID != "tie" {
		t.Errorf("Latest = %s, want tie", latest.ID)
	}

	if n, _ := store.Count(ctx, "doc"); n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}
