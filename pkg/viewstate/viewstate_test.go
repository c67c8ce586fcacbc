package viewstate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

func newStore(t *testing.T) *CacheStore {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	s := NewCacheStore(fc, nil, 0)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCacheStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := NewID()
	in := Snapshot{
		ID:          id,
		VisibleRows: 14,
		Width:       1024,
		Render:      grid.RenderOptions{LayoutMode: grid.ModeCompact, ShowPrice: true},
		UpdatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.ID != in.ID || out.VisibleRows != in.VisibleRows || out.Width != in.Width ||
		out.Render != in.Render || !out.UpdatedAt.Equal(in.UpdatedAt) {
		t.Errorf("Get = %+v, want %+v", out, in)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeViewNotFound) {
		t.Errorf("Get after delete: err = %v, want VIEW_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestCacheStoreSetsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := NewID()
	if err := s.Save(ctx, Snapshot{ID: id, VisibleRows: 6}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set on save")
	}
}

func TestInvalidID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, id := range []string{"", "view-1", "../etc/passwd"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Get(%q) err = %v, want INVALID_INPUT", id, err)
		}
		if err := s.Save(ctx, Snapshot{ID: id}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Save(%q) err = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestCaptureAndRestore(t *testing.T) {
	items := make([]card.Item, 60)
	for i := range items {
		items[i] = card.Item{Name: fmt.Sprintf("Card %02d", i), UID: fmt.Sprintf("uid-%02d", i), Found: 60 - i, Total: 60}
	}

	g := grid.New(surface.New(), grid.Options{})
	defer g.Unmount()
	g.Render(items, 1000)
	g.LoadMore()

	id := NewID()
	snap := Capture(id, g)
	st := g.State()
	if snap.ID != id || snap.VisibleRows != st.VisibleRowsLimit || snap.Width != 1000 {
		t.Fatalf("Capture = %+v, state = %+v", snap, st)
	}

	ctx := context.Background()
	s := newStore(t)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	restored := grid.New(surface.New(), grid.Options{})
	defer restored.Unmount()
	restored.Restore(items, loaded.Width, loaded.VisibleRows, loaded.Render)

	if got, want := len(restored.Tree().Rows()), len(g.Tree().Rows()); got != want {
		t.Errorf("restored rows = %d, want %d", got, want)
	}
	if got, want := restored.Summary(), g.Summary(); got != want {
		t.Errorf("restored summary = %+v, want %+v", got, want)
	}
}
