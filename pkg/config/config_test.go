package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultMatchesEngine(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	got, want := cfg.GridConfig(), grid.DefaultConfig()
	if got != want {
		t.Errorf("GridConfig() = %+v, want %+v", got, want)
	}
	if cfg.RenderOptions().LayoutMode != grid.ModeAuto {
		t.Errorf("default layout mode = %q", cfg.RenderOptions().LayoutMode)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeFile(t, `
[layout]
gap = 8

[grid]
rows_per_load = 4
resize_interval = "100ms"

[render]
layout_mode = "compact"
show_price = true

[cache]
backend = "none"
prefix = "season:"

[store]
backend = "mongo"
mongo.uri = "mongodb://localhost:27017"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Layout.Gap != 8 {
		t.Errorf("gap = %v, want 8", cfg.Layout.Gap)
	}
	if cfg.Layout.BaseCardWidth != Default().Layout.BaseCardWidth {
		t.Errorf("unset layout keys must keep defaults, base = %v", cfg.Layout.BaseCardWidth)
	}
	gc := cfg.GridConfig()
	if gc.RowsPerLoad != 4 || gc.ResizeInterval != 100*time.Millisecond {
		t.Errorf("grid = %+v", gc)
	}
	if gc.InitialVisibleRows != grid.DefaultInitialVisibleRows {
		t.Errorf("initial rows = %d", gc.InitialVisibleRows)
	}
	opts := cfg.RenderOptions()
	if opts.LayoutMode != grid.ModeCompact || !opts.ShowPrice {
		t.Errorf("render = %+v", opts)
	}
	if cfg.Store.Mongo.URI != "mongodb://localhost:27017" || cfg.Store.Mongo.Database != viewstate.DefaultMongoDatabase {
		t.Errorf("mongo = %+v", cfg.Store.Mongo)
	}
	if got := cfg.Keyer().ViewKey("x"); got != "season:view:x" {
		t.Errorf("scoped ViewKey = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[grid\nrows_per_load = 4", errors.ErrCodeInvalidConfig},
		{"unknown key", "[grid]\nrows_per_lod = 4", errors.ErrCodeInvalidConfig},
		{"bad duration", "[grid]\nresize_interval = \"soon\"", errors.ErrCodeInvalidConfig},
		{"bad mode", "[render]\nlayout_mode = \"tiny\"", errors.ErrCodeInvalidLayoutMode},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidBackend},
		{"redis without addr", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidConfig},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", errors.ErrCodeInvalidConfig},
		{"store on null cache", "[cache]\nbackend = \"none\"", errors.ErrCodeInvalidConfig},
		{"negative gap", "[layout]\ngap = -1", errors.ErrCodeInvalidConfig},
		{"long key", "[grid]\nload_more_key = \"more\"", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Grid.EnterTransition = Duration(300 * time.Millisecond)
	cfg.Thumbnails.Overrides = map[string]string{"PAR-001": "https://example.com/a.png"}

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`enter_transition = "300ms"`)) {
		t.Errorf("durations must be written as strings:\n%s", buf.String())
	}

	loaded, err := Load(writeFile(t, buf.String()))
	if err != nil {
		t.Fatalf("Load(written): %v", err)
	}
	if loaded.GridConfig() != cfg.GridConfig() {
		t.Errorf("grid config changed across write/load")
	}
	if loaded.Thumbnails.Overrides["PAR-001"] != "https://example.com/a.png" {
		t.Errorf("overrides = %v", loaded.Thumbnails.Overrides)
	}
}

func TestOpenCacheAndStore(t *testing.T) {
	ctx := context.Background()
	cfg := Default()
	cfg.Cache.Dir = t.TempDir()

	c, err := cfg.OpenCache(ctx)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("OpenCache() = %T, want *cache.FileCache", c)
	}

	store, err := cfg.OpenStore(ctx, c)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*viewstate.CacheStore); !ok {
		t.Errorf("OpenStore() = %T, want *viewstate.CacheStore", store)
	}

	cfg.Cache.Backend = CacheNone
	nc, err := cfg.OpenCache(ctx)
	if err != nil {
		t.Fatalf("OpenCache(none): %v", err)
	}
	if _, ok, _ := nc.Get(ctx, "k"); ok {
		t.Error("null cache returned a hit")
	}
}
