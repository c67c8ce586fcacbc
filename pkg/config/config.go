// Package config loads cardgrid's TOML configuration.
//
// Every tunable of the layout and reconciliation engine has a default in
// [Default]; a file only needs the keys it changes:
//
//	[grid]
//	rows_per_load = 4
//	resize_interval = "100ms"
//
//	[cache]
//	backend = "redis"
//	redis.addr = "localhost:6379"
//
// Command-line flags override file values.
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/layout"
	"github.com/matzehuels/cardgrid/pkg/prefetch"
	"github.com/matzehuels/cardgrid/pkg/present"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

// Duration is a time.Duration written as a string ("80ms") in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreCache = "cache"
	StoreMongo = "mongo"
)

// Config is the whole configuration file.
type Config struct {
	Layout     layout.Config `toml:"layout"`
	Grid       Grid          `toml:"grid"`
	Render     Render        `toml:"render"`
	Thumbnails Thumbnails    `toml:"thumbnails"`
	Prefetch   Prefetch      `toml:"prefetch"`
	Cache      Cache         `toml:"cache"`
	Store      Store         `toml:"store"`
	Server     Server        `toml:"server"`
}

// Grid holds pagination and resize tunables.
type Grid struct {
	InitialVisibleRows      int      `toml:"initial_visible_rows"`
	RowsPerLoad             int      `toml:"rows_per_load"`
	CompactBreakpoint       float64  `toml:"compact_breakpoint"`
	ReducedColumnBreakpoint float64  `toml:"reduced_column_breakpoint"`
	NoiseFloor              float64  `toml:"noise_floor"`
	ResizeInterval          Duration `toml:"resize_interval"`
	EnterTransition         Duration `toml:"enter_transition"`
	LoadMoreKey             string   `toml:"load_more_key"`
}

type Render struct {
	LayoutMode string `toml:"layout_mode"`
	ShowPrice  bool   `toml:"show_price"`
}

type Thumbnails struct {
	Dir     string `toml:"dir"`
	BaseURL string `toml:"base_url"`
	Small   bool   `toml:"small"`

	// Overrides maps a card name to an explicit image location.
	Overrides map[string]string `toml:"overrides"`
}

type Prefetch struct {
	Enabled    bool     `toml:"enabled"`
	Workers    int      `toml:"workers"`
	QueueSize  int      `toml:"queue_size"`
	Rate       float64  `toml:"rate"`
	Burst      int      `toml:"burst"`
	Timeout    Duration `toml:"timeout"`
	Attempts   int      `toml:"attempts"`
	RetryDelay Duration `toml:"retry_delay"`
}

type Cache struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Prefix  string            `toml:"prefix"`
	Redis   cache.RedisConfig `toml:"redis"`
}

type Store struct {
	Backend string                `toml:"backend"`
	Mongo   viewstate.MongoConfig `toml:"mongo"`
}

type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	g := grid.DefaultConfig()
	return Config{
		Layout: g.Layout,
		Grid: Grid{
			InitialVisibleRows:      g.InitialVisibleRows,
			RowsPerLoad:             g.RowsPerLoad,
			CompactBreakpoint:       g.CompactBreakpoint,
			ReducedColumnBreakpoint: g.ReducedColumnBreakpoint,
			NoiseFloor:              g.NoiseFloor,
			ResizeInterval:          Duration(g.ResizeInterval),
			EnterTransition:         Duration(g.EnterTransition),
			LoadMoreKey:             g.LoadMoreKey,
		},
		Render:     Render{LayoutMode: string(grid.ModeAuto)},
		Thumbnails: Thumbnails{BaseURL: present.DefaultBaseURL},
		Prefetch: Prefetch{
			Enabled:    true,
			Workers:    prefetch.DefaultWorkers,
			QueueSize:  prefetch.DefaultQueueSize,
			Rate:       prefetch.DefaultRate,
			Burst:      prefetch.DefaultBurst,
			Timeout:    Duration(prefetch.DefaultTimeout),
			Attempts:   prefetch.DefaultAttempts,
			RetryDelay: Duration(prefetch.DefaultRetryDelay),
		},
		Cache: Cache{Backend: CacheFile},
		Store: Store{
			Backend: StoreCache,
			Mongo: viewstate.MongoConfig{
				Database:   viewstate.DefaultMongoDatabase,
				Collection: viewstate.DefaultMongoCollection,
			},
		},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns ~/.config/cardgrid/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cardgrid.toml"
	}
	return filepath.Join(dir, "cardgrid", "config.toml")
}

// Load overlays the file at path on the defaults and validates the result.
// An empty path loads DefaultPath when it exists and the defaults otherwise.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return cfg, nil
			}
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports every invalid value.
func (c Config) Validate() error {
	_, modeErr := grid.ParseLayoutMode(c.Render.LayoutMode)
	errs := []error{
		c.GridConfig().Validate(),
		modeErr,
		errors.ValidatePositive("prefetch.workers", float64(c.Prefetch.Workers)),
		errors.ValidatePositive("prefetch.queue_size", float64(c.Prefetch.QueueSize)),
		errors.ValidatePositive("prefetch.rate", c.Prefetch.Rate),
		errors.ValidatePositive("prefetch.attempts", float64(c.Prefetch.Attempts)),
		errors.ValidateOneOf(errors.ErrCodeInvalidBackend, "cache.backend", c.Cache.Backend, false, CacheFile, CacheRedis, CacheNone),
		errors.ValidateOneOf(errors.ErrCodeInvalidBackend, "store.backend", c.Store.Backend, false, StoreCache, StoreMongo),
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend"))
	}
	if c.Store.Backend == StoreMongo && c.Store.Mongo.URI == "" {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, "store.mongo.uri is required for the mongo backend"))
	}
	if c.Store.Backend == StoreCache && c.Cache.Backend == CacheNone {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, "store.backend %q needs a cache backend other than %q", StoreCache, CacheNone))
	}
	if len(c.Grid.LoadMoreKey) != 1 {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, "grid.load_more_key must be a single character, got %q", c.Grid.LoadMoreKey))
	}
	return errors.Join(errs...)
}

// GridConfig returns the engine configuration.
func (c Config) GridConfig() grid.Config {
	return grid.Config{
		Layout:                  c.Layout,
		InitialVisibleRows:      c.Grid.InitialVisibleRows,
		RowsPerLoad:             c.Grid.RowsPerLoad,
		CompactBreakpoint:       c.Grid.CompactBreakpoint,
		ReducedColumnBreakpoint: c.Grid.ReducedColumnBreakpoint,
		NoiseFloor:              c.Grid.NoiseFloor,
		ResizeInterval:          c.Grid.ResizeInterval.Std(),
		EnterTransition:         c.Grid.EnterTransition.Std(),
		LoadMoreKey:             c.Grid.LoadMoreKey,
	}
}

// RenderOptions returns the initial render options. The mode is validated
// by Load.
func (c Config) RenderOptions() grid.RenderOptions {
	mode, err := grid.ParseLayoutMode(c.Render.LayoutMode)
	if err != nil {
		mode = grid.ModeAuto
	}
	return grid.RenderOptions{LayoutMode: mode, ShowPrice: c.Render.ShowPrice}
}

// Resolver returns the thumbnail resolver.
func (c Config) Resolver() present.Thumbnails {
	return present.Thumbnails{Dir: c.Thumbnails.Dir, BaseURL: c.Thumbnails.BaseURL}
}

// PrefetchOptions returns prefetcher options without the client, keyer and
// logger, which the caller supplies.
func (c Config) PrefetchOptions() prefetch.Options {
	p := c.Prefetch
	return prefetch.Options{
		Workers:    p.Workers,
		QueueSize:  p.QueueSize,
		Rate:       p.Rate,
		Burst:      p.Burst,
		Timeout:    p.Timeout.Std(),
		Attempts:   p.Attempts,
		RetryDelay: p.RetryDelay.Std(),
		Small:      c.Thumbnails.Small,
		Overrides:  c.Thumbnails.Overrides,
		Keyer:      c.Keyer(),
	}
}

// Keyer returns the cache keyer scoped by cache.prefix.
func (c Config) Keyer() cache.Keyer {
	return cache.NewScopedKeyer(c.Cache.Prefix)
}

// OpenCache opens the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.Redis)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(c.Cache.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// OpenStore opens the configured view store. The cache backend is used
// when store.backend is "cache"; the store then owns it.
func (c Config) OpenStore(ctx context.Context, cc cache.Cache) (viewstate.Store, error) {
	if c.Store.Backend == StoreMongo {
		ms, err := viewstate.NewMongoStore(ctx, c.Store.Mongo)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	return viewstate.NewCacheStore(cc, c.Keyer(), cache.ViewTTL), nil
}
