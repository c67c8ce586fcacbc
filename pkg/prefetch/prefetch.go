// Package prefetch downloads card thumbnails in the background so the grid
// never waits on images.
//
// [Prefetcher.Prefetch] only enqueues: it never blocks, and URLs that do not
// fit in the queue are dropped. Workers started by [Prefetcher.Run] drain
// the queue at a polite rate, retrying transient failures, and store the
// images in a [cache.Cache]. [Prefetcher.Warm] does the same work
// synchronously for the `cardgrid prefetch` command.
package prefetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/httputil"
	"github.com/matzehuels/cardgrid/pkg/observability"
	"github.com/matzehuels/cardgrid/pkg/present"
)

// Default options.
const (
	DefaultWorkers    = 4
	DefaultQueueSize  = 256
	DefaultRate       = 8.0
	DefaultBurst      = 4
	DefaultTimeout    = 10 * time.Second
	DefaultAttempts   = 3
	DefaultRetryDelay = 500 * time.Millisecond

	// maxRetryWait caps a server-requested Retry-After wait.
	maxRetryWait = 10 * time.Second
)

// Options configures a Prefetcher. Zero fields take the defaults.
type Options struct {
	Workers   int
	QueueSize int

	// Rate is the request rate in requests per second.
	Rate  float64
	Burst int

	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration

	// Small fetches the XS image variant.
	Small     bool
	Overrides map[string]string

	Client *http.Client
	Keyer  cache.Keyer
	Logger *log.Logger
}

func (o *Options) defaults() {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.Rate <= 0 {
		o.Rate = DefaultRate
	}
	if o.Burst <= 0 {
		o.Burst = DefaultBurst
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Stats counts prefetch outcomes.
type Stats struct {
	Queued  int64 `json:"queued"`
	Dropped int64 `json:"dropped"`
	Cached  int64 `json:"cached"`
	Fetched int64 `json:"fetched"`
	Failed  int64 `json:"failed"`
}

// Prefetcher fetches thumbnails into a cache.
type Prefetcher struct {
	opts     Options
	resolver present.ThumbnailResolver
	cache    cache.Cache
	limiter  *rate.Limiter
	queue    chan string

	mu   sync.Mutex
	seen map[string]bool

	queued, dropped, cached, fetched, failed atomic.Int64
}

// New returns a Prefetcher resolving thumbnails with resolver into c.
func New(resolver present.ThumbnailResolver, c cache.Cache, opts Options) *Prefetcher {
	opts.defaults()
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Prefetcher{
		opts:     opts,
		resolver: resolver,
		cache:    c,
		limiter:  rate.NewLimiter(rate.Limit(opts.Rate), opts.Burst),
		queue:    make(chan string, opts.QueueSize),
		seen:     make(map[string]bool),
	}
}

// URLs returns the remote thumbnail URL of every item that has one, once each.
func (p *Prefetcher) URLs(items []card.Item) []string {
	var urls []string
	dup := make(map[string]bool)
	for _, it := range items {
		u := p.remote(it)
		if u == "" || dup[u] {
			continue
		}
		dup[u] = true
		urls = append(urls, u)
	}
	return urls
}

func (p *Prefetcher) remote(it card.Item) string {
	ref := present.Ref{Set: it.Set, Number: string(it.Number)}
	for _, c := range p.resolver.Candidates(it.Name, p.opts.Small, p.opts.Overrides, ref) {
		if strings.HasPrefix(c, "https://") || strings.HasPrefix(c, "http://") {
			return c
		}
	}
	return ""
}

// Prefetch enqueues the thumbnails of items without blocking. URLs already
// enqueued once are skipped; URLs that do not fit in the queue are dropped.
func (p *Prefetcher) Prefetch(items []card.Item) {
	for _, u := range p.URLs(items) {
		p.mu.Lock()
		if p.seen[u] {
			p.mu.Unlock()
			continue
		}
		p.seen[u] = true
		p.mu.Unlock()

		select {
		case p.queue <- u:
			p.queued.Add(1)
		default:
			p.dropped.Add(1)
			p.forget(u)
		}
	}
}

func (p *Prefetcher) forget(u string) {
	p.mu.Lock()
	delete(p.seen, u)
	p.mu.Unlock()
}

// Run drains the queue with Options.Workers workers until ctx is done.
func (p *Prefetcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for range p.opts.Workers {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case u := <-p.queue:
					if err := p.fetch(ctx, u); err != nil {
						p.forget(u)
						p.opts.Logger.Debug("prefetch failed", "url", u, "error", err)
					}
				}
			}
		})
	}
	return g.Wait()
}

// Warm fetches the thumbnails of items and waits for all of them. Individual
// failures are counted, not returned; only cancellation is an error.
func (p *Prefetcher) Warm(ctx context.Context, items []card.Item, progress func(done, total int)) (Stats, error) {
	urls := p.URLs(items)
	before := p.Stats()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	var done atomic.Int64
	for _, u := range urls {
		g.Go(func() error {
			if err := p.fetch(gctx, u); err != nil {
				p.opts.Logger.Debug("prefetch failed", "url", u, "error", err)
			}
			n := done.Add(1)
			if progress != nil {
				progress(int(n), len(urls))
			}
			return nil
		})
	}
	_ = g.Wait()

	after := p.Stats()
	delta := Stats{
		Queued:  int64(len(urls)),
		Cached:  after.Cached - before.Cached,
		Fetched: after.Fetched - before.Fetched,
		Failed:  after.Failed - before.Failed,
	}
	return delta, ctx.Err()
}

func (p *Prefetcher) fetch(ctx context.Context, u string) error {
	key := p.opts.Keyer.ThumbKey(u)
	hooks := observability.Cache()

	if _, hit, err := p.cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, cache.KeyType(key))
		p.cached.Add(1)
		return nil
	}
	hooks.OnCacheMiss(ctx, cache.KeyType(key))

	var body []byte
	backoff := httputil.Backoff{
		Attempts: p.opts.Attempts,
		Delay:    p.opts.RetryDelay,
		Max:      maxRetryWait,
		OnRetry: func(attempt int, err error) {
			p.opts.Logger.Debug("retrying thumbnail", "url", u, "attempt", attempt, "error", err)
		},
	}
	err := backoff.Do(ctx, func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		body, err = httputil.Fetch(ctx, p.opts.Client, u)
		return err
	})
	if err != nil {
		p.failed.Add(1)
		return err
	}

	if err := p.cache.Set(ctx, key, body, cache.ThumbTTL); err != nil {
		p.failed.Add(1)
		return err
	}
	hooks.OnCacheSet(ctx, cache.KeyType(key), len(body))
	p.fetched.Add(1)
	return nil
}

// Stats returns the counters since the Prefetcher was created.
func (p *Prefetcher) Stats() Stats {
	return Stats{
		Queued:  p.queued.Load(),
		Dropped: p.dropped.Load(),
		Cached:  p.cached.Load(),
		Fetched: p.fetched.Load(),
		Failed:  p.failed.Load(),
	}
}

// Thumbnail returns a cached thumbnail for url.
func (p *Prefetcher) Thumbnail(ctx context.Context, url string) ([]byte, bool, error) {
	return p.cache.Get(ctx, p.opts.Keyer.ThumbKey(url))
}
