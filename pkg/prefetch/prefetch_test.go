package prefetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/present"
)

func imageServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if strings.Contains(r.URL.Path, "999") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("img:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func testItems() []card.Item {
	return []card.Item{
		{Name: "Iono", Set: "PAL", Number: "185"},
		{Name: "Arven", Set: "SVI", Number: "166"},
		{Name: "Arven", Set: "SVI", Number: "166"},
		{Name: "Missing", Set: "SVI", Number: "999"},
		{Name: "No Printing"},
	}
}

func newTestPrefetcher(t *testing.T, srv *httptest.Server, opts Options) (*Prefetcher, cache.Cache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts.Client = srv.Client()
	opts.Rate = 1000
	opts.RetryDelay = time.Millisecond
	return New(present.Thumbnails{BaseURL: srv.URL}, c, opts), c
}

func TestURLs(t *testing.T) {
	srv, _ := imageServer(t)
	p, _ := newTestPrefetcher(t, srv, Options{})
	urls := p.URLs(testItems())
	if len(urls) != 3 {
		t.Fatalf("URLs() = %v, want 3 unique remote URLs", urls)
	}
	if urls[0] != srv.URL+"/PAL/PAL_185_R_EN_SM.png" {
		t.Errorf("urls[0] = %s", urls[0])
	}
}

func TestWarm(t *testing.T) {
	srv, requests := imageServer(t)
	p, c := newTestPrefetcher(t, srv, Options{Workers: 2})
	ctx := context.Background()

	var last int
	stats, err := p.Warm(ctx, testItems(), func(done, total int) { last = max(last, done) })
	if err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if stats.Fetched != 2 || stats.Failed != 1 || stats.Queued != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if last != 3 {
		t.Errorf("progress reached %d, want 3", last)
	}

	data, hit, err := p.Thumbnail(ctx, srv.URL+"/PAL/PAL_185_R_EN_SM.png")
	if err != nil || !hit || string(data) != "img:/PAL/PAL_185_R_EN_SM.png" {
		t.Errorf("Thumbnail = %q, %v, %v", data, hit, err)
	}
	c.Close()

	// A second pass is served from the cache.
	n := requests.Load()
	stats, _ = p.Warm(ctx, testItems(), nil)
	if stats.Cached != 2 || stats.Fetched != 0 {
		t.Errorf("second pass stats = %+v", stats)
	}
	if got := requests.Load() - n; got != 1 {
		t.Errorf("second pass made %d requests, want 1 (the 404)", got)
	}
}

func TestPrefetchNeverBlocks(t *testing.T) {
	srv, _ := imageServer(t)
	p, _ := newTestPrefetcher(t, srv, Options{QueueSize: 1})

	done := make(chan struct{})
	go func() {
		p.Prefetch(testItems())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Prefetch blocked with no workers running")
	}

	st := p.Stats()
	if st.Queued != 1 || st.Dropped != 2 {
		t.Errorf("stats = %+v, want 1 queued, 2 dropped", st)
	}

	// The queued URL is not offered again; the dropped ones are.
	p.Prefetch(testItems())
	if st := p.Stats(); st.Queued != 1 || st.Dropped != 4 {
		t.Errorf("stats after retry = %+v, want 1 queued, 4 dropped", st)
	}
}

func TestRunDrainsQueue(t *testing.T) {
	srv, _ := imageServer(t)
	p, _ := newTestPrefetcher(t, srv, Options{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx) }()

	p.Prefetch(testItems())

	deadline := time.Now().Add(5 * time.Second)
	for {
		st := p.Stats()
		if st.Fetched+st.Failed == 3 {
			if st.Queued != 3 || st.Fetched != 2 {
				t.Errorf("stats = %+v", st)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("queue not drained: %+v", st)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Run = %v", err)
	}
}
