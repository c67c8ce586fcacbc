package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

func makeItems(n int) []card.Item {
	items := make([]card.Item, n)
	for i := range items {
		items[i] = card.Item{
			Name:  fmt.Sprintf("Card %02d", i),
			UID:   fmt.Sprintf("uid-%02d", i),
			Found: n - i,
			Total: n,
		}
	}
	return items
}

type viewBody struct {
	Data struct {
		ID      string             `json:"id"`
		Summary grid.Summary       `json:"summary"`
		Width   float64            `json:"width"`
		Render  grid.RenderOptions `json:"render"`
		Focused string             `json:"focused"`
		Tree    json.RawMessage    `json:"tree"`
		Result  json.RawMessage    `json:"result"`
	} `json:"data"`
}

type errorBody struct {
	Code string `json:"code"`
}

func newStore(t *testing.T) viewstate.Store {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return viewstate.NewCacheStore(fc, nil, 0)
}

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(makeItems(60), opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeView(t *testing.T, resp *http.Response, status int) viewBody {
	t.Helper()
	if resp.StatusCode != status {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, status, data)
	}
	var body viewBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func errorCode(t *testing.T, resp *http.Response, status int) string {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("status = %d, want %d", resp.StatusCode, status)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Code
}

func TestViewLifecycle(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	base := ts.URL + "/api/v1/views"

	v := decodeView(t, do(t, http.MethodPost, base, CreateViewRequest{Width: 1000}), http.StatusCreated)
	if v.Data.ID == "" {
		t.Fatal("no view id")
	}
	if v.Data.Summary != (grid.Summary{TotalRows: 13, TotalCards: 60, VisibleRows: 6}) {
		t.Errorf("summary = %+v", v.Data.Summary)
	}
	if len(v.Data.Tree) == 0 {
		t.Error("tree missing from create response")
	}
	viewURL := base + "/" + v.Data.ID

	more := decodeView(t, do(t, http.MethodPost, viewURL+"/more", nil), http.StatusOK)
	var exp grid.ExpandResult
	if err := json.Unmarshal(more.Data.Result, &exp); err != nil {
		t.Fatal(err)
	}
	if exp.From != 6 || exp.To != 13 || more.Data.Summary.VisibleRows != 13 {
		t.Errorf("more = %+v, summary %+v", exp, more.Data.Summary)
	}

	key := decodeView(t, do(t, http.MethodPost, viewURL+"/keys", KeyRequest{Key: "right"}), http.StatusOK)
	if key.Data.Focused != "uid-00" {
		t.Errorf("focused = %q, want uid-00", key.Data.Focused)
	}
	if !strings.Contains(string(key.Data.Result), `"kind":"move"`) {
		t.Errorf("key result = %s", key.Data.Result)
	}

	rs := decodeView(t, do(t, http.MethodPost, viewURL+"/resize?tree=false", ResizeRequest{Width: 700}), http.StatusOK)
	if rs.Data.Width != 700 || len(rs.Data.Tree) != 0 {
		t.Errorf("resize: width %v, tree %d bytes", rs.Data.Width, len(rs.Data.Tree))
	}
	if string(rs.Data.Result) != `{"applied":true}` {
		t.Errorf("resize result = %s", rs.Data.Result)
	}

	// Within the noise floor nothing is laid out.
	rs = decodeView(t, do(t, http.MethodPost, viewURL+"/resize?tree=false", ResizeRequest{Width: 700.5}), http.StatusOK)
	if rs.Data.Width != 700 || string(rs.Data.Result) != `{"applied":false}` {
		t.Errorf("resize within noise floor: width %v, result %s", rs.Data.Width, rs.Data.Result)
	}

	opt := decodeView(t, do(t, http.MethodPut, viewURL+"/options", OptionsRequest{LayoutMode: "standard", ShowPrice: true}), http.StatusOK)
	if opt.Data.Render != (grid.RenderOptions{LayoutMode: grid.ModeStandard, ShowPrice: true}) {
		t.Errorf("render = %+v", opt.Data.Render)
	}

	if resp := do(t, http.MethodDelete, viewURL, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	if code := errorCode(t, do(t, http.MethodGet, viewURL, nil), http.StatusNotFound); code != "VIEW_NOT_FOUND" {
		t.Errorf("code = %q", code)
	}
}

func TestBadRequests(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	base := ts.URL + "/api/v1/views"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"negative width", http.MethodPost, "", CreateViewRequest{Width: -5}, http.StatusBadRequest, "INVALID_WIDTH"},
		{"bad mode", http.MethodPost, "", CreateViewRequest{Width: 800, LayoutMode: "tiny"}, http.StatusBadRequest, "INVALID_LAYOUT_MODE"},
		{"bad body", http.MethodPost, "", "not an object", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown view", http.MethodGet, "/6f1c2a52-7d0e-4a8e-9a3c-2b6a8d1f0e11", nil, http.StatusNotFound, "VIEW_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, base+tt.path, tt.body)
			if code := errorCode(t, resp, tt.status); code != tt.code {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestRestoreFromStore(t *testing.T) {
	store := newStore(t)

	s1 := New(makeItems(60), Options{Store: store})
	ts1 := httptest.NewServer(s1.Handler())
	v := decodeView(t, do(t, http.MethodPost, ts1.URL+"/api/v1/views", CreateViewRequest{Width: 1000}), http.StatusCreated)
	decodeView(t, do(t, http.MethodPost, ts1.URL+"/api/v1/views/"+v.Data.ID+"/more", MoreRequest{Target: 9}), http.StatusOK)
	ts1.Close()

	// A second server sharing the store picks the view up where it was left.
	s2 := New(makeItems(60), Options{Store: store})
	ts2 := httptest.NewServer(s2.Handler())
	defer ts2.Close()
	defer s2.Close()

	got := decodeView(t, do(t, http.MethodGet, ts2.URL+"/api/v1/views/"+v.Data.ID, nil), http.StatusOK)
	if got.Data.Summary.VisibleRows != 9 || got.Data.Width != 1000 {
		t.Errorf("restored summary = %+v, width %v", got.Data.Summary, got.Data.Width)
	}
}

func TestSetItemsKeepsPagination(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	v := decodeView(t, do(t, http.MethodPost, ts.URL+"/api/v1/views", CreateViewRequest{Width: 1000}), http.StatusCreated)
	decodeView(t, do(t, http.MethodPost, ts.URL+"/api/v1/views/"+v.Data.ID+"/more", MoreRequest{Target: 8}), http.StatusOK)

	s.SetItems(makeItems(80))

	got := decodeView(t, do(t, http.MethodGet, ts.URL+"/api/v1/views/"+v.Data.ID+"?tree=false", nil), http.StatusOK)
	if got.Data.Summary.TotalCards != 80 || got.Data.Summary.VisibleRows != 8 {
		t.Errorf("summary = %+v", got.Data.Summary)
	}
}

func TestExport(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	v := decodeView(t, do(t, http.MethodPost, ts.URL+"/api/v1/views", CreateViewRequest{Width: 1000}), http.StatusCreated)
	url := ts.URL + "/api/v1/views/" + v.Data.ID + "/export"

	resp := do(t, http.MethodGet, url+"?format=dot", nil)
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "digraph G {") || !strings.Contains(string(data), "cluster_row_5") {
		t.Errorf("dot export:\n%s", data)
	}

	if code := errorCode(t, do(t, http.MethodGet, url+"?format=pdf", nil), http.StatusBadRequest); code != "INVALID_FORMAT" {
		t.Errorf("code = %q", code)
	}
}

type fakeThumbs map[string][]byte

func (f fakeThumbs) Thumbnail(_ context.Context, url string) ([]byte, bool, error) {
	data, ok := f[url]
	return data, ok, nil
}

func TestThumbnails(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	_, ts := newTestServer(t, Options{Thumbnails: fakeThumbs{"https://cdn.example/a.png": png}})

	resp := do(t, http.MethodGet, ts.URL+"/api/v1/thumbnails?url=https://cdn.example/a.png", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if code := errorCode(t, do(t, http.MethodGet, ts.URL+"/api/v1/thumbnails?url=https://cdn.example/b.png", nil), http.StatusNotFound); code != "NOT_FOUND" {
		t.Errorf("code = %q", code)
	}

	_, plain := newTestServer(t, Options{})
	if code := errorCode(t, do(t, http.MethodGet, plain.URL+"/api/v1/thumbnails?url=https://cdn.example/a.png", nil), http.StatusNotImplemented); code != "UNSUPPORTED" {
		t.Errorf("code = %q", code)
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	resp := do(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
