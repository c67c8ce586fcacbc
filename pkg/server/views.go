package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cardgrid/pkg/buildinfo"
	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/render/dot"
	"github.com/matzehuels/cardgrid/pkg/surface"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

// ViewResponse describes a view after an operation.
type ViewResponse struct {
	ID      string                `json:"id"`
	Summary grid.Summary          `json:"summary"`
	Width   float64               `json:"width"`
	Compact bool                  `json:"compact"`
	Render  grid.RenderOptions    `json:"render"`
	Focused string                `json:"focused,omitempty"`
	Tree    *surface.NodeSnapshot `json:"tree,omitempty"`
	Result  any                   `json:"result,omitempty"`
}

// CreateViewRequest creates a view at a container width.
type CreateViewRequest struct {
	Width      float64 `json:"width"`
	LayoutMode string  `json:"layout_mode,omitempty"`
	ShowPrice  *bool   `json:"show_price,omitempty"`
}

type ResizeRequest struct {
	Width float64 `json:"width"`
}

// ResizeResult reports whether the new width passed the noise floor and
// was laid out.
type ResizeResult struct {
	Applied bool `json:"applied"`
}

// MoreRequest expands the view. A zero Target loads one batch.
type MoreRequest struct {
	Target int `json:"target,omitempty"`
}

type KeyRequest struct {
	Key         string `json:"key"`
	InTextInput bool   `json:"in_text_input,omitempty"`
}

type OptionsRequest struct {
	LayoutMode string `json:"layout_mode"`
	ShowPrice  bool   `json:"show_price"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	views, items := len(s.views), len(s.items)
	s.mu.RUnlock()
	success(w, map[string]any{
		"status":  "ok",
		"version": buildinfo.Current(),
		"views":   views,
		"items":   items,
	})
}

func (s *Server) createView(w http.ResponseWriter, r *http.Request) {
	var req CreateViewRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	if err := errors.ValidateWidth(req.Width); err != nil {
		fail(w, err)
		return
	}
	opts := s.opts.Render
	if req.LayoutMode != "" {
		mode, err := grid.ParseLayoutMode(req.LayoutMode)
		if err != nil {
			fail(w, err)
			return
		}
		opts.LayoutMode = mode
	}
	if req.ShowPrice != nil {
		opts.ShowPrice = *req.ShowPrice
	}

	v, _ := s.mount(viewstate.NewID(), opts)
	defer v.mu.Unlock()
	res := v.grid.Render(s.currentItems(), req.Width)
	s.persist(r.Context(), v)
	s.logger.Info("view created", "id", v.id, "width", req.Width, "rows", res.Rows)
	created(w, s.describe(v, res, true))
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	v, err := s.lookup(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		fail(w, err)
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	success(w, s.describe(v, nil, r.URL.Query().Get("tree") != "false"))
}

func (s *Server) deleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()
	if ok {
		v.grid.Unmount()
	}
	if s.opts.Store != nil {
		if err := s.opts.Store.Delete(r.Context(), id); err != nil {
			fail(w, err)
			return
		}
	} else if !ok {
		fail(w, errors.New(errors.ErrCodeViewNotFound, "no view %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resizeView(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	if err := errors.ValidateWidth(req.Width); err != nil {
		fail(w, err)
		return
	}
	s.withView(w, r, func(v *view) any {
		applied := v.grid.Resize(req.Width)
		v.grid.Flush()
		return ResizeResult{Applied: applied}
	})
}

func (s *Server) loadMore(w http.ResponseWriter, r *http.Request) {
	var req MoreRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
	}
	s.withView(w, r, func(v *view) any {
		if req.Target > 0 {
			return v.grid.Expand(req.Target)
		}
		return v.grid.LoadMore()
	})
}

func (s *Server) pressKey(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	if req.Key == "" {
		fail(w, errors.New(errors.ErrCodeInvalidInput, "key is required"))
		return
	}
	s.withView(w, r, func(v *view) any {
		return v.grid.Key(req.Key, req.InTextInput)
	})
}

func (s *Server) setOptions(w http.ResponseWriter, r *http.Request) {
	var req OptionsRequest
	if err := decode(r, &req); err != nil {
		fail(w, err)
		return
	}
	mode, err := grid.ParseLayoutMode(req.LayoutMode)
	if err != nil {
		fail(w, err)
		return
	}
	s.withView(w, r, func(v *view) any {
		return v.grid.SetRenderOptions(grid.RenderOptions{LayoutMode: mode, ShowPrice: req.ShowPrice})
	})
}

func (s *Server) exportView(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", format, true, "json", "dot", "svg"); err != nil {
		fail(w, err)
		return
	}
	v, err := s.lookup(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		fail(w, err)
		return
	}

	v.mu.Lock()
	var (
		snap surface.NodeSnapshot
		src  string
	)
	detailed := r.URL.Query().Get("detailed") == "true"
	v.grid.Inspect(func(tree *surface.Tree, _ grid.State) {
		if tree == nil {
			return
		}
		snap = tree.Snapshot()
		src = dot.ToDOT(tree, dot.Options{Detailed: detailed})
	})
	v.mu.Unlock()

	switch format {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(src))
	case "svg":
		svg, err := dot.RenderSVG(r.Context(), src)
		if err != nil {
			fail(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		success(w, snap)
	}
}

func (s *Server) thumbnail(w http.ResponseWriter, r *http.Request) {
	if s.opts.Thumbnails == nil {
		fail(w, errors.New(errors.ErrCodeUnsupported, "thumbnail cache disabled"))
		return
	}
	url := r.URL.Query().Get("url")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		fail(w, errors.New(errors.ErrCodeInvalidInput, "url must be http(s)"))
		return
	}
	data, ok, err := s.opts.Thumbnails.Thumbnail(r.Context(), url)
	if err != nil {
		fail(w, err)
		return
	}
	if !ok {
		fail(w, errors.New(errors.ErrCodeNotFound, "thumbnail not cached"))
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

// withView runs op on the addressed view, persists it and responds with the
// view description and op's result.
func (s *Server) withView(w http.ResponseWriter, r *http.Request, op func(v *view) any) {
	v, err := s.lookup(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		fail(w, err)
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	res := op(v)
	s.persist(r.Context(), v)
	success(w, s.describe(v, res, r.URL.Query().Get("tree") != "false"))
}

func (s *Server) currentItems() []card.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// mount registers a new view and returns it locked. If another request
// mounted id first, that view is returned locked instead and fresh is false.
func (s *Server) mount(id string, opts grid.RenderOptions) (v *view, fresh bool) {
	v = &view{
		id: id,
		grid: grid.New(surface.New(), grid.Options{
			Config:     s.opts.Config,
			Factory:    s.opts.Factory,
			Prefetcher: s.opts.Prefetcher,
			Render:     opts,
			Logger:     s.logger.With("view", id),
		}),
	}
	v.mu.Lock()

	s.mu.Lock()
	existing, ok := s.views[id]
	if !ok {
		s.views[id] = v
	}
	s.mu.Unlock()

	if ok {
		v.grid.Unmount()
		v.mu.Unlock()
		existing.mu.Lock()
		return existing, false
	}
	return v, true
}

// lookup returns a mounted view, restoring it from the store if needed.
func (s *Server) lookup(ctx context.Context, id string) (*view, error) {
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}
	if s.opts.Store == nil {
		return nil, errors.New(errors.ErrCodeViewNotFound, "no view %s", id)
	}

	snap, err := s.opts.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	v, fresh := s.mount(id, snap.Render)
	if fresh {
		v.grid.Restore(s.currentItems(), snap.Width, snap.VisibleRows, snap.Render)
		s.logger.Info("view restored", "id", id, "rows", snap.VisibleRows, "width", snap.Width)
	}
	v.mu.Unlock()
	return v, nil
}

func (s *Server) persist(ctx context.Context, v *view) {
	if s.opts.Store == nil {
		return
	}
	if err := s.opts.Store.Save(ctx, viewstate.Capture(v.id, v.grid)); err != nil {
		s.logger.Warn("save view failed", "id", v.id, "err", err)
	}
}

func (s *Server) describe(v *view, result any, withTree bool) ViewResponse {
	resp := ViewResponse{ID: v.id, Result: result}
	v.grid.Inspect(func(tree *surface.Tree, st grid.State) {
		resp.Summary = st.Summary()
		resp.Width = st.LastContainerWidth
		resp.Compact = st.ForcedCompact
		resp.Render = st.Render
		if tree == nil {
			return
		}
		if f := tree.Focused(); f != nil {
			resp.Focused = f.Key
		}
		if withTree {
			snap := tree.Snapshot()
			resp.Tree = &snap
		}
	})
	return resp
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
