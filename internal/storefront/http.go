package storefront

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/theme"
	"Storefront/pkg/kit"
)

const (
	readyTimeout  = 1 * time.Second
	reloadTimeout = 10 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Catalog *catalog.Store
	Theme   *theme.Controller
	View    *View
	Storage Pinger
	Log     *zap.Logger

	// ReviewLimiter throttles review submissions per client IP; nil disables it.
	ReviewLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Get("/items", s.listItems)
	r.Get("/items/{id}", s.getItem)
	r.With(s.reviewLimit).Post("/items/{id}/reviews", s.addReview)

	r.Get("/view", s.getView)
	r.Put("/view/search", s.setSearch)

	r.Get("/theme", s.getTheme)
	r.Post("/theme/toggle", s.toggleTheme)

	r.Post("/reload", s.reload)

	return r
}

func (s *Server) reviewLimit(next http.Handler) http.Handler {
	if s.ReviewLimiter == nil {
		return next
	}
	return s.ReviewLimiter.Middleware(next)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if st := s.Catalog.State(); st != catalog.StateReady {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", map[string]any{"state": st.String()})
		return
	}

	if s.Storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := s.Storage.Ping(ctx); err != nil {
			s.logger().Warn("readyz failed: storage", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "storage not ready", nil)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

type listResp struct {
	Query     string `json:"query"`
	Count     int    `json:"count"`
	NoResults bool   `json:"no_results"`
	Items     []Card `json:"items"`
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	items, err := s.Catalog.Search(q)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, listResp{
		Query:     q,
		Count:     len(items),
		NoResults: len(items) == 0,
		Items:     NewCards(items),
	})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	it, err := s.Catalog.Item(id)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, NewDetails(it))
}

type reviewReq struct {
	Text         string `json:"text" validate:"max=2000"`
	ReviewerName string `json:"reviewer_name" validate:"max=64"`
}

type reviewResp struct {
	Review      catalog.Review `json:"review"`
	ReviewCount int            `json:"review_count"`
}

func (s *Server) addReview(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req reviewReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := kit.Validate(req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid review", kit.ValidationDetails(err))
		return
	}

	rev, err := s.Catalog.AddReviewAs(r.Context(), id, req.ReviewerName, req.Text)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}

	count := 0
	if it, err := s.Catalog.Item(id); err == nil {
		count = len(it.Reviews)
	}
	kit.WriteJSON(w, http.StatusCreated, reviewResp{Review: rev, ReviewCount: count})
}

func (s *Server) getView(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.View.Snapshot())
}

type searchReq struct {
	Query string `json:"query" validate:"max=256"`
}

func (s *Server) setSearch(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := kit.Validate(req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid query", kit.ValidationDetails(err))
		return
	}

	if err := s.Catalog.SetSearchQuery(req.Query); err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.View.Snapshot())
}

type themeResp struct {
	Theme theme.Theme `json:"theme"`
}

func (s *Server) getTheme(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, themeResp{Theme: s.Theme.Current()})
}

func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := s.Theme.Toggle(r.Context())
	if err != nil {
		s.logger().Error("toggle theme failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "theme could not be saved", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, themeResp{Theme: t})
}

// reload survives the client going away: a half-finished load would leave
// the store Failed for everyone.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), reloadTimeout)
	defer cancel()

	if err := s.Catalog.Load(ctx); err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.View.Snapshot())
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		kit.WriteError(w, r, http.StatusBadRequest, "review text is required", nil)
	case errors.Is(err, catalog.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.Is(err, catalog.ErrNotReady):
		kit.WriteError(w, r, http.StatusConflict, "catalog not ready", map[string]any{"state": s.Catalog.State().String()})
	case errors.Is(err, catalog.ErrLoadInProgress):
		kit.WriteError(w, r, http.StatusConflict, "catalog load in progress", nil)
	case errors.Is(err, catalog.ErrRemoteUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, catalog.RemoteUnavailableMessage, nil)
	case errors.Is(err, catalog.ErrPersistence):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "reviews could not be saved", nil)
	default:
		s.logger().Error("catalog request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}
