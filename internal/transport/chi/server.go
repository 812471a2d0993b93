// Package chi is the HTTP API surface: single and multi-account search,
// vocabulary endpoints, and cache administration.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lexhub/contractqa/internal/config"
	"github.com/lexhub/contractqa/internal/domain"
	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/catalog"
	"github.com/lexhub/contractqa/internal/domain/query"
	"github.com/lexhub/contractqa/internal/repository/resultcache"
	healthuc "github.com/lexhub/contractqa/internal/usecase/health"
)

// singleSearcher runs one single-scope search; it never returns an error.
type singleSearcher interface {
	Run(ctx context.Context, req query.Request) answer.SearchResult
}

// multiSearcher fans a query out across accounts.
type multiSearcher interface {
	RunMulti(ctx context.Context, text string, accounts []string, facets query.Facets, topK int, minRelevance float64) (answer.MultiResult, error)
}

// cacheAdmin exposes the result cache's maintenance surface.
type cacheAdmin interface {
	Stats() resultcache.Stats
	Clear(olderThan time.Duration) (int, error)
	SetEnabled(v bool)
	Enabled() bool
}

// Server handles the HTTP API.
type Server struct {
	search  singleSearcher
	multi   multiSearcher
	cache   cacheAdmin
	health  *healthuc.Service
	facets  config.FacetsConfig
	queries []catalog.Query
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search singleSearcher,
	multi multiSearcher,
	cache cacheAdmin,
	health *healthuc.Service,
	facets config.FacetsConfig,
	queries []catalog.Query,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:  search,
		multi:   multi,
		cache:   cache,
		health:  health,
		facets:  facets,
		queries: queries,
		logger:  logger,
	}
}

// Routes mounts the API handlers on a router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/search/multi", s.SearchMulti)
		r.Get("/queries", s.ListQueries)
		r.Get("/accounts", s.ListAccounts)
		r.Get("/facets", s.ListFacets)
		r.Get("/cache/stats", s.CacheStats)
		r.Delete("/cache", s.CacheClear)
		r.Put("/cache/enabled", s.CacheEnabled)
	})
	r.Get("/health", s.HealthCheck)
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := query.New(req.Query, req.facets(), req.TopK, req.MinRelevance)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	// The pipeline boundary absorbs all failures into the result itself.
	writeJSON(w, http.StatusOK, s.search.Run(r.Context(), q))
}

// SearchMulti handles POST /api/v1/search/multi.
func (s *Server) SearchMulti(w http.ResponseWriter, r *http.Request) {
	var req multiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query text is required")
		return
	}
	if len(req.Accounts) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one account is required")
		return
	}

	res, err := s.multi.RunMulti(r.Context(), req.Query, req.Accounts, req.facets(), req.TopK, req.MinRelevance)
	if err != nil {
		if errors.Is(err, domain.ErrNoAccounts) || errors.Is(err, domain.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		s.logger.Error("multi search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ListQueries handles GET /api/v1/queries: the predefined query catalog.
func (s *Server) ListQueries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"queries": s.queries})
}

// ListAccounts handles GET /api/v1/accounts.
func (s *Server) ListAccounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"accounts": s.facets.Accounts})
}

// ListFacets handles GET /api/v1/facets.
func (s *Server) ListFacets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, facetsResponse{
		Accounts:        s.facets.Accounts,
		AccountTypes:    s.facets.AccountTypes,
		DocumentTypes:   s.facets.DocumentTypes,
		SolutionLines:   s.facets.SolutionLines,
		RelatedProducts: s.facets.RelatedProducts,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (s *Server) CacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

// CacheClear handles DELETE /api/v1/cache. The older_than_hours query
// parameter restricts the clear to entries at least that old; without it
// the whole cache is dropped.
func (s *Server) CacheClear(w http.ResponseWriter, r *http.Request) {
	var olderThan time.Duration
	if raw := r.URL.Query().Get("older_than_hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours < 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "older_than_hours must be a non-negative number")
			return
		}
		olderThan = time.Duration(hours * float64(time.Hour))
	}

	removed, err := s.cache.Clear(olderThan)
	if err != nil {
		s.logger.Error("cache clear failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, cacheClearResponse{Removed: removed})
}

// CacheEnabled handles PUT /api/v1/cache/enabled.
func (s *Server) CacheEnabled(w http.ResponseWriter, r *http.Request) {
	var req cacheEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.cache.SetEnabled(req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.cache.Enabled()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
