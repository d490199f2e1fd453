package chi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/answer"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/domain/movie"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/logger"
	healthuc "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/health"
	queryuc "github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/usecase/query"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Response headers.
const (
	HeaderCache    = "X-Cache"
	HeaderDegraded = "X-Recommendation-Degraded"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest               = "bad_request"
	CodeValidationFailed         = "validation_failed"
	CodeRetrievalUnavailable     = "retrieval_unavailable"
	CodeRecommendationUnavailable = "recommendation_unavailable"
	CodeRateLimited              = "rate_limited"
	CodeInternalError            = "internal_error"
)

// QueryService resolves queries and lists history.
type QueryService interface {
	Resolve(ctx context.Context, query string) (queryuc.Outcome, error)
	History(ctx context.Context) ([]string, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// QueryRequest is the POST /api/query body.
type QueryRequest struct {
	Query string `json:"query" validate:"required,max=1000"`
}

// ErrorResponse is the error body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the recommendation API.
type Server struct {
	queries       QueryService
	health        HealthService
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(queries QueryService, health HealthService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		queries:  queries,
		health:   health,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrRetrievalUnavailable, http.StatusServiceUnavailable, CodeRetrievalUnavailable),
		sentinelHandler(domain.ErrRecommendationUnavailable,
			http.StatusServiceUnavailable, CodeRecommendationUnavailable),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
	}
	return s
}

// Query handles POST /api/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, validationMessage(err))
		return
	}

	out, err := s.queries.Resolve(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	cache := "miss"
	if out.Cached {
		cache = "hit"
	}
	w.Header().Set(HeaderCache, cache)
	if out.Degraded {
		w.Header().Set(HeaderDegraded, "true")
	}

	// the answer may be shared with concurrent requests; normalize a copy
	var resp answer.Answer
	if out.Answer != nil {
		resp = *out.Answer
	}
	if resp.SimilarMovies == nil {
		resp.SimilarMovies = []movie.Summary{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/history.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	queries, err := s.queries.History(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if queries == nil {
		queries = []string{}
	}
	writeJSON(w, http.StatusOK, queries)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// validationMessage renders the first failed rule without echoing the value.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "query is required"
	case "max":
		return "query must be at most " + fe.Param() + " characters"
	default:
		return "query is invalid"
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel message only.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
