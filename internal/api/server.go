package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/diogoX451/devicedb/internal/api/dto"
	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/logger"
	"github.com/diogoX451/devicedb/internal/observability"
	"github.com/diogoX451/devicedb/internal/patch"
)

const (
	APIVersion = "1.0"

	unsupportedPatchMessage = "Only replace patches supported in this domain."
)

// Server encapsula todas dependências da API
type Server struct {
	router  *chi.Mux
	devices DeviceService
	log     *logger.Logger
	tracer  oteltrace.Tracer
}

// NewServer cria server com dependências injetadas. log e tracer podem ser nil.
func NewServer(devices DeviceService, log *logger.Logger, tracer oteltrace.Tracer) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("devicedb")
	}
	observability.Register()

	s := &Server{
		router:  chi.NewRouter(),
		devices: devices,
		log:     log,
		tracer:  tracer,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(observability.HTTPMiddleware(s.tracer))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health
	s.router.With(jsonContentType).Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// Descrição da API
	s.router.Get("/openapi.yaml", s.handleOpenAPIYAML)
	s.router.Get("/openapi.json", s.handleOpenAPIJSON)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(apiVersion)
		r.Use(jsonContentType)

		r.Get("/device", s.handleListDevices)
		r.Post("/device", s.handleAddDevice)
		r.Get("/device/{id}", s.handleGetDevice)
		r.Delete("/device/{id}", s.handleDeleteDevice)
		r.Patch("/device/{id}", s.handlePatchDevice)
	})

	s.router.NotFound(s.handleFallback)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler: Health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   APIVersion,
	})
}

// Qualquer rota desconhecida cai na descrição da API.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/openapi.json", http.StatusFound)
}

// Helper: JSON content-type
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Helper: Responder JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: Responder erro
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// respondServiceError traduz os erros do Core para HTTP.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", err.Error())
	case errors.Is(err, patch.ErrUnsupportedOp):
		respondError(w, http.StatusBadRequest, "UNSUPPORTED_PATCH_OP", unsupportedPatchMessage)
	case errors.Is(err, domain.ErrInvalidPatch):
		respondErrorDetails(w, http.StatusBadRequest, "INVALID_PATCH", "invalid patch document", err.Error())
	case errors.Is(err, domain.ErrInvalidIdentifier):
		respondError(w, http.StatusBadRequest, "INVALID_IDENTIFIER", err.Error())
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	default:
		s.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
