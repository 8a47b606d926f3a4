package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/loan-schedule/internal/cache"
	"github.com/iwvelando/loan-schedule/internal/calculator"
	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/params"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	calc          *calculator.Calculator
	cache         cache.Cache
	maxUploadSize int64
	version       string
}

// Options configures the HTTP handler. A nil Cache disables response
// caching.
type Options struct {
	MaxUploadSize  int64
	Version        string
	Cache          cache.Cache
	AllowedOrigins []string
}

// NewHandler constructs the HTTP handler that serves the loan API.
func NewHandler(logger *zap.Logger, calc *calculator.Calculator, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = calculator.New(logger, calculator.DefaultOptions())
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handler{
		logger:        logger,
		calc:          calc,
		cache:         opts.Cache,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Post("/loans/schedule", h.handleSchedule)
		r.Post("/loans/tax", h.handleTax)
	})

	return r
}

type errorResponse struct {
	Error       string                 `json:"error"`
	MessageKey  string                 `json:"userMessageGlobalisationCode,omitempty"`
	Unsupported []string               `json:"unsupportedParameters,omitempty"`
	Errors      []apierrors.FieldError `json:"errors,omitempty"`
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug(fmt.Sprintf("%s %s -> %d", r.Method, r.URL.Path, ww.Status()),
			zap.String("op", "server.logRequests"),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	key := cache.Key(constants.ModeSchedule, body)
	if h.cache != nil {
		cached, hit, err := h.cache.Get(r.Context(), key)
		if err != nil {
			h.logger.Warn("cache lookup failed", zap.String("op", op), zap.Error(err))
		} else if hit {
			w.Header().Set("X-Cache", "HIT")
			h.writeRaw(w, http.StatusOK, cached)
			return
		}
	}

	bag, err := params.DecodeJSON(body)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	schedule, err := h.calc.CalculateSchedule(bag)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, "failed to encode schedule", op)
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(r.Context(), key, data); err != nil {
			h.logger.Warn("cache store failed", zap.String("op", op), zap.Error(err))
		}
		w.Header().Set("X-Cache", "MISS")
	}
	h.writeRaw(w, http.StatusOK, data)
}

func (h *handler) handleTax(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTax"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}
	bag, err := params.DecodeJSON(body)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	res, err := h.calc.CalculateTax(bag)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return body, true
}

// respondCalculationError maps engine errors onto status codes. Invariant
// violations are logged in full but reported generically.
func (h *handler) respondCalculationError(w http.ResponseWriter, err error, op string) {
	var validationErr *apierrors.ValidationError
	var malformedErr *apierrors.MalformedInputError

	switch {
	case errors.As(err, &validationErr):
		h.logger.Info(fmt.Sprintf("rejected request with %d validation error(s)", len(validationErr.Errors)),
			zap.String("op", op),
		)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      apierrors.ErrValidationFailed.Error(),
			MessageKey: validationErr.MessageKey(),
			Errors:     validationErr.Errors,
		})
	case errors.As(err, &malformedErr):
		h.logger.Info("rejected malformed request", zap.String("op", op), zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       err.Error(),
			Unsupported: malformedErr.Unsupported,
		})
	case apierrors.IsInternal(err):
		h.logger.Error("schedule invariant violated", zap.String("op", op), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, "internal error", op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("loan request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
