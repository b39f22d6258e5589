package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"salarypredict/charts"
	"salarypredict/db"
	"salarypredict/logging"
	"salarypredict/ml"
	"salarypredict/monitoring"
)

const (
	defaultEmployeesLimit = 100
	maxEmployeesLimit     = 1000
)

// Predictor scores records with the model currently being served.
type Predictor interface {
	Predict(rec ml.Record) (ml.Prediction, error)
	Info() (ml.ArtifactInfo, bool)
}

// PredictionStore persists submissions.
type PredictionStore interface {
	SavePrediction(ctx context.Context, rec ml.Record, salary float64, modelVersion string) (int64, error)
	ListPredictions(ctx context.Context, limit int) ([]db.StoredPrediction, error)
}

// Publisher pushes events to live-feed clients.
type Publisher interface {
	Publish(t monitoring.MessageType, data any) bool
}

// Handlers serves the JSON API. Every dependency is injected; metrics and
// publisher may be nil.
type Handlers struct {
	predictor Predictor
	store     PredictionStore
	publisher Publisher
	metrics   *monitoring.Metrics
	charts    *charts.Renderer
	logger    *zap.Logger
}

func NewHandlers(predictor Predictor, store PredictionStore, publisher Publisher, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		predictor: predictor,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		charts:    charts.NewRenderer(logger.Named("charts")),
		logger:    logger,
	}
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version,omitempty"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, ok := h.predictor.Info()
	respondJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		ModelLoaded:  ok,
		ModelVersion: info.Version,
	})
}

func (h *Handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	info, ok := h.predictor.Info()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "model unavailable")
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handlers) handleEmployees(w http.ResponseWriter, r *http.Request) {
	limit := defaultEmployeesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(l, maxEmployeesLimit)
	}

	rows, err := h.store.ListPredictions(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("list predictions failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load employees")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"employees": rows,
		"count":     len(rows),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// respondJSON encodes data before writing the status so an unencodable value
// becomes a 500 instead of an empty success.
func respondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(payload, '\n'))
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// writePredictionError maps a prediction failure to a status code and
// returns the metrics outcome label for it.
func writePredictionError(w http.ResponseWriter, r *http.Request, err error) string {
	var (
		parseErr     *ml.ParseError
		unknownErr   *ml.UnknownCategoryError
		unavailErr   *ml.ModelUnavailableError
		dimensionErr *ml.DimensionMismatchError
		tooLargeErr  *http.MaxBytesError
	)
	logger := logging.FromContext(r.Context())

	switch {
	case errors.As(err, &tooLargeErr):
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return monitoring.OutcomeInvalidInput
	case errors.As(err, &parseErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error: parseErr.Error(),
			Field: parseErr.Field,
			Value: parseErr.Value,
		})
		return monitoring.OutcomeInvalidInput
	case errors.As(err, &unknownErr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: unknownErr.Error(),
			Field: unknownErr.Field,
			Value: unknownErr.Value,
		})
		return monitoring.OutcomeUnknownCategory
	case errors.As(err, &unavailErr):
		logger.Warn("prediction rejected, model unavailable", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "model unavailable")
		return monitoring.OutcomeModelUnavailable
	case errors.As(err, &dimensionErr):
		logger.Error("feature dimension mismatch",
			zap.Int("expected", dimensionErr.Expected),
			zap.Int("actual", dimensionErr.Actual),
		)
		respondError(w, http.StatusInternalServerError, "internal model error")
		return monitoring.OutcomeDimensionMismatch
	default:
		logger.Error("prediction failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return monitoring.OutcomeError
	}
}
