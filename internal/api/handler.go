// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "concierge-api/internal/common/errors"
	"concierge-api/internal/common/logger"
	"concierge-api/internal/common/metrics"
	"concierge-api/internal/common/observability"
	"concierge-api/internal/models"
)

// validPlaceTypes is the closed set of directory categories the endpoint
// accepts. Anything else is rejected before any upstream call.
var validPlaceTypes = map[string]bool{
	"restaurant":        true,
	"store":             true,
	"shopping_mall":     true,
	"point_of_interest": true,
	"museum":            true,
	"food":              true,
	"lodging":           true,
	"spa":               true,
	"casino":            true,
}

// PlaceSearcher runs the directory nearby search.
type PlaceSearcher interface {
	FetchNearby(ctx context.Context, occasion string, latitude, longitude float64, placeType string) ([]models.PlaceCandidate, error)
}

// CandidateEnricher runs the per-candidate detail and keyword fan-out.
type CandidateEnricher interface {
	EnrichAll(ctx context.Context, candidates []models.PlaceCandidate) ([]models.EnrichedCandidate, error)
}

// CandidateRanker orders enriched candidates against the occasion.
type CandidateRanker interface {
	Rank(occasion string, candidates []models.EnrichedCandidate) []models.EnrichedCandidate
}

// Handler serves the recommendation endpoint.
type Handler struct {
	searcher      PlaceSearcher
	enricher      CandidateEnricher
	ranker        CandidateRanker
	observability *observability.Observability
	logger        logger.Logger
	timeout       time.Duration
}

func NewHandler(searcher PlaceSearcher, enricher CandidateEnricher, ranker CandidateRanker, obs *observability.Observability, log logger.Logger, timeout time.Duration) *Handler {
	return &Handler{
		searcher:      searcher,
		enricher:      enricher,
		ranker:        ranker,
		observability: obs,
		logger:        log,
		timeout:       timeout,
	}
}

// RegisterRoutes wires the handler into the mux. The explicit restaurants
// route is kept alongside the generic typed route; the more specific pattern
// wins, so both resolve here.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleHealth)
	mux.HandleFunc("GET /api/v1/restaurants", func(w http.ResponseWriter, r *http.Request) {
		h.serveRecommendations(w, r, "restaurant")
	})
	mux.HandleFunc("GET /api/v1/{type}", func(w http.ResponseWriter, r *http.Request) {
		h.serveRecommendations(w, r, r.PathValue("type"))
	})
}

// HandleHealth is the root liveness route.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Concierge API is up and running")
}

type errorResponse struct {
	Error *apperrors.StandardError `json:"error"`
}

func (h *Handler) serveRecommendations(w http.ResponseWriter, r *http.Request, placeType string) {
	start := time.Now()
	requestID := uuid.NewString()

	log := h.logger.WithFields(map[string]interface{}{
		"requestId": requestID,
		"placeType": placeType,
	})

	occasion, latitude, longitude, err := h.validate(r, placeType)
	if err != nil {
		h.writeError(w, r, log, metricLabel(placeType), start, err)
		return
	}

	log = log.WithFields(map[string]interface{}{"occasion": occasion})
	log.Info("recommendation request accepted", nil)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	candidates, err := h.searcher.FetchNearby(ctx, occasion, latitude, longitude, placeType)
	if err != nil {
		h.writeError(w, r, log, placeType, start, timeoutOr(ctx, err))
		return
	}

	enriched, err := h.enricher.EnrichAll(ctx, candidates)
	if err != nil {
		h.writeError(w, r, log, placeType, start, timeoutOr(ctx, err))
		return
	}

	ranked := h.ranker.Rank(occasion, enriched)

	log.Info("recommendations served", map[string]interface{}{
		"candidateCount": len(candidates),
		"servedCount":    len(ranked),
		"durationMs":     time.Since(start).Milliseconds(),
	})

	h.record(r.Context(), placeType, http.StatusOK, start)
	h.writeJSON(w, http.StatusOK, ranked)
}

// validate checks the path type against the closed set and parses the query
// parameters. Every violation is a non-retryable bad request.
func (h *Handler) validate(r *http.Request, placeType string) (string, float64, float64, error) {
	if !validPlaceTypes[placeType] {
		return "", 0, 0, apperrors.NewBadRequestError(fmt.Sprintf("unsupported place type %q", placeType))
	}

	query := r.URL.Query()

	occasion := query.Get("occasion")
	if occasion == "" {
		return "", 0, 0, apperrors.NewBadRequestError("missing required parameter 'occasion'")
	}

	latitude, err := parseCoordinate(query.Get("latitude"), "latitude", 90)
	if err != nil {
		return "", 0, 0, err
	}

	longitude, err := parseCoordinate(query.Get("longitude"), "longitude", 180)
	if err != nil {
		return "", 0, 0, err
	}

	return occasion, latitude, longitude, nil
}

func parseCoordinate(raw, name string, bound float64) (float64, error) {
	if raw == "" {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("missing required parameter '%s'", name))
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("parameter '%s' is not a number", name))
	}
	if value < -bound || value > bound {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("parameter '%s' out of range", name))
	}
	return value, nil
}

// metricLabel keeps arbitrary path values out of the place_type label.
func metricLabel(placeType string) string {
	if validPlaceTypes[placeType] {
		return placeType
	}
	return "invalid"
}

// timeoutOr reclassifies upstream failures caused by the request deadline so
// the client sees a timeout instead of a dependency failure.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewRequestTimeoutError()
	}
	return err
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, placeType string, start time.Time, err error) {
	status := apperrors.HTTPStatus(err)

	log.WithError(err).Warn("request failed", map[string]interface{}{
		"status": status,
	})

	h.record(r.Context(), placeType, status, start)

	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) {
		stdErr = apperrors.NewUpstreamUnavailableError("unknown", err)
	}

	h.writeJSON(w, status, errorResponse{Error: stdErr})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("response encoding failed", nil)
	}
}

func (h *Handler) record(ctx context.Context, placeType string, status int, start time.Time) {
	statusLabel := strconv.Itoa(status)
	metrics.RequestsTotal.WithLabelValues(placeType, statusLabel).Inc()
	metrics.RequestDuration.WithLabelValues(placeType).Observe(time.Since(start).Seconds())

	if h.observability != nil {
		h.observability.RecordRequest(ctx, statusLabel)
		h.observability.RecordRequestDuration(ctx, time.Since(start), statusLabel)
	}
}
