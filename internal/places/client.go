// internal/places/client.go
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"concierge-api/internal/common/config"
	apperrors "concierge-api/internal/common/errors"
	"concierge-api/internal/common/httpclient"
	"concierge-api/internal/common/logger"
	"concierge-api/internal/common/metrics"
	"concierge-api/internal/common/validation"
	"concierge-api/internal/models"
)

const providerName = "places"

// Schemas applied to directory payloads before decoding into typed records.
// Anything that passes decodes cleanly; anything that fails is reported as a
// bad upstream response rather than a zero-valued candidate.
const nearbySearchSchema = `{
	"type": "object",
	"required": ["results"],
	"properties": {
		"status": {"type": "string"},
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["place_id"],
				"properties": {
					"place_id": {"type": "string"},
					"name": {"type": "string"},
					"price_level": {"type": "integer"},
					"rating": {"type": "number"}
				}
			}
		}
	}
}`

const detailsSchema = `{
	"type": "object",
	"required": ["result"],
	"properties": {
		"status": {"type": "string"},
		"result": {
			"type": "object",
			"properties": {
				"formatted_address": {"type": "string"},
				"website": {"type": "string"}
			}
		}
	}
}`

// Wire types for the directory payloads. Optional fields are pointers so the
// default-if-absent rules are applied exactly once, in toCandidate.
type nearbySearchResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	PriceLevel   *int          `json:"price_level,omitempty"`
	Rating       *float64      `json:"rating,omitempty"`
	OpeningHours *openingHours `json:"opening_hours,omitempty"`
}

type openingHours struct {
	OpenNow *bool            `json:"open_now,omitempty"`
	Periods []openingsPeriod `json:"periods,omitempty"`
}

type openingsPeriod struct {
	Open  periodEdge  `json:"open"`
	Close *periodEdge `json:"close,omitempty"`
}

type periodEdge struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

type detailsResponse struct {
	Status string       `json:"status"`
	Result detailResult `json:"result"`
}

type detailResult struct {
	FormattedAddress string        `json:"formatted_address"`
	Website          string        `json:"website"`
	OpeningHours     *openingHours `json:"opening_hours,omitempty"`
	Reviews          []review      `json:"reviews,omitempty"`
}

type review struct {
	Text string `json:"text"`
}

// Client wraps the places directory provider.
type Client struct {
	config config.PlacesAPIConfig
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(cfg config.PlacesAPIConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger: log.WithFields(map[string]interface{}{"provider": providerName}),
	}
}

// FetchNearby issues one directory query filtered by type and geographic
// point. The occasion is passed through as a search hint, not validated.
func (c *Client) FetchNearby(ctx context.Context, occasion string, latitude, longitude float64, placeType string) ([]models.PlaceCandidate, error) {
	params := url.Values{}
	params.Add("key", c.config.APIKey)
	params.Add("keyword", occasion)
	params.Add("location", fmt.Sprintf("%f,%f", latitude, longitude))
	params.Add("radius", fmt.Sprintf("%d", c.config.RadiusMeters))
	params.Add("type", placeType)

	body, err := c.get(ctx, "/nearbysearch/json", params)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidatePayload(body, nearbySearchSchema); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "bad_response").Inc()
		return nil, apperrors.NewUpstreamBadResponseError(providerName, err.Error())
	}

	var payload nearbySearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "bad_response").Inc()
		return nil, apperrors.NewUpstreamBadResponseError(providerName, err.Error())
	}

	if payload.Status != "" && payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, apperrors.NewUpstreamUnavailableError(providerName, fmt.Errorf("directory status %s", payload.Status))
	}

	metrics.UpstreamCallsTotal.WithLabelValues(providerName, "ok").Inc()

	candidates := make([]models.PlaceCandidate, 0, len(payload.Results))
	for _, result := range payload.Results {
		candidates = append(candidates, toCandidate(result))
	}

	c.logger.Info("nearby search completed", map[string]interface{}{
		"placeType":      placeType,
		"candidateCount": len(candidates),
	})

	return candidates, nil
}

// FetchDetails looks up address, website, opening hours, and reviews for one place.
func (c *Client) FetchDetails(ctx context.Context, placeID string) (*models.PlaceDetail, error) {
	params := url.Values{}
	params.Add("key", c.config.APIKey)
	params.Add("placeid", placeID)

	body, err := c.get(ctx, "/details/json", params)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidatePayload(body, detailsSchema); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "bad_response").Inc()
		return nil, apperrors.NewUpstreamBadResponseError(providerName, err.Error())
	}

	var payload detailsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "bad_response").Inc()
		return nil, apperrors.NewUpstreamBadResponseError(providerName, err.Error())
	}

	if payload.Status != "" && payload.Status != "OK" {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, apperrors.NewUpstreamUnavailableError(providerName, fmt.Errorf("directory status %s for place %s", payload.Status, placeID))
	}

	metrics.UpstreamCallsTotal.WithLabelValues(providerName, "ok").Inc()

	return toDetail(payload.Result), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError(providerName, err)
	}
	base.Path += path
	base.RawQuery = params.Encode()

	req, err := http.NewRequest(http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError(providerName, err)
	}

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "unavailable").Inc()
		return nil, apperrors.NewUpstreamUnavailableError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "unavailable").Inc()
		return nil, apperrors.NewUpstreamUnavailableError(providerName, fmt.Errorf("directory returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "unavailable").Inc()
		return nil, apperrors.NewUpstreamUnavailableError(providerName, err)
	}

	return body, nil
}

// toCandidate applies the default-if-absent rules at the provider boundary:
// price level 0, rating 0, open-now false.
func toCandidate(result placeResult) models.PlaceCandidate {
	candidate := models.PlaceCandidate{
		PlaceID: result.PlaceID,
		Name:    result.Name,
	}
	if result.PriceLevel != nil {
		candidate.PriceLevel = *result.PriceLevel
	}
	if result.Rating != nil {
		candidate.Rating = *result.Rating
	}
	if result.OpeningHours != nil && result.OpeningHours.OpenNow != nil {
		candidate.OpenNow = *result.OpeningHours.OpenNow
	}
	return candidate
}

func toDetail(result detailResult) *models.PlaceDetail {
	detail := &models.PlaceDetail{
		Address: result.FormattedAddress,
		Website: result.Website,
	}

	if result.OpeningHours != nil {
		for _, p := range result.OpeningHours.Periods {
			period := models.OpeningPeriod{
				Open: models.DayTime{Day: p.Open.Day, Time: p.Open.Time},
			}
			if p.Close != nil {
				period.Close = models.DayTime{Day: p.Close.Day, Time: p.Close.Time}
			}
			detail.Periods = append(detail.Periods, period)
		}
	}

	for _, r := range result.Reviews {
		detail.Reviews = append(detail.Reviews, r.Text)
	}

	return detail
}
