// internal/keywords/extractor.go
package keywords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"concierge-api/internal/common/config"
	apperrors "concierge-api/internal/common/errors"
	"concierge-api/internal/common/httpclient"
	"concierge-api/internal/common/logger"
	"concierge-api/internal/common/metrics"
)

const (
	providerName = "analytics"
	maxKeywords  = 50
)

type analyzeRequest struct {
	Text     string   `json:"text"`
	Features features `json:"features"`
}

type features struct {
	Keywords keywordsFeature `json:"keywords"`
}

type keywordsFeature struct {
	Limit int `json:"limit"`
}

type analyzeResponse struct {
	Keywords []extractedKeyword `json:"keywords"`
}

type extractedKeyword struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
}

// Extractor wraps the text-analytics provider. Constructed without an API key
// it runs disabled: every extraction returns an empty mapping and no upstream
// call is made, so operators can run the pipeline with analytics turned off.
type Extractor struct {
	config   config.AnalyticsAPIConfig
	client   *httpclient.Client
	logger   logger.Logger
	disabled bool
}

func NewExtractor(cfg config.AnalyticsAPIConfig, log logger.Logger) *Extractor {
	log = log.WithFields(map[string]interface{}{"provider": providerName})

	disabled := cfg.APIKey == ""
	if disabled {
		log.Warn("analytics API key missing, keyword extraction disabled", nil)
	}

	return &Extractor{
		config:   cfg,
		client:   httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger:   log,
		disabled: disabled,
	}
}

// Disabled reports whether the extractor runs without an upstream.
func (e *Extractor) Disabled() bool {
	return e.disabled
}

// ExtractKeywords submits the concatenated review corpus and returns the
// keyword-to-relevance mapping. Empty input returns an empty mapping without
// an upstream call.
func (e *Extractor) ExtractKeywords(ctx context.Context, reviewTexts []string) (map[string]float64, error) {
	if e.disabled || len(reviewTexts) == 0 {
		return map[string]float64{}, nil
	}

	payload := analyzeRequest{
		Text:     strings.Join(reviewTexts, " "),
		Features: features{Keywords: keywordsFeature{Limit: maxKeywords}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewUpstreamBadResponseError(providerName, err.Error())
	}

	req, err := http.NewRequest(http.MethodPost, e.config.BaseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError(providerName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("apikey", e.config.APIKey)

	resp, err := e.client.DoWithContext(ctx, req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "unavailable").Inc()
		return nil, apperrors.NewUpstreamUnavailableError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "unavailable").Inc()
		return nil, apperrors.NewUpstreamUnavailableError(providerName, fmt.Errorf("analytics returned %d", resp.StatusCode))
	}

	var analyzed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&analyzed); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(providerName, "bad_response").Inc()
		return nil, apperrors.NewUpstreamBadResponseError(providerName, err.Error())
	}

	metrics.UpstreamCallsTotal.WithLabelValues(providerName, "ok").Inc()

	mapping := make(map[string]float64, len(analyzed.Keywords))
	for _, kw := range analyzed.Keywords {
		if kw.Text == "" {
			continue
		}
		mapping[kw.Text] = kw.Relevance
	}

	e.logger.Debug("keywords extracted", map[string]interface{}{
		"keywordCount": len(mapping),
	})

	return mapping, nil
}
