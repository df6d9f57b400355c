// internal/enrich/enricher.go
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "concierge-api/internal/common/errors"
	"concierge-api/internal/common/logger"
	"concierge-api/internal/common/metrics"
	"concierge-api/internal/models"
)

// PlaceDirectory supplies the per-place detail lookup.
type PlaceDirectory interface {
	FetchDetails(ctx context.Context, placeID string) (*models.PlaceDetail, error)
}

// KeywordExtractor turns review texts into a keyword-to-relevance mapping.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, reviewTexts []string) (map[string]float64, error)
}

type Config struct {
	MaxConcurrency int
	CacheTTL       time.Duration
}

// Enricher runs the per-candidate detail and keyword lookups. Individual
// candidate failures are absorbed: the candidate is dropped and the rest of
// the batch proceeds. The redis client is optional; without one every lookup
// goes to the upstreams.
type Enricher struct {
	config    Config
	directory PlaceDirectory
	extractor KeywordExtractor
	cache     *redis.Client
	logger    logger.Logger
	now       func() time.Time
}

func NewEnricher(cfg Config, directory PlaceDirectory, extractor KeywordExtractor, cache *redis.Client, log logger.Logger) *Enricher {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 5
	}
	return &Enricher{
		config:    cfg,
		directory: directory,
		extractor: extractor,
		cache:     cache,
		logger:    log,
		now:       time.Now,
	}
}

type cacheEntry struct {
	Detail   models.PlaceDetail `json:"detail"`
	Keywords map[string]float64 `json:"keywords"`
}

// EnrichAll fans the batch out across at most MaxConcurrency workers and
// returns the surviving candidates in their original order. A context expiry
// surfaces as a request-timeout error for the whole batch.
func (e *Enricher) EnrichAll(ctx context.Context, candidates []models.PlaceCandidate) ([]models.EnrichedCandidate, error) {
	results := make([]*models.EnrichedCandidate, len(candidates))

	sem := make(chan struct{}, e.config.MaxConcurrency)
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate models.PlaceCandidate) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			enriched, err := e.Enrich(ctx, candidate)
			if err != nil {
				failure := apperrors.NewEnrichmentFailedError(candidate.PlaceID, err)
				e.logger.Warn("candidate dropped from batch", map[string]interface{}{
					"placeId": candidate.PlaceID,
					"error":   failure.Error(),
				})
				return
			}
			results[i] = enriched
		}(i, candidate)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, apperrors.NewRequestTimeoutError()
	}

	out := make([]models.EnrichedCandidate, 0, len(candidates))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Enrich runs the full pipeline for one candidate: detail lookup, open-now
// evaluation against the detailed opening hours, review sanitization, and
// keyword extraction.
func (e *Enricher) Enrich(ctx context.Context, candidate models.PlaceCandidate) (*models.EnrichedCandidate, error) {
	entry, err := e.lookup(ctx, candidate.PlaceID)
	if err != nil {
		return nil, err
	}

	// The detail periods beat the coarse directory flag when present.
	openNow := candidate.OpenNow
	if len(entry.Detail.Periods) > 0 {
		openNow = isOpenAt(entry.Detail.Periods, e.now())
	}

	return &models.EnrichedCandidate{
		PlaceID:    candidate.PlaceID,
		Name:       candidate.Name,
		Rating:     candidate.Rating,
		PriceLevel: candidate.PriceLevel,
		OpenNow:    openNow,
		Address:    entry.Detail.Address,
		Website:    entry.Detail.Website,
		Reviews:    entry.Detail.Reviews,
		Keywords:   entry.Keywords,
	}, nil
}

func (e *Enricher) lookup(ctx context.Context, placeID string) (*cacheEntry, error) {
	key := cacheKey(placeID)

	if e.cache != nil {
		raw, err := e.cache.Get(ctx, key).Result()
		if err == nil {
			var entry cacheEntry
			if err := json.Unmarshal([]byte(raw), &entry); err == nil {
				e.logger.Debug("enrichment cache hit", map[string]interface{}{"placeId": placeID})
				return &entry, nil
			}
		} else if err != redis.Nil {
			e.logger.Warn("enrichment cache read failed", map[string]interface{}{
				"placeId": placeID,
				"error":   err.Error(),
			})
		}
	}

	detail, err := e.directory.FetchDetails(ctx, placeID)
	if err != nil {
		metrics.EnrichmentDropsTotal.WithLabelValues("details").Inc()
		return nil, err
	}

	sanitized := make([]string, len(detail.Reviews))
	for i, text := range detail.Reviews {
		sanitized[i] = sanitizeReview(text)
	}
	detail.Reviews = sanitized

	keywords, err := e.extractor.ExtractKeywords(ctx, sanitized)
	if err != nil {
		metrics.EnrichmentDropsTotal.WithLabelValues("keywords").Inc()
		return nil, err
	}

	entry := &cacheEntry{Detail: *detail, Keywords: keywords}

	if e.cache != nil {
		raw, err := json.Marshal(entry)
		if err == nil {
			if err := e.cache.Set(ctx, key, raw, e.config.CacheTTL).Err(); err != nil {
				e.logger.Warn("enrichment cache write failed", map[string]interface{}{
					"placeId": placeID,
					"error":   err.Error(),
				})
			}
		}
	}

	return entry, nil
}

func cacheKey(placeID string) string {
	return fmt.Sprintf("place:enrich:%s", placeID)
}
