// internal/rank/ranker.go
package rank

import (
	"sort"
	"strings"

	"concierge-api/internal/common/logger"
	"concierge-api/internal/models"
)

// Scoring weights. They sum to 1 so the final score stays in [0, 1].
const (
	keywordWeight = 0.50
	ratingWeight  = 0.35
	openNowWeight = 0.15

	maxRating = 5.0
)

// Ranker scores enriched candidates against the requested occasion and sorts
// them best first. Scoring is deterministic: equal inputs always produce the
// same order.
type Ranker struct {
	logger logger.Logger
}

func NewRanker(log logger.Logger) *Ranker {
	return &Ranker{logger: log}
}

// Rank fills in MatchScore for every candidate and returns the slice sorted by
// score descending. Ties break by rating descending, then place ID ascending.
func (r *Ranker) Rank(occasion string, candidates []models.EnrichedCandidate) []models.EnrichedCandidate {
	ranked := make([]models.EnrichedCandidate, len(candidates))
	copy(ranked, candidates)

	terms := occasionTerms(occasion)
	for i := range ranked {
		ranked[i].MatchScore = score(terms, ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].PlaceID < ranked[j].PlaceID
	})

	if len(ranked) > 0 {
		r.logger.Debug("candidates ranked", map[string]interface{}{
			"occasion": occasion,
			"count":    len(ranked),
			"topScore": ranked[0].MatchScore,
		})
	}

	return ranked
}

func score(terms []string, candidate models.EnrichedCandidate) float64 {
	s := keywordWeight * keywordOverlap(terms, candidate.Keywords)
	s += ratingWeight * (candidate.Rating / maxRating)
	if candidate.OpenNow {
		s += openNowWeight
	}
	return s
}

// keywordOverlap is the relevance mass of keywords sharing a token with the
// occasion, normalized by the total relevance mass. No keywords means no
// signal, scored as zero.
func keywordOverlap(terms []string, keywords map[string]float64) float64 {
	if len(keywords) == 0 || len(terms) == 0 {
		return 0
	}

	var matched, total float64
	for keyword, relevance := range keywords {
		if relevance < 0 {
			continue
		}
		total += relevance
		if keywordMatches(terms, keyword) {
			matched += relevance
		}
	}

	if total == 0 {
		return 0
	}
	return matched / total
}

func keywordMatches(terms []string, keyword string) bool {
	lowered := strings.ToLower(keyword)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func occasionTerms(occasion string) []string {
	return strings.Fields(strings.ToLower(occasion))
}
