// internal/models/place.go
package models

// PlaceCandidate is a raw place returned by the directory nearby search.
type PlaceCandidate struct {
	PlaceID    string  `json:"placeId"`
	Name       string  `json:"name"`
	PriceLevel int     `json:"priceLevel"`
	Rating     float64 `json:"rating"`
	OpenNow    bool    `json:"openNow"`
}

// DayTime is one edge of an opening-hours period: a day of week (0=Sunday)
// and a clock time encoded as "HHMM", 24-hour.
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// OpeningPeriod is one day's open/close pair. A close time numerically below
// the open time means the period runs through midnight into the next day.
type OpeningPeriod struct {
	Open  DayTime `json:"open"`
	Close DayTime `json:"close"`
}

// PlaceDetail holds the per-place lookup fields.
type PlaceDetail struct {
	Address string          `json:"address"`
	Website string          `json:"website,omitempty"`
	Periods []OpeningPeriod `json:"periods,omitempty"`
	Reviews []string        `json:"reviews,omitempty"`
}

// EnrichedCandidate is the union of directory, detail, and derived fields for
// one place. MatchScore is zero until ranking runs.
type EnrichedCandidate struct {
	PlaceID    string             `json:"id"`
	Name       string             `json:"name"`
	Rating     float64            `json:"rating"`
	PriceLevel int                `json:"priceLevel"`
	OpenNow    bool               `json:"openNow"`
	Address    string             `json:"address"`
	Website    string             `json:"website,omitempty"`
	Reviews    []string           `json:"reviews,omitempty"`
	Keywords   map[string]float64 `json:"keywords,omitempty"`
	MatchScore float64            `json:"matchScore"`
}
