// internal/enrich/hours.go
package enrich

import (
	"strconv"
	"strings"
	"time"

	"concierge-api/internal/models"
)

// isOpenAt reports whether any opening-hours period covers the given local
// time. Times are "HHMM", 24-hour; a close value numerically below the open
// value means the period runs through midnight into the next day. A period
// without a close edge means the place never closes.
func isOpenAt(periods []models.OpeningPeriod, now time.Time) bool {
	day := int(now.Weekday())
	clock := now.Hour()*100 + now.Minute()

	for _, period := range periods {
		openAt, ok := parseClock(period.Open.Time)
		if !ok {
			continue
		}

		if period.Close.Time == "" {
			return true
		}

		closeAt, ok := parseClock(period.Close.Time)
		if !ok {
			continue
		}

		wraps := closeAt <= openAt

		if period.Open.Day == day {
			if !wraps && clock >= openAt && clock < closeAt {
				return true
			}
			if wraps && clock >= openAt {
				return true
			}
		}

		// A wrapping period that opened yesterday is still covering the
		// early hours of today.
		if wraps && period.Open.Day == (day+6)%7 && clock < closeAt {
			return true
		}
	}

	return false
}

func parseClock(hhmm string) (int, bool) {
	if len(hhmm) != 4 {
		return 0, false
	}
	v, err := strconv.Atoi(hhmm)
	if err != nil {
		return 0, false
	}
	if v < 0 || v/100 > 23 || v%100 > 59 {
		return 0, false
	}
	return v, true
}

// sanitizeReview makes review text embeddable in a single-line JSON value:
// quotes are escaped and newlines collapsed to spaces.
func sanitizeReview(text string) string {
	text = strings.ReplaceAll(text, `"`, ` \"`)
	return strings.ReplaceAll(text, "\n", " ")
}
