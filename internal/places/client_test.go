// internal/places/client_test.go
package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge-api/internal/common/config"
	apperrors "concierge-api/internal/common/errors"
	"concierge-api/internal/common/logger"
)

func newTestClient(serverURL string) *Client {
	cfg := config.PlacesAPIConfig{
		BaseURL:      serverURL,
		APIKey:       "test-key",
		RadiusMeters: 2000,
		Timeout:      2000,
	}
	return NewClient(cfg, logger.NewNoOpLogger())
}

func TestFetchNearby_AppliesDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "date night", r.URL.Query().Get("keyword"))
		assert.Equal(t, "restaurant", r.URL.Query().Get("type"))
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{"place_id": "p1", "name": "Full House", "price_level": 3, "rating": 4.5, "opening_hours": {"open_now": true}},
				{"place_id": "p2", "name": "Bare Minimum"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	candidates, err := client.FetchNearby(context.Background(), "date night", 36.11, -115.17, "restaurant")

	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "p1", candidates[0].PlaceID)
	assert.Equal(t, 3, candidates[0].PriceLevel)
	assert.Equal(t, 4.5, candidates[0].Rating)
	assert.True(t, candidates[0].OpenNow)

	// Absent fields default per the boundary rules.
	assert.Equal(t, "p2", candidates[1].PlaceID)
	assert.Equal(t, 0, candidates[1].PriceLevel)
	assert.Equal(t, 0.0, candidates[1].Rating)
	assert.False(t, candidates[1].OpenNow)
}

func TestFetchNearby_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	candidates, err := newTestClient(server.URL).FetchNearby(context.Background(), "brunch", 36.11, -115.17, "food")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFetchNearby_NonSuccessStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchNearby(context.Background(), "brunch", 36.11, -115.17, "food")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
}

func TestFetchNearby_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newTestClient(server.URL).FetchNearby(context.Background(), "brunch", 36.11, -115.17, "food")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
}

func TestFetchNearby_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing results", `{"status": "OK"}`},
		{"wrong shape", `{"results": [{"place_id": 42}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchNearby(context.Background(), "brunch", 36.11, -115.17, "food")
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeUpstreamBadResponse, apperrors.CodeOf(err))
		})
	}
}

func TestFetchNearby_DirectoryErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "results": []}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchNearby(context.Background(), "brunch", 36.11, -115.17, "food")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
}

func TestFetchDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("placeid"))
		w.Write([]byte(`{
			"status": "OK",
			"result": {
				"formatted_address": "1 Main St, Las Vegas, NV",
				"website": "https://example.com",
				"opening_hours": {
					"periods": [
						{"open": {"day": 1, "time": "1100"}, "close": {"day": 1, "time": "2200"}},
						{"open": {"day": 5, "time": "1800"}, "close": {"day": 6, "time": "0200"}}
					]
				},
				"reviews": [{"text": "great spot"}, {"text": "loved it"}]
			}
		}`))
	}))
	defer server.Close()

	detail, err := newTestClient(server.URL).FetchDetails(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "1 Main St, Las Vegas, NV", detail.Address)
	assert.Equal(t, "https://example.com", detail.Website)
	require.Len(t, detail.Periods, 2)
	assert.Equal(t, "1100", detail.Periods[0].Open.Time)
	assert.Equal(t, "0200", detail.Periods[1].Close.Time)
	assert.Equal(t, []string{"great spot", "loved it"}, detail.Reviews)
}

func TestFetchDetails_EmptyOptionalFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OK", "result": {"formatted_address": "2 Side St"}}`))
	}))
	defer server.Close()

	detail, err := newTestClient(server.URL).FetchDetails(context.Background(), "p2")
	require.NoError(t, err)

	assert.Equal(t, "2 Side St", detail.Address)
	assert.Empty(t, detail.Website)
	assert.Empty(t, detail.Periods)
	assert.Empty(t, detail.Reviews)
}

func TestFetchDetails_NotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "NOT_FOUND", "result": {}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchDetails(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
}
