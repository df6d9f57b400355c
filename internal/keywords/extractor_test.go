// internal/keywords/extractor_test.go
package keywords

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge-api/internal/common/config"
	apperrors "concierge-api/internal/common/errors"
	"concierge-api/internal/common/logger"
)

func newTestExtractor(serverURL, apiKey string) *Extractor {
	cfg := config.AnalyticsAPIConfig{
		BaseURL: serverURL,
		APIKey:  apiKey,
		Timeout: 2000,
	}
	return NewExtractor(cfg, logger.NewNoOpLogger())
}

func TestExtractKeywords(t *testing.T) {
	var gotBody analyzeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "apikey", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Write([]byte(`{"keywords": [
			{"text": "romantic", "relevance": 0.92},
			{"text": "patio", "relevance": 0.61},
			{"text": "", "relevance": 0.4}
		]}`))
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL, "secret")
	mapping, err := extractor.ExtractKeywords(context.Background(), []string{"so romantic", "nice patio"})

	require.NoError(t, err)
	assert.Equal(t, "so romantic nice patio", gotBody.Text)
	assert.Equal(t, map[string]float64{"romantic": 0.92, "patio": 0.61}, mapping)
}

func TestExtractKeywords_EmptyInputSkipsUpstream(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL, "secret")
	mapping, err := extractor.ExtractKeywords(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, mapping)
	assert.NotNil(t, mapping)
	assert.Zero(t, atomic.LoadInt64(&calls))
}

func TestExtractKeywords_DisabledWithoutKey(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL, "")
	assert.True(t, extractor.Disabled())

	mapping, err := extractor.ExtractKeywords(context.Background(), []string{"plenty of text"})
	require.NoError(t, err)
	assert.Empty(t, mapping)
	assert.Zero(t, atomic.LoadInt64(&calls))
}

func TestExtractKeywords_Idempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"keywords": [{"text": "cozy", "relevance": 0.8}]}`))
	}))
	defer server.Close()

	extractor := newTestExtractor(server.URL, "secret")
	reviews := []string{"cozy little place"}

	first, err := extractor.ExtractKeywords(context.Background(), reviews)
	require.NoError(t, err)
	second, err := extractor.ExtractKeywords(context.Background(), reviews)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractKeywords_UpstreamFailures(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newTestExtractor(server.URL, "secret").ExtractKeywords(context.Background(), []string{"text"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json at all`))
		}))
		defer server.Close()

		_, err := newTestExtractor(server.URL, "secret").ExtractKeywords(context.Background(), []string{"text"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUpstreamBadResponse, apperrors.CodeOf(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := newTestExtractor(server.URL, "secret").ExtractKeywords(context.Background(), []string{"text"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUpstreamUnavailable, apperrors.CodeOf(err))
	})
}
