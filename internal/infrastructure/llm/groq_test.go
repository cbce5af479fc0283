package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoversScanner/internal/config"
	"MoversScanner/internal/domain"
)

func testConfig(endpoint string) config.GroqConfig {
	return config.GroqConfig{
		Endpoint:    endpoint,
		APIKey:      "test-key",
		GainerModel: "llama3-70b-8192",
		LoserModel:  "llama-3.1-8b-instant",
		MaxTokens:   256,
		Temperature: 0.4,
	}
}

func TestSummariseEmptyHeadlinesShortCircuits(t *testing.T) {
	t.Parallel()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	client := NewGroqClient(testConfig(ts.URL))
	reasons, err := client.Summarise(context.Background(), "Acme Ltd", nil, domain.Gainer)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.NoRecentFeeds}, reasons)
	assert.Zero(t, atomic.LoadInt32(&calls), "no API call expected for empty headlines")
}

func TestSummariseSplitsResponseLines(t *testing.T) {
	t.Parallel()

	var got chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"1. Orders: Export win\n2. Results: Beat estimates\n3. Upgrade: Broker target raised\n"}}]}`))
	}))
	defer ts.Close()

	client := NewGroqClient(testConfig(ts.URL))
	reasons, err := client.Summarise(context.Background(), "Acme Ltd", []string{"Acme wins order", "Results beat"}, domain.Gainer)
	require.NoError(t, err)

	require.Len(t, reasons, 3)
	assert.Equal(t, "1. Orders: Export win", reasons[0])
	assert.Equal(t, "3. Upgrade: Broker target raised", reasons[2])

	assert.Equal(t, "llama3-70b-8192", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.InDelta(t, 0.4, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, `"Acme Ltd"`)
	assert.Contains(t, got.Messages[0].Content, "Acme wins order\nResults beat")
	assert.Contains(t, got.Messages[0].Content, "gainer")
}

func TestSummariseLoserSelectsLoserModel(t *testing.T) {
	t.Parallel()

	var got chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"1. Miss: Weak quarter"}}]}`))
	}))
	defer ts.Close()

	client := NewGroqClient(testConfig(ts.URL))
	reasons, err := client.Summarise(context.Background(), "Falling Ltd", []string{"Weak quarter"}, domain.Loser)
	require.NoError(t, err)

	// Fewer than 3 lines come back verbatim; no arity validation here.
	assert.Equal(t, []string{"1. Miss: Weak quarter"}, reasons)
	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	assert.Contains(t, got.Messages[0].Content, "loser")
}

func TestSummariseAPIErrorPropagates(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewGroqClient(testConfig(ts.URL))
	_, err := client.Summarise(context.Background(), "Acme Ltd", []string{"headline"}, domain.Gainer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}
