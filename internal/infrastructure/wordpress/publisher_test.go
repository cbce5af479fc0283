package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoversScanner/internal/config"
	"MoversScanner/internal/domain"
)

func testPublisher(url string) *Publisher {
	return NewPublisher(config.WordPressConfig{
		APIURL:         url,
		Username:       "editor",
		Password:       "s3cretpass",
		TimeoutSeconds: 5,
	}, nil)
}

func sampleRecord() domain.PublishRecord {
	return domain.PublishRecord{
		StockName:     "Acme Ltd",
		NSESymbol:     "ACME",
		ChangePercent: "+30.12%",
		Summary1:      "1. Orders: Export win",
		Tag:           "monthlygainer",
	}
}

func TestPublishSuccessReturnsBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "s3cretpass", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var rec domain.PublishRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "+30.12%", rec.ChangePercent)
		assert.Equal(t, "monthlygainer", rec.Tag)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	}))
	defer ts.Close()

	body, ok := testPublisher(ts.URL).Publish(context.Background(), sampleRecord())
	assert.True(t, ok)
	assert.Equal(t, `{"id":101}`, body)
}

func TestPublishNon2xxIsNonFatal(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer ts.Close()

	body, ok := testPublisher(ts.URL).Publish(context.Background(), sampleRecord())
	assert.False(t, ok)
	assert.Empty(t, body)
}

func TestPublishTransportFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	publisher := testPublisher(ts.URL)
	ts.Close() // connection refused from here on

	body, ok := publisher.Publish(context.Background(), sampleRecord())
	assert.False(t, ok)
	assert.Empty(t, body)
}

func TestPreflight(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Test Site"}`))
	})
	mux.HandleFunc("/wp-json/movers/v1/post", func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		require.True(t, ok, "endpoint probe must carry credentials")
		_, _ = w.Write([]byte(`[]`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	err := testPublisher(ts.URL + "/wp-json/movers/v1/post").Preflight(context.Background())
	assert.NoError(t, err)
}

func TestPreflightRootFailureIsFatal(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer ts.Close()

	err := testPublisher(ts.URL + "/wp-json/movers/v1/post").Preflight(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rest root")
}

func TestPreflightUnreachableEndpoint(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	publisher := testPublisher(ts.URL + "/wp-json/movers/v1/post")
	ts.Close()

	require.Error(t, publisher.Preflight(context.Background()))
}

func TestRestRoot(t *testing.T) {
	t.Parallel()

	root, err := restRoot("https://example.org/wp-json/movers/v1/post?debug=1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/wp-json/", root)
}

func TestMask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "s3cr****", mask("s3cretpa", 4))
	assert.Equal(t, "***", mask("abc", 4))
	assert.Empty(t, mask("", 4))
}
