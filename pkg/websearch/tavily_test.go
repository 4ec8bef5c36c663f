package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainAuthority(t *testing.T) {
	assert.Equal(t, float32(1.0), DomainAuthority("https://support.apple.com/en-us/HT201295"))
	assert.Equal(t, float32(1.0), DomainAuthority("https://www.apple.com/iphone/"))
	assert.Equal(t, float32(0.85), DomainAuthority("https://discussions.apple.com/thread/12345"))
	assert.Equal(t, float32(0.5), DomainAuthority("https://randomblog.example.com/iphone-tips"))
}

func TestSearch_RanksOfficialSourcesFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["query"], "iPhone troubleshooting")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"title": "Forum thread", "url": "https://discussions.apple.com/thread/1", "content": "...", "score": 0.9},
				{"title": "Official fix", "url": "https://support.apple.com/en-us/HT1", "content": "...", "score": 0.88},
			},
		})
	}))
	defer srv.Close()

	client := NewTavilyClient("test-key")
	client.BaseURL = srv.URL

	results, err := client.Search(context.Background(), "battery drains fast", 3)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Official fix", results[0].Title)
	assert.InDelta(t, 0.88, float64(results[0].Score), 0.001)
	assert.InDelta(t, 0.765, float64(results[1].Score), 0.001)
}

func TestSearch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewTavilyClient("bad-key")
	client.BaseURL = srv.URL

	_, err := client.Search(context.Background(), "wifi", 3)
	assert.Error(t, err)
}
