package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestWebSearch_Search(t *testing.T) {
	var gotQuery, gotCx, gotNum string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotCx = r.URL.Query().Get("cx")
		gotNum = r.URL.Query().Get("num")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"title": "Kontakt", "link": "https://nordbageri.se/kontakt", "snippet": "Mejla oss"},
				{"title": "Utan länk"},
			},
		})
	}))
	defer server.Close()

	ctx := context.Background()
	ws, err := NewWebSearch(ctx, "test-key", "engine-1", option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	results, err := ws.Search(ctx, "Nord Bageri kontakt", 5)
	require.NoError(t, err)

	assert.Equal(t, "Nord Bageri kontakt", gotQuery)
	assert.Equal(t, "engine-1", gotCx)
	assert.Equal(t, "5", gotNum)
	require.Len(t, results, 1)
	assert.Equal(t, SearchResult{Title: "Kontakt", Link: "https://nordbageri.se/kontakt", Snippet: "Mejla oss"}, results[0])
}

func TestWebSearch_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx := context.Background()
	ws, err := NewWebSearch(ctx, "test-key", "engine-1", option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	_, err = ws.Search(ctx, "x", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestNewWebSearch_RequiresCredentials(t *testing.T) {
	_, err := NewWebSearch(context.Background(), "", "engine-1")
	assert.Error(t, err)
	_, err = NewWebSearch(context.Background(), "key", "")
	assert.Error(t, err)
}
