package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatsbanken_Search(t *testing.T) {
	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ads":[
			{"id":"29384756","title":"Barista","workplaceName":"Café Nord","workplace":"Stockholm","lastApplicationDate":"2025-03-12T23:59:59"},
			{"id":1234,"title":"Servitör","workplaceName":"Krogen"}
		]}`))
	}))
	defer server.Close()

	pb := NewPlatsbanken(server.Client()).WithBaseURL(server.URL)
	ads, err := pb.Search(context.Background(), "barista", "Stockholm")
	require.NoError(t, err)

	require.Len(t, ads, 2)
	assert.Equal(t, AdID("29384756"), ads[0].ID)
	assert.Equal(t, "Café Nord", ads[0].WorkplaceName)
	assert.Equal(t, AdID("1234"), ads[1].ID, "numeric ids are kept as text")

	assert.Equal(t, []searchFilter{
		{Type: "freetext", Value: "barista"},
		{Type: "freetext", Value: "Stockholm"},
	}, got.Filters)
	assert.Nil(t, got.FromDate)
	assert.Equal(t, "relevance", got.Order)
	assert.Equal(t, DefaultMaxRecords, got.MaxRecords)
	assert.Equal(t, 0, got.StartIndex)
	assert.Equal(t, "pb", got.Source)
}

func TestPlatsbanken_SearchWithoutLocation(t *testing.T) {
	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ads":[]}`))
	}))
	defer server.Close()

	ads, err := NewPlatsbanken(nil).WithBaseURL(server.URL).Search(context.Background(), "kundtjänst", "")
	require.NoError(t, err)
	assert.Empty(t, ads)
	assert.Len(t, got.Filters, 1)
}

func TestPlatsbanken_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", http.StatusInternalServerError, "boom", "status 500"},
		{"bad json", http.StatusOK, "{not json", "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewPlatsbanken(server.Client()).WithBaseURL(server.URL).Search(context.Background(), "x", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAdID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    AdID
		wantErr bool
	}{
		{`"abc"`, "abc", false},
		{`42`, "42", false},
		{`null`, "", false},
		{`true`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id AdID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
