package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClaims uuid.UUID

func (c staticClaims) GetUserID() uuid.UUID { return uuid.UUID(c) }

type mapValidator map[string]uuid.UUID

func (v mapValidator) ValidateToken(token string) (UserIDGetter, error) {
	id, ok := v[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return staticClaims(id), nil
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := mapValidator{"good-token": userID}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer good-token", http.StatusOK},
		{"lowercase scheme", "bearer good-token", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good-token", http.StatusUnauthorized},
		{"no token", "Bearer", http.StatusUnauthorized},
		{"extra parts", "Bearer good-token extra", http.StatusUnauthorized},
		{"unknown token", "Bearer bad-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen uuid.UUID
			handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, err := GetUserID(r)
				require.NoError(t, err)
				seen = id
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID, seen)
				return
			}
			var body map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserID(req)
	assert.Error(t, err)

	id := uuid.New()
	req = req.WithContext(WithUserID(req.Context(), id))
	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
