package remote

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentHandler_Auth(t *testing.T) {
	h := NewAgentHandler(mustFixtures(t, testFixtures), NewVerifier(testKey, "hostdiag"), nil)
	signer, err := NewSigner(TokenConfig{SigningKey: testKey})
	require.NoError(t, err)
	web01, err := signer.Sign("web01")
	require.NoError(t, err)

	tests := []struct {
		name       string
		auth       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", "web01", http.StatusUnauthorized, "missing bearer token"},
		{"basic auth", "Basic dXNlcjpwYXNz", "web01", http.StatusUnauthorized, "missing bearer token"},
		{"bad token", "Bearer nope", "web01", http.StatusUnauthorized, "invalid token"},
		{"other audience", "Bearer " + web01, "web02", http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer " + web01, "web01", http.StatusOK, "C:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/volumes", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			req.Header.Set(TargetHeader, tt.target)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestAgentHandler_TargetFromHost(t *testing.T) {
	h := NewAgentHandler(mustFixtures(t, testFixtures), NewVerifier(testKey, "hostdiag"), nil)
	signer, err := NewSigner(TokenConfig{SigningKey: testKey})
	require.NoError(t, err)
	token, err := signer.Sign("web01")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://web01:7911/v1/updates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "KB5034441")
}

func TestAgentHandler_BadSince(t *testing.T) {
	h := NewAgentHandler(mustFixtures(t, testFixtures), NewVerifier(testKey, "hostdiag"), nil)
	signer, err := NewSigner(TokenConfig{SigningKey: testKey})
	require.NoError(t, err)
	token, err := signer.Sign("web01")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/eventlog?since=yesterday", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(TargetHeader, "web01")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "since")
}

func TestAgentHandler_MethodNotAllowed(t *testing.T) {
	h := NewAgentHandler(mustFixtures(t, testFixtures), NewVerifier(testKey, "hostdiag"), nil)
	signer, err := NewSigner(TokenConfig{SigningKey: testKey})
	require.NoError(t, err)
	token, err := signer.Sign("web01")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/volumes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(TargetHeader, "web01")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
