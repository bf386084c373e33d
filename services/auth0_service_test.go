package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wearmade/wearmade-api/config"
	"github.com/stretchr/testify/assert"
)

func TestGetUserInfo(t *testing.T) {
	t.Run("Decodes a successful userinfo response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/userinfo", r.URL.Path)
			assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sub":"auth0|abc123","email":"user@example.com","name":"Test User"}`))
		}))
		defer server.Close()

		service := NewAuth0Service(&config.Config{Auth0Domain: server.URL})
		info, err := service.GetUserInfo("valid-token")
		assert.NoError(t, err)
		assert.Equal(t, "auth0|abc123", info.Sub)
		assert.Equal(t, "user@example.com", info.Email)
		assert.Equal(t, "Test User", info.Name)
	})

	t.Run("Surfaces non-200 responses as errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
		}))
		defer server.Close()

		service := NewAuth0Service(&config.Config{Auth0Domain: server.URL})
		_, err := service.GetUserInfo("expired-token")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("Fails when the endpoint is unreachable", func(t *testing.T) {
		service := NewAuth0Service(&config.Config{Auth0Domain: "http://127.0.0.1:1"})
		_, err := service.GetUserInfo("any-token")
		assert.Error(t, err)
	})
}
