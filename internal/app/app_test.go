package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"planboard/internal/app"
	"planboard/internal/config"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_InitServesAPI(t *testing.T) {
	for _, repoType := range []string{"inmemory", "sqlite"} {
		t.Run(repoType, func(t *testing.T) {
			cfg := config.Default()
			cfg.Repository.Type = repoType
			cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "app.db")
			cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

			a, err := app.New(cfg).Init(context.Background())
			require.NoError(t, err)
			defer a.Shutdown()

			rec := httptest.NewRecorder()
			a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

			req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"text":"Stretch"}`))
			req.Header.Set("Content-Type", "application/json")
			rec = httptest.NewRecorder()
			a.Router().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		})
	}
}

func TestApp_AuthRequiredWithSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "secret"

	a, err := app.New(cfg).Init(context.Background())
	require.NoError(t, err)
	defer a.Shutdown()

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates/workflows", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
