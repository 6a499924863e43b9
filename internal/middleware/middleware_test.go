package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"planboard/internal/middleware"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "super_secret_for_tests"

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(middleware.GetUserID(r.Context())))
}

func TestAuth(t *testing.T) {
	valid := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name       string
		secret     string
		header     string
		query      string
		wantStatus int
		wantUser   string
	}{
		{name: "no secret runs as local user", wantStatus: http.StatusOK, wantUser: middleware.LocalUser},
		{name: "missing header", secret: secret, wantStatus: http.StatusUnauthorized},
		{name: "garbage token", secret: secret, header: "Bearer obviously.invalid.token", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", secret: secret, header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{
			name:       "missing exp",
			secret:     secret,
			header:     "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			secret:     secret,
			header:     "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing sub",
			secret:     secret,
			header:     "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong algorithm",
			secret:     secret,
			header:     "Bearer " + sign(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}),
			wantStatus: http.StatusUnauthorized,
		},
		{name: "valid header", secret: secret, header: "Bearer " + valid, wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "valid query token", secret: secret, query: "?access_token=" + valid, wantStatus: http.StatusOK, wantUser: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/any"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			middleware.Auth(tt.secret)(http.HandlerFunc(echoUser)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestLogging_PassesStatusThrough(t *testing.T) {
	h := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i == 0 {
			assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
