package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"innovator-portal/pkg/config"
	"innovator-portal/pkg/models"
	"innovator-portal/pkg/utils"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuthMiddlewareStoresPrincipal(t *testing.T) {
	svc := utils.NewJWTService("s")
	tok, _, err := svc.GenerateAccessToken(models.Principal{UserID: "u1", Email: "e@x.io", Role: "innovator"}, time.Hour)
	require.NoError(t, err)

	var got *models.Principal
	h := AuthMiddleware(svc, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetPrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireRole("innovator")(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		h := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})))
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/innovator/delete-idea/1", nil)
		req.Header.Set("X-Request-ID", "req-1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[1].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "anonymous", fields["user"])
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		wantAllowed []string
		wantCreds   string
	}{
		// 通配符时部分版本回显 Origin
		{"wildcard", []string{"*"}, "http://localhost:5173", []string{"*", "http://localhost:5173"}, ""},
		{"listed origin", []string{"http://localhost:5173"}, "http://localhost:5173", []string{"http://localhost:5173"}, "true"},
		{"unlisted origin", []string{"http://localhost:5173"}, "http://evil.example", []string{""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(&config.Config{AllowedOrigins: tt.origins})(http.HandlerFunc(ok))
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/innovator/view-ideas", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Contains(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(ok))
	for ct, want := range map[string]int{
		"":                                http.StatusUnsupportedMediaType,
		"text/plain":                      http.StatusUnsupportedMediaType,
		"application/json":                http.StatusOK,
		"Application/JSON; charset=utf-8": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, ct)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
