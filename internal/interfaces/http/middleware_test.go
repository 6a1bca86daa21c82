package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

func guardedRouter(cookieName string) *gin.Engine {
	mockService := &MockCatalogService{
		listFunc: func(ctx context.Context) ([]domain.Instrument, error) {
			return []domain.Instrument{}, nil
		},
	}
	router := setupRouter(NewHandler(mockService), SessionGuard(cookieName))
	router.GET("/login", func(c *gin.Context) { c.String(http.StatusOK, "login") })
	router.GET("/api/auth/session", func(c *gin.Context) { c.String(http.StatusOK, "session") })
	return router
}

func TestSessionGuard(t *testing.T) {
	tests := []struct {
		name         string
		cookieName   string
		path         string
		cookie       *http.Cookie
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "redirects without cookie",
			path:         "/api/instruments",
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login",
		},
		{
			name:         "redirects on empty cookie",
			path:         "/api/instruments",
			cookie:       &http.Cookie{Name: DefaultSessionCookie, Value: ""},
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login",
		},
		{
			name:       "passes with default cookie",
			path:       "/api/instruments",
			cookie:     &http.Cookie{Name: DefaultSessionCookie, Value: "anything"},
			wantStatus: http.StatusOK,
		},
		{
			name:         "ignores other cookies",
			path:         "/api/instruments",
			cookie:       &http.Cookie{Name: "other", Value: "x"},
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login",
		},
		{
			name:       "custom cookie name",
			cookieName: "sid",
			path:       "/api/instruments",
			cookie:     &http.Cookie{Name: "sid", Value: "x"},
			wantStatus: http.StatusOK,
		},
		{name: "login is public", path: "/login", wantStatus: http.StatusOK},
		{name: "auth api is public", path: "/api/auth/session", wantStatus: http.StatusOK},
		{name: "health is public", path: "/health", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := guardedRouter(tt.cookieName)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			}
		})
	}
}
