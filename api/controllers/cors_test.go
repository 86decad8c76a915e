package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter(origins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(CORSOptions(origins)))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func corsRequest(r chi.Router, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSOptions_WildcardWithoutCredentials(t *testing.T) {
	for _, origins := range [][]string{nil, {"*"}, {"https://hr.example.com", "*"}} {
		opts := CORSOptions(origins)
		assert.False(t, opts.AllowCredentials, "origins=%v", origins)
		assert.Contains(t, opts.AllowedOrigins, "*")
	}

	w := corsRequest(newCORSRouter(nil), "https://anywhere.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSOptions_ExplicitOriginsWithCredentials(t *testing.T) {
	r := newCORSRouter([]string{"https://hr.example.com"})

	w := corsRequest(r, "https://hr.example.com")
	assert.Equal(t, "https://hr.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = corsRequest(r, "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
