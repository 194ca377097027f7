// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agencyops/huddle/internal/config"
)

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            8080,
		Timeout:         30 * time.Second,
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
		CORSOrigins:     []string{"*"},
	}
}

func routerToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"cognito:username": "u1"})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestRouterRejectsAnonymousDataRequests(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)
	router := NewRouter(h, testServerConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error.Code != ErrCodeUnauthorized {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestRouterHealthIsOpen(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)
	router := NewRouter(h, testServerConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterMetricsIsOpen(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)
	router := NewRouter(h, testServerConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterRoutesAuthenticatedRequests(t *testing.T) {
	store := &fakeStore{rows: []map[string]any{{"post_id": int64(1)}}}
	h, _, _ := newTestHandler(store, true)
	router := NewRouter(h, testServerConfig())
	token := routerToken(t)

	paths := []struct {
		method string
		path   string
		call   string
	}{
		{http.MethodGet, "/api/posts", "ListPosts"},
		{http.MethodGet, "/api/pipeline", "ListEnquiries"},
		{http.MethodGet, "/api/pipeline/export", "ListEnquiries"},
		{http.MethodGet, "/api/reviews", "ListMyReviews"},
		{http.MethodGet, "/api/user/me", "GetProfile"},
		{http.MethodGet, "/api/user", "ListUsers"},
	}
	for _, tt := range paths {
		t.Run(tt.path, func(t *testing.T) {
			store.calls = nil

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if !store.called(tt.call) {
				t.Errorf("calls = %v, want %s", store.calls, tt.call)
			}
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)
	router := NewRouter(h, testServerConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
