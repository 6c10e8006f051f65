package router

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
)

type pingServer struct{}

func (pingServer) RegisterPing(api huma.API) {
	huma.Get(api, "/ping", func(context.Context, *struct{}) (*struct{ Body string }, error) {
		return &struct{ Body string }{Body: "pong"}, nil
	})
}

func newTestRouter(middlewareCalls *int) http.Handler {
	return New("Test API", "0.0.0",
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		func(w http.ResponseWriter, _ *http.Request) { fmt.Fprintln(w, "up 1") },
		[]string{"https://example.com"},
		OptUseMiddleware(func(ctx huma.Context, next func(huma.Context)) { *middlewareCalls++; next(ctx) }),
		OptGroup("/api", OptGroup("/test", OptAutoRegister(pingServer{}))),
	)
}

func serve(h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	var calls int
	h := newTestRouter(&calls)

	for _, tt := range []struct {
		target string
		status int
		body   string
	}{
		{"/liveness", http.StatusOK, "."},
		{"/readiness", http.StatusServiceUnavailable, ""},
		{"/metrics", http.StatusOK, "up 1"},
		{"/api/test/ping", http.StatusOK, `"pong"`},
		{"/api/test/ping/", http.StatusOK, `"pong"`},
		{"/api/ping", http.StatusNotFound, ""},
	} {
		rec := serve(h, http.MethodGet, tt.target, nil)
		if rec.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.target, rec.Code, tt.status)
		}
		if !strings.Contains(rec.Body.String(), tt.body) {
			t.Errorf("GET %s body = %q, want %q", tt.target, rec.Body, tt.body)
		}
	}

	if calls != 2 {
		t.Fatalf("middleware called %d times, want 2", calls)
	}
}

func TestNewCORS(t *testing.T) {
	var calls int
	h := newTestRouter(&calls)

	rec := serve(h, http.MethodOptions, "/api/test/ping", http.Header{
		"Origin":                        {"https://example.com"},
		"Access-Control-Request-Method": {http.MethodGet},
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}

	rec = serve(h, http.MethodGet, "/api/test/ping", http.Header{"Origin": {"https://evil.example"}})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Access-Control-Allow-Origin = %q for a foreign origin", got)
	}
}
