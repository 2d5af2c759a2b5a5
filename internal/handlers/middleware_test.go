package handlers

import (
	"errors"
	"net/http"
	"testing"
)

func TestUserIdMiddleware(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		router := newTestRouter(fullService())

		w := performRequest(t, router, http.MethodGet, "/api/v1/metrics", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status: want 401, got %d", w.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		router := newTestRouter(fullService())

		h := http.Header{}
		h.Set("Authorization", "Token abc")
		w := performRequest(t, router, http.MethodGet, "/api/v1/metrics", "", h)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status: want 401, got %d", w.Code)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		svc := fullService()
		auth := &mockAuth{parseErr: errors.New("token expired")}
		svc.Authorization = auth
		router := newTestRouter(svc)

		w := performRequest(t, router, http.MethodGet, "/api/v1/metrics", "", authHeader("stale"))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status: want 401, got %d", w.Code)
		}
		if auth.lastParseToken != "stale" {
			t.Errorf("parsed token: got %q", auth.lastParseToken)
		}
	})

	t.Run("accepted token", func(t *testing.T) {
		svc := fullService()
		svc.Authorization = &mockAuth{parseID: 7}
		router := newTestRouter(svc)

		w := performRequest(t, router, http.MethodGet, "/api/v1/metrics", "", authHeader("good"))
		if w.Code != http.StatusOK {
			t.Fatalf("status: want 200, got %d (%s)", w.Code, w.Body.String())
		}
	})
}
