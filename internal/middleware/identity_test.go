package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/bywater/internal/auth"
)

func TestIdentityHeaderPopulatesContext(t *testing.T) {
	var got int64
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.MemberID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	req.Header.Set("X-Member-ID", "42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got != 42 {
		t.Errorf("member id = %d, want 42", got)
	}
}

func TestIdentityMissingHeaderPassesThrough(t *testing.T) {
	var called bool
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.FromContext(r.Context()); ok {
			t.Error("expected no identity in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler not called")
	}
}

func TestIdentityBadHeaderRejected(t *testing.T) {
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	for _, raw := range []string{"abc", "-1", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
		req.Header.Set("X-Member-ID", raw)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("header %q: status = %d, want 400", raw, rec.Code)
		}
	}
}
