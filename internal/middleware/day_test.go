package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/middleware"
)

func newDayRouter(t *testing.T, wantDay string, called *bool) http.Handler {
	r := chi.NewRouter()
	r.With(middleware.RequireDay).Get("/days/{day}/menu", func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if got := middleware.DayFromContext(r.Context()); got != wantDay {
			t.Errorf("day: got %q, want %q", got, wantDay)
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRequireDay_Canonical(t *testing.T) {
	var called bool
	router := newDayRouter(t, "lunes", &called)

	req := httptest.NewRequest("GET", "/days/lunes/menu", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !called {
		t.Fatal("handler not called")
	}
}

func TestRequireDay_AccentedInput(t *testing.T) {
	var called bool
	router := newDayRouter(t, "miercoles", &called)

	req := httptest.NewRequest("GET", "/days/Mi%C3%A9rcoles/menu", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !called {
		t.Fatal("handler not called")
	}
}

func TestRequireDay_Invalid(t *testing.T) {
	var called bool
	router := newDayRouter(t, "", &called)

	req := httptest.NewRequest("GET", "/days/funday/menu", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if called {
		t.Fatal("handler should not be called")
	}
}

func TestDayFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := middleware.DayFromContext(req.Context()); got != "" {
		t.Errorf("expected empty day, got %q", got)
	}
}
