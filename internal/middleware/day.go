package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/enum"
)

type contextKey string

const dayKey contextKey = "day"

// RequireDay resolves the {day} URL parameter to its weekday key and stores
// it in the request context. Unknown days are rejected with 400.
func RequireDay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "day")
		if raw == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing day"})
			return
		}

		day, err := enum.ParseDay(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
			return
		}

		ctx := context.WithValue(r.Context(), dayKey, day)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DayFromContext returns the weekday key set by RequireDay, or "".
func DayFromContext(ctx context.Context) string {
	day, _ := ctx.Value(dayKey).(string)
	return day
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
