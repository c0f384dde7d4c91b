package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"survey-match-service/internal/app"
	"survey-match-service/internal/domain"
	"survey-match-service/internal/logging"
)

// NewRouter mounts the health check, the survey websocket and the match API.
func NewRouter(service *app.SurveyService, log logging.Logger) http.Handler {
	ws := NewWSHandler(service, log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Get("/api/matches/{username}", matchesHandler(service))
	return r
}

func matchesHandler(service *app.SurveyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := service.Matches(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrInvalidUsername) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, errorPayload{Message: publicError(err)})
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
