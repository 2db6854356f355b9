package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mockmate/internal/handlers"
	"mockmate/internal/middleware"
	"mockmate/internal/models"
)

type APIHandlers struct {
	Interviews  *handlers.InterviewHandler
	Sessions    *handlers.SessionHandler
	Preferences *handlers.PreferenceHandler
}

const sessionPath = "/interviews/{id}/questions/{index}/session"

// APIRoutes mounts the authenticated /api/v1 surface. The websocket stream is
// registered outside the request timeout since it lives as long as the socket.
func APIRoutes(router *chi.Mux, h APIHandlers, authenticate func(http.Handler) http.Handler, requestTimeout time.Duration) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticate)

		r.Get(sessionPath+"/stream", h.Sessions.StreamHandler)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(requestTimeout))

			r.With(middleware.ValidateRequest[*models.InterviewRequest]()).Post("/interviews", h.Interviews.CreateHandler)
			r.Get("/interviews", h.Interviews.ListHandler)
			r.Get("/interviews/{id}", h.Interviews.GetHandler)
			r.With(middleware.ValidateRequest[*models.UpdateInterviewRequest]()).Put("/interviews/{id}", h.Interviews.UpdateHandler)
			r.Delete("/interviews/{id}", h.Interviews.DeleteHandler)
			r.Get("/interviews/{id}/feedback", h.Interviews.FeedbackHandler)

			r.Post(sessionPath, h.Sessions.StartHandler)
			r.Get(sessionPath, h.Sessions.GetHandler)
			r.Delete(sessionPath, h.Sessions.CloseHandler)
			r.With(middleware.ValidateRequest[*models.SegmentsRequest]()).Put(sessionPath+"/segments", h.Sessions.SegmentsHandler)
			r.Post(sessionPath+"/{action}", h.Sessions.ActionHandler)

			r.Get("/preferences/theme", h.Preferences.GetThemeHandler)
			r.With(middleware.ValidateRequest[*models.ThemeRequest]()).Put("/preferences/theme", h.Preferences.PutThemeHandler)
		})
	})
}
