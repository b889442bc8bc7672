package routes

import (
	"net/http"

	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Host       *handlers.HostHandler
	Result     *handlers.ResultHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, jwtSecret []byte, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Живая сетка: публичный websocket
	router.Get("/ws/guilds/{guildID}", h.WebSocket.ServeWs)

	router.Route("/guilds/{guildID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireGuild("guildID"))

		r.Get("/tournament", h.Tournament.GetHandler)
		r.Post("/tournament/registrations", h.Tournament.RegisterHandler)
		r.Delete("/tournament/registrations", h.Tournament.UnregisterHandler)

		r.Get("/results", h.Result.ListHandler)
		r.Get("/results/{runID}", h.Result.GetHandler)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/invitations", h.Team.ListInvitationsHandler)
			r.Post("/invitations", h.Team.InviteHandler)
			r.Post("/invitations/{inviterID}/accept", h.Team.AcceptHandler)
			r.Delete("/invitations/{inviterID}", h.Team.DeclineHandler)
			r.Get("/teammate", h.Team.TeammateHandler)
			r.Delete("/membership", h.Team.LeaveHandler)
		})

		r.Get("/hosts", h.Host.ListHandler)
		r.Post("/hosts/registrations", h.Host.RegisterHandler)
		r.Delete("/hosts/registrations", h.Host.UnregisterHandler)

		// Только для хостов
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.RoleHost))

			r.Put("/tournament", h.Tournament.ConfigureHandler)
			r.Delete("/tournament", h.Tournament.ResetHandler)
			r.Post("/tournament/fillers", h.Tournament.AddFillersHandler)
			r.Post("/tournament/start", h.Tournament.StartHandler)
			r.Post("/tournament/winners", h.Tournament.RecordWinnerHandler)
			r.Post("/hosts", h.Host.OpenHandler)
			r.Delete("/results/{runID}", h.Result.DeleteHandler)
		})
	})
}
