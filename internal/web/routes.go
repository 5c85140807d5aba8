package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

func (h *Handler) Mount(r chi.Router) {
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(SessionMiddleware(h))

	r.Get(LoginRoute, GetLogin(h))
	r.Post(LoginRoute, Login(h))
	r.Get(SignUpRoute, GetSignup(h))
	r.Post(SignUpRoute, SignUp(h))
	r.Post(LogoutRoute, Logout(h))

	r.Group(func(r chi.Router) {
		r.Use(AuthenticatedMiddleware(h))

		r.Get("/", Dashboard(h))
		r.Get(EventsRoute, Events(h))

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", ListCampaigns(h))
			r.Post("/", CreateCampaign(h))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", GetCampaign(h))
				r.Post("/", UpdateCampaign(h))
				r.Post("/delete", DeleteCampaign(h))
				r.Post("/members", AddMember(h))
				r.Post("/members/{userID}/delete", RemoveMember(h))
			})
		})

		r.Get("/users/search", SearchUsers(h))
		r.Get("/users/search/events", SearchEvents(h))

		r.Get("/characters", ListCharacters(h))
		r.Post("/characters", CreateCharacter(h))
		r.Post("/characters/{id}/delete", DeleteCharacter(h))
		r.Get("/places", ListPlaces(h))
		r.Post("/places", CreatePlace(h))
		r.Post("/places/{id}/delete", DeletePlace(h))
		r.Get("/items", ListItems(h))
		r.Post("/items", CreateItem(h))
		r.Post("/items/{id}/delete", DeleteItem(h))
		r.Get("/quests", ListQuests(h))
		r.Post("/quests", CreateQuest(h))
		r.Post("/quests/{id}/delete", DeleteQuest(h))

		r.Get("/import", GetImport(h))
		r.Post("/import", Import(h))
		r.Get("/import/{job}", ImportStatus(h))
	})
}
