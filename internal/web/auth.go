package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/templates"
)

type key struct{}

func GetSession(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(key{}).(domain.User)
	return u, ok
}

// SessionMiddleware puts the logged in user, if any, in the request context.
func SessionMiddleware(h *Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := h.State.Session.CurrentUser(); ok && h.State.Session.IsAuthenticated() {
				r = r.WithContext(context.WithValue(r.Context(), key{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func AuthenticatedMiddleware(h *Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSession(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, LoginRoute, http.StatusSeeOther)
		})
	}
}

func renderLogin(h *Handler, w http.ResponseWriter, r *http.Request, status int, username string, err error) {
	h.render(w, r, status, page{
		title: "Log in",
		place: templates.Auth,
		child: templates.Login(LoginRoute, username, fieldErrors(err)),
	}, err)
}

func GetLogin(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		renderLogin(h, w, r, http.StatusOK, "", nil)
	}
}

func Login(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderLogin(h, w, r, http.StatusBadRequest, "", errors.New("failed to parse form body"))
			return
		}
		creds := domain.Credentials{
			Username: r.PostForm.Get("username"),
			Password: r.PostForm.Get("password"),
		}

		if err := h.State.Session.Login(r.Context(), creds); err != nil {
			hlog.FromRequest(r).Info().Err(err).Str("username", creds.Username).Msg("login failed")
			renderLogin(h, w, r, statusOf(err), creds.Username, err)
			return
		}
		h.redirect(w, r, "/", "")
	}
}

func GetSignup(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderSignup(h, w, r, http.StatusOK, domain.Registration{}, nil)
	}
}

func renderSignup(h *Handler, w http.ResponseWriter, r *http.Request, status int, reg domain.Registration, err error) {
	h.render(w, r, status, page{
		title: "Sign up",
		place: templates.Auth,
		child: templates.SignUp(SignUpRoute, reg.Username, reg.Email, fieldErrors(err)),
	}, err)
}

func SignUp(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderSignup(h, w, r, http.StatusBadRequest, domain.Registration{}, errors.New("failed to parse form body"))
			return
		}
		reg := domain.Registration{
			Username: r.PostForm.Get("username"),
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
		}

		if err := h.State.Session.Register(r.Context(), reg); err != nil {
			renderSignup(h, w, r, statusOf(err), reg, err)
			return
		}
		h.redirect(w, r, "/", "Welcome, "+reg.Username+"!")
	}
}

func Logout(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.State.Session.Logout(); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("failed to clear session")
		}
		if err := h.SessionManager.Load(r).Destroy(w); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("failed to destroy cookie session")
		}
		http.Redirect(w, r, LoginRoute, http.StatusSeeOther)
	}
}
