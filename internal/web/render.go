package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/session"
	"github.com/sidereusnuntius/tabletop/internal/validate"
	"github.com/sidereusnuntius/tabletop/templates"
)

type page struct {
	title string
	place templates.Place
	child templ.Component
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, p page, err error) {
	user, ok := GetSession(r.Context())
	flash := h.popFlash(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err = templates.Layout(templates.PageData{
		Authenticated: ok,
		Username:      user.Username,
		PageTitle:     p.title,
		Place:         p.place,
		Flash:         flash,
		Err:           err,
		Child:         p.child,
	}).Render(r.Context(), w)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("page", p.title).Msg("failed to render page")
	}
}

// fail shows err on the page. A 401 means the backend no longer accepts the session's token: the session is
// cleared and the user is sent to the login page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, p page, err error) {
	if client.IsUnauthorized(err) {
		if lerr := h.State.Session.Logout(); lerr != nil {
			hlog.FromRequest(r).Error().Err(lerr).Msg("failed to clear the rejected session")
		}
		h.putFlash(w, r, "Your session has expired, please log in again.")
		http.Redirect(w, r, LoginRoute, http.StatusSeeOther)
		return
	}
	hlog.FromRequest(r).Debug().Err(err).Str("page", p.title).Msg("request failed")
	h.render(w, r, statusOf(err), p, err)
}

func (h *Handler) putFlash(w http.ResponseWriter, r *http.Request, msg string) {
	if err := h.SessionManager.Load(r).PutString(w, FlashKey, msg); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to store flash message")
	}
}

func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request) string {
	msg, err := h.SessionManager.Load(r).PopString(w, FlashKey)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to read flash message")
	}
	return msg
}

// redirect leaves msg for the next page and sends the browser to it.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to, msg string) {
	if msg != "" {
		h.putFlash(w, r, msg)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func statusOf(err error) int {
	var httpErr *client.HttpError
	switch {
	case errors.Is(err, validate.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &httpErr) && httpErr.Status == 0:
		return http.StatusBadGateway
	case errors.As(err, &httpErr) && httpErr.Status >= 400 && httpErr.Status < 500:
		return httpErr.Status
	default:
		return http.StatusInternalServerError
	}
}

// fieldErrors returns the per field messages of a validation error, or nil.
func fieldErrors(err error) templates.Errors {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// formID reads an optional numeric form or query value; anything unparsable is 0.
func formID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.FormValue(name), 10, 64)
	return id
}

func notFound(h *Handler, w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, page{title: "Not found"}, errors.New("page not found"))
}
