package web

import (
	"github.com/alexedwards/scs"
	"github.com/sidereusnuntius/tabletop/internal/state"
)

const (
	LoginRoute  = "/login"
	SignUpRoute = "/signup"
	LogoutRoute = "/logout"
	EventsRoute = "/events"
	FlashKey    = "flash"
)

// Handler serves the web UI for the process's session. There is one identity per process, so the cookie
// session only carries flash messages between a POST and the page it redirects to.
type Handler struct {
	State          *state.State
	SessionManager *scs.Manager
}

func New(s *state.State, manager *scs.Manager) Handler {
	return Handler{
		State:          s,
		SessionManager: manager,
	}
}
