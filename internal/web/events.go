package web

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/hlog"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/search"
	"github.com/sidereusnuntius/tabletop/internal/view"
	"github.com/sidereusnuntius/tabletop/templates"
)

// latest holds the most recent value pushed by a listener; older values not yet sent are dropped.
type latest[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
	ready   chan struct{}
}

func newLatest[T any]() *latest[T] {
	return &latest[T]{ready: make(chan struct{}, 1)}
}

// put never blocks, so it is safe to call from cache listeners.
func (l *latest[T]) put(v T) {
	l.mu.Lock()
	l.value, l.pending = v, true
	l.mu.Unlock()
	select {
	case l.ready <- struct{}{}:
	default:
	}
}

func (l *latest[T]) take() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.value, l.pending
	l.pending = false
	return v, ok
}

// stream writes a server-sent event for every value put into l until the client goes away.
func stream[T any](w http.ResponseWriter, r *http.Request, l *latest[T], render func(T) templ.Component) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.ready:
		}
		v, ok := l.take()
		if !ok {
			continue
		}
		if err := writeEvent(ctx, w, "update", render(v)); err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("event stream closed")
			return
		}
		flusher.Flush()
	}
}

func writeEvent(ctx context.Context, w http.ResponseWriter, name string, c templ.Component) error {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return err
	}
	var out strings.Builder
	fmt.Fprintf(&out, "event: %s\n", name)
	scanner := bufio.NewScanner(&buf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		fmt.Fprintf(&out, "data: %s\n", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	out.WriteString("\n")
	_, err := w.Write([]byte(out.String()))
	return err
}

// fragment renders the live part of a page for a cache result, or returns nil for keys no page shows live.
func fragment(key query.Key, r query.Result, user domain.User) templ.Component {
	campaignID, _ := strconv.ParseInt(key.Scope, 10, 64)
	switch key.Kind {
	case resource.Campaigns:
		return templates.CampaignRows(view.FromResult[domain.Campaign](r))
	case resource.CharactersForCampaign:
		return templates.CharacterRows(view.FromResult[domain.Character](r), campaignID)
	case resource.PlacesForCampaign:
		return templates.PlaceRows(view.FromResult[domain.Place](r), campaignID)
	case resource.ItemsForCampaign:
		return templates.ItemRows(view.FromResult[domain.Item](r), campaignID)
	case resource.QuestsForCampaign:
		return templates.QuestRows(view.FromResult[domain.Quest](r), campaignID)
	case resource.CampaignDetail:
		d := view.CampaignDetail{Loading: r.Loading, Err: r.Err}
		if c, ok := query.Value[domain.CampaignDetail](r); ok {
			d.Campaign, d.Found = c, true
			d.Role, d.Member = view.RoleOf(c, user.ID)
		}
		return templates.Members(d)
	}
	return nil
}

// Events streams the live fragment of a cache key, e.g. /events?key=characters-for-campaign(3), each time the
// entry changes. The subscription is dropped when the client disconnects.
func Events(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := resource.ParseKey(r.URL.Query().Get("key"))
		if err != nil || fragment(key, query.Result{Key: key}, domain.User{}) == nil {
			http.Error(w, "unknown key", http.StatusBadRequest)
			return
		}
		user, _ := GetSession(r.Context())

		updates := newLatest[query.Result]()
		unsubscribe := h.State.Cache.Subscribe(key, updates.put)
		defer unsubscribe()
		hlog.FromRequest(r).Debug().Str("key", key.String()).Msg("streaming query")

		// The first event is the entry as it is now, fetching it if needed.
		updates.put(h.State.Cache.Read(key))
		stream(w, r, updates, func(res query.Result) templ.Component {
			return fragment(key, res, user)
		})
	}
}

// SearchUsers feeds a keystroke to the debounced member search. Results arrive on SearchEvents.
func SearchUsers(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.State.Users.Type(r.URL.Query().Get("q"))
		w.WriteHeader(http.StatusAccepted)
	}
}

func SearchEvents(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updates := newLatest[search.Response[domain.User]]()
		unsubscribe := h.State.UserResults.Subscribe(updates.put)
		defer unsubscribe()

		if last, ok := h.State.UserResults.Last(); ok {
			updates.put(last)
		}
		stream(w, r, updates, templates.UserResults)
	}
}
