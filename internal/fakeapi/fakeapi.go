// Package fakeapi is an in-memory stand-in for the campaign manager backend, used by tests. It serves the
// same routes under /api/v1, keeps its records in memory and counts the requests it receives per route.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/tabletop/internal/domain"
)

const Prefix = "/api/v1"

type account struct {
	user     domain.User
	password string
}

type failure struct {
	status int
	detail string
}

type Backend struct {
	mu         sync.Mutex
	now        func() time.Time
	nextID     int64
	accounts   []account
	tokens     map[string]int64
	campaigns  []domain.Campaign
	members    []domain.CampaignMember
	characters []domain.Character
	places     []domain.Place
	items      []domain.Item
	quests     []domain.Quest
	hits       map[string]int
	failures   map[string][]failure
	// Gate, when set, is received from before every request is handled.
	gate chan struct{}
}

func New() *Backend {
	return &Backend{
		now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		nextID:   100,
		tokens:   map[string]int64{},
		hits:     map[string]int{},
		failures: map[string][]failure{},
	}
}

// Start serves the backend until the returned server is closed. The URL to hand to a client is
// server.URL + Prefix.
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b.Router())
}

// BaseURL returns the API base of a started server.
func BaseURL(s *httptest.Server) *url.URL {
	u, err := url.Parse(s.URL + Prefix)
	if err != nil {
		panic(err)
	}
	return u
}

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

// AddUser creates an account and returns it together with a valid token for it.
func (b *Backend) AddUser(id int64, username, password string) (domain.User, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := domain.User{ID: id, Username: username, Email: username + "@example.com", IsActive: true, CreatedAt: b.now()}
	b.accounts = append(b.accounts, account{user: u, password: password})
	token := fmt.Sprintf("token-%s", username)
	b.tokens[token] = id
	return u, token
}

func (b *Backend) AddCampaign(c domain.Campaign) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = b.now()
	}
	b.campaigns = append(b.campaigns, c)
}

func (b *Backend) AddCharacter(c domain.Character) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.characters = append(b.characters, c)
}

func (b *Backend) AddPlace(p domain.Place) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.places = append(b.places, p)
}

func (b *Backend) AddItem(i domain.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, i)
}

func (b *Backend) AddQuest(q domain.Quest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quests = append(b.quests, q)
}

// Hits returns how many requests reached the route, e.g. Hits("GET /campaigns").
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// Fail makes the next request to route fail with status and detail instead of being handled.
func (b *Backend) Fail(route string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = append(b.failures[route], failure{status: status, detail: detail})
}

// Hold makes every request wait until Release is called.
func (b *Backend) Hold() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gate != nil {
		close(b.gate)
		b.gate = nil
	}
}

func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Route(Prefix, func(r chi.Router) {
		b.on(r, http.MethodPost, "/auth/login", b.login)
		b.on(r, http.MethodPost, "/auth/register", b.register)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)
			b.on(r, http.MethodGet, "/users/me", b.me)
			b.on(r, http.MethodGet, "/users/search", b.searchUsers)

			b.on(r, http.MethodGet, "/campaigns", b.listCampaigns)
			b.on(r, http.MethodPost, "/campaigns", b.createCampaign)
			b.on(r, http.MethodGet, "/campaigns/{id}", b.getCampaign)
			b.on(r, http.MethodPut, "/campaigns/{id}", b.updateCampaign)
			b.on(r, http.MethodDelete, "/campaigns/{id}", b.deleteCampaign)
			b.on(r, http.MethodPost, "/campaigns/{id}/members", b.addMember)
			b.on(r, http.MethodDelete, "/campaigns/{id}/members/{userID}", b.removeMember)

			b.on(r, http.MethodPost, "/characters", create(b, &b.characters, func(c *domain.CharacterCreate, id int64, user int64, now time.Time) domain.Character {
				return domain.Character{ID: id, Name: c.Name, CampaignID: c.CampaignID, CreatorID: user, Race: c.Race,
					CharacterClass: c.CharacterClass, Level: c.Level, IsNPC: c.IsNPC, IsActive: c.IsActive, CreatedAt: now}
			}))
			b.on(r, http.MethodGet, "/characters/campaign/{id}", list(b, &b.characters, func(c domain.Character) int64 { return c.CampaignID }))
			b.on(r, http.MethodGet, "/characters/{id}", b.getCharacter)
			b.on(r, http.MethodDelete, "/characters/{id}", remove(b, &b.characters, func(c domain.Character) int64 { return c.ID }, "Character"))

			b.on(r, http.MethodPost, "/places", create(b, &b.places, func(p *domain.PlaceCreate, id int64, _ int64, now time.Time) domain.Place {
				return domain.Place{ID: id, Name: p.Name, CampaignID: p.CampaignID, PlaceType: p.PlaceType,
					Description: p.Description, Population: p.Population, Climate: p.Climate, Terrain: p.Terrain, CreatedAt: now}
			}))
			b.on(r, http.MethodGet, "/places/campaign/{id}", list(b, &b.places, func(p domain.Place) int64 { return p.CampaignID }))
			b.on(r, http.MethodDelete, "/places/{id}", remove(b, &b.places, func(p domain.Place) int64 { return p.ID }, "Place"))

			b.on(r, http.MethodPost, "/items", create(b, &b.items, func(i *domain.ItemCreate, id int64, _ int64, now time.Time) domain.Item {
				return domain.Item{ID: id, Name: i.Name, CampaignID: i.CampaignID, ItemType: i.ItemType, Rarity: i.Rarity,
					Description: i.Description, Weight: i.Weight, Value: i.Value, Damage: i.Damage,
					RequiresAttunement: i.RequiresAttunement, IsMagical: i.IsMagical, IsCursed: i.IsCursed, CreatedAt: now}
			}))
			b.on(r, http.MethodGet, "/items/campaign/{id}", list(b, &b.items, func(i domain.Item) int64 { return i.CampaignID }))
			b.on(r, http.MethodDelete, "/items/{id}", remove(b, &b.items, func(i domain.Item) int64 { return i.ID }, "Item"))

			b.on(r, http.MethodPost, "/quests", create(b, &b.quests, func(q *domain.QuestCreate, id int64, _ int64, now time.Time) domain.Quest {
				return domain.Quest{ID: id, Name: q.Name, CampaignID: q.CampaignID, Description: q.Description,
					Objectives: q.Objectives, Rewards: q.Rewards, QuestGiver: q.QuestGiver, Location: q.Location,
					Status: q.Status, CreatedAt: now}
			}))
			b.on(r, http.MethodGet, "/quests/campaign/{id}", list(b, &b.quests, func(q domain.Quest) int64 { return q.CampaignID }))
			b.on(r, http.MethodDelete, "/quests/{id}", remove(b, &b.quests, func(q domain.Quest) int64 { return q.ID }, "Quest"))

			b.on(r, http.MethodPost, "/dndbeyond/import", b.importCharacter)
		})
	})
	return r
}

type userKey struct{}

// on registers h for the route and counts the requests reaching it, failing them when a failure is queued.
func (b *Backend) on(r chi.Router, method, pattern string, h http.HandlerFunc) {
	route := method + " " + pattern
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		gate := b.gate
		b.mu.Unlock()
		if gate != nil {
			<-gate
		}

		b.mu.Lock()
		b.hits[route]++
		var fail *failure
		if pending := b.failures[route]; len(pending) > 0 {
			fail = &pending[0]
			b.failures[route] = pending[1:]
		}
		b.mu.Unlock()

		if fail != nil {
			detail(w, fail.status, fail.detail)
			return
		}
		h(w, req)
	}))
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		id, known := b.tokens[token]
		b.mu.Unlock()
		if !ok || !known {
			detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), id)))
	})
}

func detail(w http.ResponseWriter, status int, message string) {
	write(w, status, map[string]string{"detail": message})
}

func write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}
