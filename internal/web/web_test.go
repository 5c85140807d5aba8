package web

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs"
	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/tabletop/internal/config"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/fakeapi"
	"github.com/sidereusnuntius/tabletop/internal/state"
)

type fixture struct {
	backend *fakeapi.Backend
	state   *state.State
	server  *httptest.Server
	client  *http.Client
}

func setup(t *testing.T) *fixture {
	t.Helper()
	b := fakeapi.New()
	b.AddUser(1, "gm", "gm password")
	b.AddUser(12, "alice", "correct horse")
	api := b.Start()
	t.Cleanup(api.Close)

	s, err := state.New(context.Background(), config.Configuration{
		ApiUrl:           fakeapi.BaseURL(api),
		DbUrl:            filepath.Join(t.TempDir(), "web.db"),
		MigrationsFolder: "../../migrations",
		SessionStore:     config.SqliteStore,
		SearchDebounce:   time.Millisecond,
		MinSearchLength:  2,
	}, api.Client())
	if err != nil {
		t.Fatalf("failed to build state: %s", err)
	}
	t.Cleanup(s.Teardown)

	h := New(s, scs.NewCookieManager("u46IpCV9y5Vlur8YvODJEhgOY8m9JVE4"))
	r := chi.NewRouter()
	h.Mount(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, _ := cookiejar.New(nil)
	return &fixture{
		backend: b,
		state:   s,
		server:  server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (f *fixture) login(t *testing.T, username, password string) {
	t.Helper()
	if err := f.state.Session.Login(context.Background(), domain.Credentials{Username: username, Password: password}); err != nil {
		t.Fatalf("login: %s", err)
	}
}

func (f *fixture) get(t *testing.T, path string) (int, string, *http.Response) {
	t.Helper()
	res, err := f.client.Get(f.server.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(body), res
}

func (f *fixture) post(t *testing.T, path string, form url.Values) (int, string, *http.Response) {
	t.Helper()
	res, err := f.client.PostForm(f.server.URL+path, form)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(body), res
}

func TestAuthGating(t *testing.T) {
	f := setup(t)
	for _, path := range []string{"/", "/campaigns", "/characters", "/events?key=campaigns"} {
		status, _, res := f.get(t, path)
		if status != http.StatusSeeOther || res.Header.Get("Location") != LoginRoute {
			t.Errorf("%s: expected a redirect to the login page, got %d", path, status)
		}
	}
}

func TestLogin(t *testing.T) {
	f := setup(t)

	status, body, _ := f.post(t, LoginRoute, url.Values{"username": {"alice"}, "password": {"wrong"}})
	if status != http.StatusUnauthorized || !strings.Contains(body, "invalid credentials") {
		t.Errorf("expected the login to be rejected, got %d", status)
	}

	status, body, _ = f.post(t, LoginRoute, url.Values{"username": {""}, "password": {""}})
	if status != http.StatusBadRequest || !strings.Contains(body, `class="field-error"`) {
		t.Errorf("expected the empty form to be rejected, got %d", status)
	}
	if n := f.backend.Hits("POST /auth/login"); n != 1 {
		t.Errorf("an invalid form must not reach the backend, got %d logins", n)
	}

	status, _, res := f.post(t, LoginRoute, url.Values{"username": {"alice"}, "password": {"correct horse"}})
	if status != http.StatusSeeOther || res.Header.Get("Location") != "/" {
		t.Fatalf("expected a redirect to the dashboard, got %d", status)
	}
	status, body, _ = f.get(t, "/")
	if status != http.StatusOK || !strings.Contains(body, "Welcome back, alice!") {
		t.Errorf("unexpected dashboard %d %q", status, body)
	}
}

func TestCreateCampaign(t *testing.T) {
	f := setup(t)
	f.login(t, "alice", "correct horse")

	status, body, _ := f.post(t, "/campaigns", url.Values{"name": {""}})
	if status != http.StatusBadRequest || !strings.Contains(body, `class="field-error"`) {
		t.Errorf("expected a field error, got %d", status)
	}
	if n := f.backend.Hits("POST /campaigns"); n != 0 {
		t.Errorf("an invalid campaign must not be sent, got %d", n)
	}

	status, _, res := f.post(t, "/campaigns", url.Values{
		"name":        {"Lost Mines"},
		"description": {""},
		"setting":     {"Forgotten Realms"},
		"is_active":   {"true"},
	})
	if status != http.StatusSeeOther || !strings.HasPrefix(res.Header.Get("Location"), "/campaigns/") {
		t.Fatalf("expected a redirect to the campaign, got %d", status)
	}

	status, body, _ = f.get(t, res.Header.Get("Location"))
	if status != http.StatusOK || !strings.Contains(body, "<h1>Lost Mines</h1>") {
		t.Errorf("unexpected campaign page %d %q", status, body)
	}
	if !strings.Contains(body, `Campaign &#34;Lost Mines&#34; created.`) {
		t.Errorf("expected the flash message, got %q", body)
	}

	_, body, _ = f.get(t, "/campaigns")
	if !strings.Contains(body, "Lost Mines") {
		t.Errorf("expected the new campaign in the list")
	}
}

func TestAddMember(t *testing.T) {
	f := setup(t)
	f.backend.AddCampaign(domain.Campaign{ID: 5, Name: "Curse of Strahd", OwnerID: 1})
	f.login(t, "gm", "gm password")

	status, _, res := f.post(t, "/campaigns/5/members", url.Values{"user_id": {"12"}, "role": {"dm"}})
	if status != http.StatusSeeOther || res.Header.Get("Location") != "/campaigns/5" {
		t.Fatalf("expected a redirect to the campaign, got %d", status)
	}

	_, body, _ := f.get(t, "/campaigns/5")
	if !strings.Contains(body, `alice <span class="role">dm</span>`) {
		t.Errorf("expected alice to be listed as dm, got %q", body)
	}
}

func TestUnauthorizedLogsOut(t *testing.T) {
	f := setup(t)
	f.login(t, "alice", "correct horse")
	f.backend.Fail("GET /campaigns", http.StatusUnauthorized, "Could not validate credentials")

	status, _, res := f.get(t, "/campaigns")
	if status != http.StatusSeeOther || res.Header.Get("Location") != LoginRoute {
		t.Fatalf("expected a redirect to the login page, got %d", status)
	}
	if f.state.Session.IsAuthenticated() {
		t.Error("expected the session to be cleared")
	}

	_, body, _ := f.get(t, LoginRoute)
	if !strings.Contains(body, "Your session has expired") {
		t.Errorf("expected the flash message, got %q", body)
	}
}

func TestForbiddenKeepsSession(t *testing.T) {
	f := setup(t)
	f.backend.AddCampaign(domain.Campaign{ID: 5, Name: "Curse of Strahd", OwnerID: 1})
	f.login(t, "alice", "correct horse")

	status, body, _ := f.post(t, "/campaigns/5/delete", nil)
	if status != http.StatusForbidden || !strings.Contains(body, "Not enough permissions") {
		t.Errorf("expected the refusal to be shown, got %d", status)
	}
	if !f.state.Session.IsAuthenticated() {
		t.Error("a 403 must not log out")
	}
}

func TestDeleteCharacter(t *testing.T) {
	f := setup(t)
	f.backend.AddCampaign(domain.Campaign{ID: 3, Name: "Lost Mines", OwnerID: 12})
	f.backend.AddCharacter(domain.Character{ID: 7, Name: "Tordek", CampaignID: 3, Level: 4})
	f.backend.AddCharacter(domain.Character{ID: 8, Name: "Mialee", CampaignID: 3, Level: 4})
	f.login(t, "alice", "correct horse")

	_, body, _ := f.get(t, "/characters?campaign=3")
	if !strings.Contains(body, "Tordek") {
		t.Fatalf("expected Tordek to be listed")
	}

	status, _, res := f.post(t, "/characters/7/delete", url.Values{"campaign_id": {"3"}})
	if status != http.StatusSeeOther || res.Header.Get("Location") != "/characters?campaign=3" {
		t.Fatalf("expected a redirect to the list, got %d", status)
	}

	_, body, _ = f.get(t, "/characters?campaign=3")
	if strings.Contains(body, "Tordek") || !strings.Contains(body, "Mialee") {
		t.Errorf("expected only Mialee to be listed, got %q", body)
	}
}

func TestImport_Synchronous(t *testing.T) {
	f := setup(t)
	f.backend.AddCampaign(domain.Campaign{ID: 3, Name: "Lost Mines", OwnerID: 12})
	f.login(t, "alice", "correct horse")

	status, _, res := f.post(t, "/import", url.Values{
		"campaign_id":   {"3"},
		"character_url": {"https://www.dndbeyond.com/characters/12345"},
	})
	if status != http.StatusSeeOther || res.Header.Get("Location") != "/characters?campaign=3" {
		t.Fatalf("expected a redirect to the characters, got %d", status)
	}
	_, body, _ := f.get(t, "/characters?campaign=3")
	if !strings.Contains(body, "Imported 12345") {
		t.Errorf("expected the imported character, got %q", body)
	}
}

func TestEvents(t *testing.T) {
	f := setup(t)
	f.backend.AddCampaign(domain.Campaign{ID: 3, Name: "Lost Mines", OwnerID: 12})
	f.backend.AddCharacter(domain.Character{ID: 7, Name: "Tordek", CampaignID: 3, Level: 4})
	f.login(t, "alice", "correct horse")

	status, _, _ := f.get(t, "/events?key=notes-for-campaign(3)")
	if status != http.StatusBadRequest {
		t.Errorf("expected an unknown key to be rejected, got %d", status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/events?key="+url.QueryEscape("characters-for-campaign(3)"), nil)
	res, err := f.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.Header.Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type %q", res.Header.Get("Content-Type"))
	}

	// Events are sent until one carries the loaded list.
	scanner := bufio.NewScanner(res.Body)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "data: ") && strings.Contains(scanner.Text(), "Tordek") {
			return
		}
	}
	t.Errorf("no event carried the character list: %v", scanner.Err())
}
