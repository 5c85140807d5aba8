package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sidereusnuntius/tabletop/internal/client"
	"github.com/sidereusnuntius/tabletop/internal/config"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/fakeapi"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/search"
)

var ctx = context.Background()

func setup(t *testing.T) (config.Configuration, *fakeapi.Backend, func() *State) {
	t.Helper()
	b := fakeapi.New()
	b.AddUser(12, "alice", "correct horse")
	b.AddCampaign(domain.Campaign{ID: 3, Name: "Lost Mines", OwnerID: 12})
	server := b.Start()
	t.Cleanup(server.Close)

	cfg := config.Configuration{
		ApiUrl:           fakeapi.BaseURL(server),
		DbUrl:            filepath.Join(t.TempDir(), "state.db"),
		MigrationsFolder: "../../migrations",
		SessionStore:     config.SqliteStore,
		SearchDebounce:   time.Millisecond,
		MinSearchLength:  2,
		ImportWorkers:    1,
	}
	open := func() *State {
		s, err := New(ctx, cfg, server.Client())
		if err != nil {
			t.Fatalf("failed to build state: %s", err)
		}
		t.Cleanup(s.Teardown)
		return s
	}
	return cfg, b, open
}

func TestLogin_RefreshesQueries(t *testing.T) {
	_, b, open := setup(t)
	s := open()

	_, err := resource.ListCampaigns(ctx, s.Cache)
	if !client.IsUnauthorized(err) {
		t.Fatalf("expected a 401 before logging in, got %v", err)
	}

	if err = s.Session.Login(ctx, domain.Credentials{Username: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	campaigns, err := resource.ListCampaigns(ctx, s.Cache)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(campaigns) != 1 || campaigns[0].Name != "Lost Mines" {
		t.Errorf("unexpected campaigns %+v", campaigns)
	}
	if n := b.Hits("GET /campaigns"); n != 2 {
		t.Errorf("expected two fetches, got %d", n)
	}

	if err = s.Session.Logout(); err != nil {
		t.Fatal(err)
	}
	if r := s.Cache.Peek(resource.CampaignsKey()); !r.Stale {
		t.Error("expected the campaigns to be stale after logging out")
	}
}

func TestSession_SurvivesRestart(t *testing.T) {
	_, _, open := setup(t)
	s := open()
	if err := s.Session.Login(ctx, domain.Credentials{Username: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	s.Teardown()
	s.Teardown()

	restarted := open()
	u, ok := restarted.Session.CurrentUser()
	if !ok || u.Username != "alice" {
		t.Errorf("expected the session to be restored, got %+v", u)
	}
}

func TestUserSearch(t *testing.T) {
	_, _, open := setup(t)
	s := open()
	if err := s.Session.Login(ctx, domain.Credentials{Username: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	responses := make(chan search.Response[domain.User], 4)
	unsubscribe := s.UserResults.Subscribe(func(r search.Response[domain.User]) {
		responses <- r
	})
	defer unsubscribe()

	s.Users.Type("ali")
	select {
	case r := <-responses:
		if r.Err != nil || len(r.Results) != 1 || r.Results[0].ID != 12 {
			t.Errorf("unexpected response %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no search response")
	}
}

func TestStartImports(t *testing.T) {
	_, _, open := setup(t)
	s := open()
	if err := s.StartImports(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if s.Importer == nil {
		t.Fatal("expected an importer")
	}
}

func TestNewHTTPClient_NoTimeoutOverride(t *testing.T) {
	if got := newHTTPClient().Timeout; got != 0 {
		t.Errorf("Timeout = %v, want 0", got)
	}
}
