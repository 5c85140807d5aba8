package templates

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/queue"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/search"
	"github.com/sidereusnuntius/tabletop/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %s", err)
	}
	return b.String()
}

func TestLayout(t *testing.T) {
	cases := []struct {
		name     string
		data     PageData
		contains []string
		absent   []string
	}{
		{
			name: "authenticated",
			data: PageData{Authenticated: true, Username: "alice", PageTitle: "Campaigns", Place: PlaceCampaigns},
			contains: []string{
				`<title>Campaigns | Tabletop</title>`,
				`<a href="/campaigns" class="current">Campaigns</a>`,
				`<span>alice</span>`,
			},
			absent: []string{`href="/login"`},
		},
		{
			name:     "anonymous with flash and error",
			data:     PageData{PageTitle: "Log in", Place: Auth, Flash: "Account created", Err: errors.New("401: Incorrect username or password")},
			contains: []string{`href="/login"`, `<p class="flash">Account created</p>`, `Incorrect username or password`},
			absent:   []string{`action="/logout"`},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := render(t, Layout(c.data))
			for _, s := range c.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected %q in %q", s, got)
				}
			}
			for _, s := range c.absent {
				if strings.Contains(got, s) {
					t.Errorf("did not expect %q in %q", s, got)
				}
			}
		})
	}
}

func TestEscaping(t *testing.T) {
	l := view.List[domain.Campaign]{
		Key:   resource.CampaignsKey(),
		Items: []domain.Campaign{{ID: 3, Name: "<script>alert(1)</script>", IsActive: true}},
	}
	got := render(t, CampaignRows(l))
	if strings.Contains(got, "<script>") {
		t.Errorf("campaign name was not escaped: %q", got)
	}
	if !strings.Contains(got, `<a href="/campaigns/3">`) {
		t.Errorf("expected a link to the campaign: %q", got)
	}
}

func TestCampaignRows_States(t *testing.T) {
	cases := []struct {
		name string
		list view.List[domain.Campaign]
		want string
	}{
		{"empty", view.List[domain.Campaign]{Items: []domain.Campaign{}}, "Create your first campaign"},
		{"loading", view.List[domain.Campaign]{Items: []domain.Campaign{}, Loading: true}, "Loading"},
		{"error", view.List[domain.Campaign]{Items: []domain.Campaign{}, Err: errors.New("network error")}, `<p class="error">network error</p>`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := render(t, CampaignRows(c.list)); !strings.Contains(got, c.want) {
				t.Errorf("expected %q in %q", c.want, got)
			}
		})
	}
}

func TestCampaignDetail_ManageControls(t *testing.T) {
	d := view.CampaignDetail{
		Found: true,
		Campaign: domain.CampaignDetail{
			Campaign: domain.Campaign{ID: 5, Name: "Curse of Strahd", OwnerID: 1},
			Owner:    domain.User{ID: 1, Username: "gm"},
			Members:  []domain.CampaignMember{{UserID: 12, Role: domain.RoleDM, User: domain.User{ID: 12, Username: "alice"}}},
		},
		Characters: view.List[domain.Character]{Items: []domain.Character{}},
		Places:     view.List[domain.Place]{Items: []domain.Place{}},
		Items:      view.List[domain.Item]{Items: []domain.Item{}},
		Quests:     view.List[domain.Quest]{Items: []domain.Quest{}},
	}

	viewer := render(t, CampaignDetail(d, 30, nil))
	if strings.Contains(viewer, "Add Member") || strings.Contains(viewer, "Delete campaign") {
		t.Errorf("a viewer must not see the management controls")
	}

	d.Role, d.Member = domain.RoleDM, true
	owner := render(t, CampaignDetail(d, 1, Errors{"user_id": "is required"}))
	for _, s := range []string{"Add Member", `action="/campaigns/5/members/12/delete"`, "Delete campaign", "is required", `data-live="/events?key=campaign-detail(5)"`} {
		if !strings.Contains(owner, s) {
			t.Errorf("expected %q in the owner's page", s)
		}
	}
}

func TestCharacters(t *testing.T) {
	f := view.Filtered[domain.Character]{
		Campaigns: view.List[domain.Campaign]{Items: []domain.Campaign{{ID: 2, Name: "Curse of Strahd"}, {ID: 3, Name: "Lost Mines"}}},
		Selected:  3,
		Items: view.List[domain.Character]{
			Key:   resource.CharactersKey(3),
			Items: []domain.Character{{ID: 7, Name: "Tordek", Race: "Dwarf", CharacterClass: "Fighter", Level: 4}},
		},
	}
	got := render(t, Characters(f, domain.CharacterCreate{}, nil))
	for _, s := range []string{
		`<option value="3" selected>Lost Mines</option>`,
		`<td>Tordek</td><td>Dwarf</td><td>Fighter</td><td>4</td>`,
		`action="/characters/7/delete"`,
		`data-live="/events?key=characters-for-campaign(3)"`,
	} {
		if !strings.Contains(got, s) {
			t.Errorf("expected %q in %q", s, got)
		}
	}
}

func TestUserResults(t *testing.T) {
	got := render(t, UserResults(search.Response[domain.User]{Query: "al", Results: []domain.User{{ID: 12, Username: "alice", Email: "alice@example.com"}}}))
	if !strings.Contains(got, `<li data-user-id="12">alice`) {
		t.Errorf("unexpected results %q", got)
	}
	if got := render(t, UserResults(search.Response[domain.User]{Query: "a"})); got != "" {
		t.Errorf("expected nothing for a short query, got %q", got)
	}
}

func TestImportStatus(t *testing.T) {
	failed := render(t, ImportStatus(queue.ImportStatus{State: queue.StateFailed, Err: "400: Character is private"}))
	if !strings.Contains(failed, "Character is private") {
		t.Errorf("expected the failure, got %q", failed)
	}
	done := render(t, ImportStatus(queue.ImportStatus{
		State:     queue.StateDone,
		Request:   domain.ImportRequest{CampaignID: 3},
		Character: &domain.Character{Name: "Tordek"},
	}))
	if !strings.Contains(done, `<a href="/characters?campaign=3">Tordek</a>`) {
		t.Errorf("expected a link to the imported character, got %q", done)
	}
}
