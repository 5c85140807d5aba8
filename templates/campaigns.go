package templates

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/search"
	"github.com/sidereusnuntius/tabletop/internal/view"
)

func Dashboard(d view.Dashboard) templ.Component {
	return component(func(p *page) {
		p.raw(`<h1>Welcome back, `)
		p.text(d.User.Username)
		p.raw(`!</h1><div class="cards">`)
		for _, s := range d.Sections {
			p.rawf(`<a class="card" href="%s"><h2>`, s.Href)
			p.text(s.Title)
			p.raw(`</h2><p>`)
			p.text(s.Description)
			p.raw(`</p></a>`)
		}
		p.raw(`<div class="card"><h2>Quick Stats</h2>`)
		if d.Campaigns.Err != nil {
			p.raw(`<p class="error">`)
			p.text(d.Campaigns.Err.Error())
			p.raw(`</p>`)
		}
		p.rawf(`<p>%d campaigns, %d active</p></div></div>`, len(d.Campaigns.Items), d.Active)
	})
}

// CampaignRows is the part of the campaigns page refreshed live.
func CampaignRows(l view.List[domain.Campaign]) templ.Component {
	return component(func(p *page) {
		if !p.list(l.Loading, l.Err, l.Empty(), "Your campaigns will appear here. Create your first campaign to get started!") {
			return
		}
		p.raw(`<ul class="campaigns">`)
		for _, c := range l.Items {
			p.rawf(`<li><a href="/campaigns/%d">`, c.ID)
			p.text(c.Name)
			p.raw(`</a>`)
			if c.Setting != "" {
				p.raw(` <span class="setting">`)
				p.text(c.Setting)
				p.raw(`</span>`)
			}
			if !c.IsActive {
				p.raw(` <span class="inactive">inactive</span>`)
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul>`)
	})
}

func Campaigns(l view.List[domain.Campaign], form domain.CampaignCreate, errs Errors) templ.Component {
	return component(func(p *page) {
		p.raw(`<h1>Campaigns</h1>`)
		p.live(l.Key.String())
		p.render(CampaignRows(l))
		p.raw(`</div><h2>Create Campaign</h2><form method="post" action="/campaigns">`)
		p.input(errs, "Name", "name", "text", form.Name)
		p.input(errs, "Description", "description", "text", form.Description)
		p.input(errs, "Setting", "setting", "text", form.Setting)
		p.raw(`<label><input type="checkbox" name="is_active" value="true" checked> Active</label>`)
		p.raw(`<button type="submit">Create Campaign</button></form>`)
	})
}

// Members is the part of the campaign page refreshed live.
func Members(d view.CampaignDetail) templ.Component {
	return component(func(p *page) {
		c := d.Campaign
		p.raw(`<h2>Members</h2><ul class="members"><li>`)
		p.text(c.Owner.Username)
		p.raw(` <span class="role">owner</span></li>`)
		for _, m := range c.Members {
			p.raw(`<li>`)
			p.text(m.User.Username)
			p.raw(` <span class="role">`)
			p.text(string(m.Role))
			p.raw(`</span>`)
			if d.CanManage() {
				p.rawf(`<form method="post" action="/campaigns/%d/members/%d/delete"><button type="submit">Remove</button></form>`,
					c.ID, m.UserID)
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul>`)
	})
}

func CampaignDetail(d view.CampaignDetail, userID int64, errs Errors) templ.Component {
	return component(func(p *page) {
		if !d.Found {
			p.raw(`<h1>Campaign</h1>`)
			p.list(d.Loading, d.Err, true, "This campaign could not be loaded.")
			return
		}
		c := d.Campaign
		p.raw(`<h1>`)
		p.text(c.Name)
		p.raw(`</h1>`)
		if c.Setting != "" {
			p.raw(`<p class="setting">`)
			p.text(c.Setting)
			p.raw(`</p>`)
		}
		if c.Description != "" {
			p.raw(`<p>`)
			p.text(c.Description)
			p.raw(`</p>`)
		}
		if d.Err != nil {
			p.raw(`<p class="error">`)
			p.text(d.Err.Error())
			p.raw(`</p>`)
		}

		p.live(fmt.Sprintf("campaign-detail(%d)", c.ID))
		p.render(Members(d))
		p.raw(`</div>`)

		if d.CanManage() {
			p.rawf(`<h2>Add Member</h2><form method="post" action="/campaigns/%d/members">`, c.ID)
			p.raw(`<input type="search" name="q" placeholder="Search users" data-search="/users/search">`)
			p.raw(`<div data-live="/users/search/events"></div>`)
			p.input(errs, "User id", "user_id", "number", "")
			roles := make([]string, 0, len(domain.Roles))
			for _, r := range domain.Roles {
				roles = append(roles, string(r))
			}
			p.selectInput(errs, "Role", "role", roles, string(domain.RolePlayer))
			p.raw(`<button type="submit">Add</button></form>`)

			p.rawf(`<h2>Edit</h2><form method="post" action="/campaigns/%d">`, c.ID)
			p.input(errs, "Name", "name", "text", c.Name)
			p.input(errs, "Description", "description", "text", c.Description)
			p.input(errs, "Setting", "setting", "text", c.Setting)
			p.raw(`<button type="submit">Save</button></form>`)
		}
		if d.IsOwner(userID) {
			p.rawf(`<form method="post" action="/campaigns/%d/delete"><button type="submit">Delete campaign</button></form>`, c.ID)
		}

		id := strconv.FormatInt(c.ID, 10)
		p.rawf(`<h2><a href="/characters?campaign=%s">Characters</a></h2>`, id)
		p.render(CharacterRows(d.Characters, c.ID))
		p.rawf(`<h2><a href="/places?campaign=%s">Places</a></h2>`, id)
		p.render(PlaceRows(d.Places, c.ID))
		p.rawf(`<h2><a href="/items?campaign=%s">Items</a></h2>`, id)
		p.render(ItemRows(d.Items, c.ID))
		p.rawf(`<h2><a href="/quests?campaign=%s">Quests</a></h2>`, id)
		p.render(QuestRows(d.Quests, c.ID))
	})
}

func UserResults(r search.Response[domain.User]) templ.Component {
	return component(func(p *page) {
		if r.Err != nil {
			p.raw(`<p class="error">`)
			p.text(r.Err.Error())
			p.raw(`</p>`)
			return
		}
		if len(r.Results) == 0 {
			return
		}
		p.raw(`<ul class="users">`)
		for _, u := range r.Results {
			p.rawf(`<li data-user-id="%d">`, u.ID)
			p.text(u.Username)
			p.raw(` <span class="email">`)
			p.text(u.Email)
			p.raw(`</span></li>`)
		}
		p.raw(`</ul>`)
	})
}
