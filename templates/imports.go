package templates

import (
	"github.com/a-h/templ"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/queue"
	"github.com/sidereusnuntius/tabletop/internal/view"
)

func Import(campaigns view.List[domain.Campaign], req domain.ImportRequest, errs Errors) templ.Component {
	return component(func(p *page) {
		p.raw(`<h1>Import from D&amp;D Beyond</h1>`)
		if campaigns.Err != nil {
			p.raw(`<p class="error">`)
			p.text(campaigns.Err.Error())
			p.raw(`</p>`)
		}
		if campaigns.Empty() {
			p.raw(`<p>Create a campaign first.</p>`)
			return
		}
		p.raw(`<form method="post" action="/import">`)
		p.raw(`<label>Campaign <select name="campaign_id">`)
		for _, c := range campaigns.Items {
			if c.ID == req.CampaignID {
				p.rawf(`<option value="%d" selected>`, c.ID)
			} else {
				p.rawf(`<option value="%d">`, c.ID)
			}
			p.text(c.Name)
			p.raw(`</option>`)
		}
		p.raw(`</select></label>`)
		p.fieldError(errs, "campaign_id")
		p.input(errs, "Character URL", "character_url", "url", req.CharacterURL)
		p.input(errs, "Cobalt token (private sheets only)", "cobalt_token", "password", "")
		p.raw(`<button type="submit">Import</button></form>`)
	})
}

func ImportStatus(s queue.ImportStatus) templ.Component {
	return component(func(p *page) {
		p.raw(`<h1>Import</h1><p>`)
		p.text(s.Request.CharacterURL)
		p.raw(`</p><p class="status">`)
		p.text(string(s.State))
		p.raw(`</p>`)
		switch s.State {
		case queue.StateDone:
			if s.Character != nil {
				p.rawf(`<p><a href="/characters?campaign=%d">`, s.Request.CampaignID)
				p.text(s.Character.Name)
				p.raw(`</a> was added to the campaign.</p>`)
			}
		case queue.StateFailed:
			p.raw(`<p class="error">`)
			p.text(s.Err)
			p.raw(`</p>`)
		default:
			p.raw(`<p>Refresh the page to follow the import.</p>`)
		}
	})
}
