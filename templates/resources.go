package templates

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/view"
)

// table writes one row per item; cells returns the item's id and its cells.
func table[T any](p *page, l view.List[T], base string, campaignID int64, headers []string, cells func(T) (int64, []string)) {
	if !p.list(l.Loading, l.Err, l.Empty(), "Nothing here yet.") {
		return
	}
	p.raw(`<table><thead><tr>`)
	for _, h := range headers {
		p.raw(`<th>`)
		p.text(h)
		p.raw(`</th>`)
	}
	p.raw(`<th></th></tr></thead><tbody>`)
	for _, item := range l.Items {
		id, row := cells(item)
		p.raw(`<tr>`)
		for _, c := range row {
			p.raw(`<td>`)
			p.text(c)
			p.raw(`</td>`)
		}
		p.rawf(`<td><form method="post" action="%s/%d/delete"><input type="hidden" name="campaign_id" value="%d">`,
			base, id, campaignID)
		p.raw(`<button type="submit">Delete</button></form></td></tr>`)
	}
	p.raw(`</tbody></table>`)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func CharacterRows(l view.List[domain.Character], campaignID int64) templ.Component {
	return component(func(p *page) {
		table(p, l, "/characters", campaignID, []string{"Name", "Race", "Class", "Level", "NPC"}, func(c domain.Character) (int64, []string) {
			return c.ID, []string{c.Name, c.Race, c.CharacterClass, strconv.Itoa(c.Level), yesNo(c.IsNPC)}
		})
	})
}

func PlaceRows(l view.List[domain.Place], campaignID int64) templ.Component {
	return component(func(p *page) {
		table(p, l, "/places", campaignID, []string{"Name", "Type", "Population", "Climate"}, func(pl domain.Place) (int64, []string) {
			population := ""
			if pl.Population != nil {
				population = strconv.Itoa(*pl.Population)
			}
			return pl.ID, []string{pl.Name, pl.PlaceType, population, pl.Climate}
		})
	})
}

func ItemRows(l view.List[domain.Item], campaignID int64) templ.Component {
	return component(func(p *page) {
		table(p, l, "/items", campaignID, []string{"Name", "Type", "Rarity", "Magical"}, func(i domain.Item) (int64, []string) {
			return i.ID, []string{i.Name, i.ItemType, i.Rarity, yesNo(i.IsMagical)}
		})
	})
}

func QuestRows(l view.List[domain.Quest], campaignID int64) templ.Component {
	return component(func(p *page) {
		table(p, l, "/quests", campaignID, []string{"Name", "Status", "Quest giver", "Location"}, func(q domain.Quest) (int64, []string) {
			return q.ID, []string{q.Name, q.Status, q.QuestGiver, q.Location}
		})
	})
}

// campaignFilter writes the campaign picker. It returns false when there is no campaign to pick.
func campaignFilter(p *page, base string, campaigns view.List[domain.Campaign], selected int64) bool {
	if campaigns.Err != nil {
		p.raw(`<p class="error">`)
		p.text(campaigns.Err.Error())
		p.raw(`</p>`)
	}
	if campaigns.Empty() {
		p.raw(`<p>Create a campaign first.</p>`)
		return false
	}
	p.rawf(`<form method="get" action="%s"><select name="campaign">`, base)
	for _, c := range campaigns.Items {
		if c.ID == selected {
			p.rawf(`<option value="%d" selected>`, c.ID)
		} else {
			p.rawf(`<option value="%d">`, c.ID)
		}
		p.text(c.Name)
		p.raw(`</option>`)
	}
	p.raw(`</select><button type="submit">Show</button></form>`)
	return true
}

func filteredPage[T any](title, base string, f view.Filtered[T], rows templ.Component, form func(p *page)) templ.Component {
	return component(func(p *page) {
		p.raw(`<h1>`)
		p.text(title)
		p.raw(`</h1>`)
		if !campaignFilter(p, base, f.Campaigns, f.Selected) {
			return
		}
		p.live(f.Items.Key.String())
		p.render(rows)
		p.rawf(`</div><h2>Create</h2><form method="post" action="%s"><input type="hidden" name="campaign_id" value="%d">`,
			base, f.Selected)
		form(p)
		p.raw(`<button type="submit">Create</button></form>`)
	})
}

func Characters(f view.Filtered[domain.Character], form domain.CharacterCreate, errs Errors) templ.Component {
	return filteredPage("Characters", "/characters", f, CharacterRows(f.Items, f.Selected), func(p *page) {
		p.input(errs, "Name", "name", "text", form.Name)
		p.input(errs, "Race", "race", "text", form.Race)
		p.input(errs, "Class", "character_class", "text", form.CharacterClass)
		level := ""
		if form.Level > 0 {
			level = strconv.Itoa(form.Level)
		}
		p.input(errs, "Level", "level", "number", level)
		p.raw(`<label><input type="checkbox" name="is_npc" value="true"> NPC</label>`)
	})
}

func Places(f view.Filtered[domain.Place], form domain.PlaceCreate, errs Errors) templ.Component {
	return filteredPage("Places", "/places", f, PlaceRows(f.Items, f.Selected), func(p *page) {
		p.input(errs, "Name", "name", "text", form.Name)
		p.selectInput(errs, "Type", "place_type", domain.PlaceTypes, form.PlaceType)
		p.input(errs, "Description", "description", "text", form.Description)
		p.input(errs, "Climate", "climate", "text", form.Climate)
		p.input(errs, "Terrain", "terrain", "text", form.Terrain)
	})
}

func Items(f view.Filtered[domain.Item], form domain.ItemCreate, errs Errors) templ.Component {
	return filteredPage("Items", "/items", f, ItemRows(f.Items, f.Selected), func(p *page) {
		p.input(errs, "Name", "name", "text", form.Name)
		p.selectInput(errs, "Type", "item_type", domain.ItemTypes, form.ItemType)
		p.selectInput(errs, "Rarity", "rarity", domain.ItemRarities, form.Rarity)
		p.input(errs, "Damage", "damage", "text", form.Damage)
		p.raw(`<label><input type="checkbox" name="is_magical" value="true"> Magical</label>`)
		p.raw(`<label><input type="checkbox" name="requires_attunement" value="true"> Requires attunement</label>`)
	})
}

var questStatuses = []string{domain.QuestNotStarted, domain.QuestInProgress, domain.QuestCompleted, domain.QuestFailed, domain.QuestOnHold}

func Quests(f view.Filtered[domain.Quest], form domain.QuestCreate, errs Errors) templ.Component {
	return filteredPage("Quests", "/quests", f, QuestRows(f.Items, f.Selected), func(p *page) {
		p.input(errs, "Name", "name", "text", form.Name)
		p.selectInput(errs, "Status", "status", questStatuses, form.Status)
		p.input(errs, "Quest giver", "quest_giver", "text", form.QuestGiver)
		p.input(errs, "Location", "location", "text", form.Location)
		p.input(errs, "Objectives", "objectives", "text", form.Objectives)
	})
}
