package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/mutation"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/view"
	"github.com/sidereusnuntius/tabletop/templates"
)

// section describes one of the pages listing a resource of the selected campaign.
type section[T, F any] struct {
	title string
	base  string
	place templates.Place
	load  func(ctx context.Context, c *query.Cache, campaignID int64) view.Filtered[T]
	page  func(f view.Filtered[T], form F, errs templates.Errors) templ.Component
	// parse reads the create form; the campaign id is set by the caller.
	parse  func(r *http.Request) F
	create func(h *Handler, campaignID int64, form F) mutation.Mutation
	delete func(h *Handler, id, campaignID int64) mutation.Mutation
}

func (s section[T, F]) show(h *Handler, w http.ResponseWriter, r *http.Request, campaignID int64, form F, err error) {
	f := s.load(r.Context(), h.State.Cache, campaignID)
	p := page{title: s.title, place: s.place, child: s.page(f, form, fieldErrors(err))}
	if err == nil {
		err = f.Campaigns.Err
	}
	if err == nil {
		err = f.Items.Err
	}
	if err != nil {
		h.fail(w, r, p, err)
		return
	}
	h.render(w, r, http.StatusOK, p, nil)
}

func (s section[T, F]) list(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form F
		s.show(h, w, r, formID(r, "campaign"), form, nil)
	}
}

func (s section[T, F]) listURL(campaignID int64) string {
	return fmt.Sprintf("%s?campaign=%d", s.base, campaignID)
}

func (s section[T, F]) createHandler(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form F
		if err := r.ParseForm(); err != nil {
			s.show(h, w, r, 0, form, err)
			return
		}
		campaignID := formID(r, "campaign_id")
		form = s.parse(r)

		if _, err := h.State.Executor.Execute(r.Context(), s.create(h, campaignID, form)); err != nil {
			s.show(h, w, r, campaignID, form, err)
			return
		}
		h.redirect(w, r, s.listURL(campaignID), "Created.")
	}
}

func (s section[T, F]) deleteHandler(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			notFound(h, w, r)
			return
		}
		campaignID := formID(r, "campaign_id")

		if _, err := h.State.Executor.Execute(r.Context(), s.delete(h, id, campaignID)); err != nil {
			var form F
			s.show(h, w, r, campaignID, form, err)
			return
		}
		h.redirect(w, r, s.listURL(campaignID), "Deleted.")
	}
}

// optionalInt parses an optional number. A value that is not a number becomes -1 so validation rejects it.
func optionalInt(r *http.Request, name string) *int {
	s := r.PostForm.Get(name)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		n = -1
	}
	return &n
}

var characters = section[domain.Character, domain.CharacterCreate]{
	title: "Characters",
	base:  "/characters",
	place: templates.PlaceCharacters,
	load:  view.Characters,
	page:  templates.Characters,
	parse: func(r *http.Request) domain.CharacterCreate {
		level := 0
		if n := optionalInt(r, "level"); n != nil {
			level = *n
		}
		return domain.CharacterCreate{
			Name:           r.PostForm.Get("name"),
			Race:           r.PostForm.Get("race"),
			CharacterClass: r.PostForm.Get("character_class"),
			Level:          level,
			IsNPC:          r.PostForm.Get("is_npc") == "true",
			IsActive:       true,
		}
	},
	create: func(h *Handler, campaignID int64, form domain.CharacterCreate) mutation.Mutation {
		form.CampaignID = campaignID
		return resource.CreateCharacter(h.State.Service, form)
	},
	delete: func(h *Handler, id, campaignID int64) mutation.Mutation {
		return resource.DeleteCharacter(h.State.Service, id, campaignID)
	},
}

var places = section[domain.Place, domain.PlaceCreate]{
	title: "Places",
	base:  "/places",
	place: templates.PlacePlaces,
	load:  view.Places,
	page:  templates.Places,
	parse: func(r *http.Request) domain.PlaceCreate {
		return domain.PlaceCreate{
			Name:        r.PostForm.Get("name"),
			PlaceType:   r.PostForm.Get("place_type"),
			Description: r.PostForm.Get("description"),
			Population:  optionalInt(r, "population"),
			Climate:     r.PostForm.Get("climate"),
			Terrain:     r.PostForm.Get("terrain"),
		}
	},
	create: func(h *Handler, campaignID int64, form domain.PlaceCreate) mutation.Mutation {
		form.CampaignID = campaignID
		return resource.CreatePlace(h.State.Service, form)
	},
	delete: func(h *Handler, id, campaignID int64) mutation.Mutation {
		return resource.DeletePlace(h.State.Service, id, campaignID)
	},
}

var items = section[domain.Item, domain.ItemCreate]{
	title: "Items",
	base:  "/items",
	place: templates.PlaceItems,
	load:  view.Items,
	page:  templates.Items,
	parse: func(r *http.Request) domain.ItemCreate {
		return domain.ItemCreate{
			Name:               r.PostForm.Get("name"),
			ItemType:           r.PostForm.Get("item_type"),
			Rarity:             r.PostForm.Get("rarity"),
			Description:        r.PostForm.Get("description"),
			Value:              optionalInt(r, "value"),
			Damage:             r.PostForm.Get("damage"),
			RequiresAttunement: r.PostForm.Get("requires_attunement") == "true",
			IsMagical:          r.PostForm.Get("is_magical") == "true",
			IsCursed:           r.PostForm.Get("is_cursed") == "true",
		}
	},
	create: func(h *Handler, campaignID int64, form domain.ItemCreate) mutation.Mutation {
		form.CampaignID = campaignID
		return resource.CreateItem(h.State.Service, form)
	},
	delete: func(h *Handler, id, campaignID int64) mutation.Mutation {
		return resource.DeleteItem(h.State.Service, id, campaignID)
	},
}

var quests = section[domain.Quest, domain.QuestCreate]{
	title: "Quests",
	base:  "/quests",
	place: templates.PlaceQuests,
	load:  view.Quests,
	page:  templates.Quests,
	parse: func(r *http.Request) domain.QuestCreate {
		return domain.QuestCreate{
			Name:        r.PostForm.Get("name"),
			Description: r.PostForm.Get("description"),
			Objectives:  r.PostForm.Get("objectives"),
			Rewards:     r.PostForm.Get("rewards"),
			QuestGiver:  r.PostForm.Get("quest_giver"),
			Location:    r.PostForm.Get("location"),
			Status:      r.PostForm.Get("status"),
		}
	},
	create: func(h *Handler, campaignID int64, form domain.QuestCreate) mutation.Mutation {
		form.CampaignID = campaignID
		return resource.CreateQuest(h.State.Service, form)
	},
	delete: func(h *Handler, id, campaignID int64) mutation.Mutation {
		return resource.DeleteQuest(h.State.Service, id, campaignID)
	},
}

func ListCharacters(h *Handler) http.HandlerFunc  { return characters.list(h) }
func CreateCharacter(h *Handler) http.HandlerFunc { return characters.createHandler(h) }
func DeleteCharacter(h *Handler) http.HandlerFunc { return characters.deleteHandler(h) }
func ListPlaces(h *Handler) http.HandlerFunc      { return places.list(h) }
func CreatePlace(h *Handler) http.HandlerFunc     { return places.createHandler(h) }
func DeletePlace(h *Handler) http.HandlerFunc     { return places.deleteHandler(h) }
func ListItems(h *Handler) http.HandlerFunc       { return items.list(h) }
func CreateItem(h *Handler) http.HandlerFunc      { return items.createHandler(h) }
func DeleteItem(h *Handler) http.HandlerFunc      { return items.deleteHandler(h) }
func ListQuests(h *Handler) http.HandlerFunc      { return quests.list(h) }
func CreateQuest(h *Handler) http.HandlerFunc     { return quests.createHandler(h) }
func DeleteQuest(h *Handler) http.HandlerFunc     { return quests.deleteHandler(h) }
