// Package view builds what each page shows from the query cache. Views never fail: a fetch error is carried
// in the model next to whatever value the cache still holds, so a page can show it inline.
package view

import (
	"context"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/resource"
)

type List[T any] struct {
	Key     query.Key
	Items   []T
	Loading bool
	Stale   bool
	Err     error
}

func (l List[T]) Empty() bool {
	return len(l.Items) == 0
}

// FromResult converts a cache result, e.g. one handed to a subscriber, into a list.
func FromResult[T any](r query.Result) List[T] {
	items, ok := query.Value[[]T](r)
	if !ok || items == nil {
		items = []T{}
	}
	return List[T]{
		Key:     r.Key,
		Items:   items,
		Loading: r.Loading,
		Stale:   r.Stale,
		Err:     r.Err,
	}
}

// await waits for key to settle. If ctx ends first the entry is shown as it is, still loading.
func await(ctx context.Context, c *query.Cache, key query.Key) query.Result {
	r, err := c.Await(ctx, key)
	if err != nil {
		r.Loading = true
	}
	return r
}

// prefetch starts the fetches for keys so that awaiting them one by one does not serialize the requests.
func prefetch(c *query.Cache, keys ...query.Key) {
	for _, key := range keys {
		c.Read(key)
	}
}

func Campaigns(ctx context.Context, c *query.Cache) List[domain.Campaign] {
	return FromResult[domain.Campaign](await(ctx, c, resource.CampaignsKey()))
}

type Section struct {
	Title       string
	Href        string
	Description string
}

var Sections = []Section{
	{"Campaigns", "/campaigns", "Manage your D&D campaigns and adventures"},
	{"Characters", "/characters", "Track player characters and NPCs"},
	{"Places", "/places", "Document locations and world geography"},
	{"Items", "/items", "Manage equipment and magic items"},
	{"Quests", "/quests", "Follow the party's quests"},
	{"D&D Beyond", "/import", "Import character sheets from D&D Beyond"},
}

type Dashboard struct {
	User      domain.User
	Campaigns List[domain.Campaign]
	// Active counts the campaigns still running.
	Active   int
	Sections []Section
}

func NewDashboard(ctx context.Context, c *query.Cache, user domain.User) Dashboard {
	d := Dashboard{
		User:      user,
		Campaigns: Campaigns(ctx, c),
		Sections:  Sections,
	}
	for _, campaign := range d.Campaigns.Items {
		if campaign.IsActive {
			d.Active++
		}
	}
	return d
}
