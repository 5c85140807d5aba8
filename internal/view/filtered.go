package view

import (
	"context"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/resource"
)

// Filtered is a page listing one kind of resource for a selected campaign, e.g. the characters of campaign 3.
type Filtered[T any] struct {
	Campaigns List[domain.Campaign]
	// Selected is 0 when the user has no campaign to pick from.
	Selected int64
	Items    List[T]
}

func (f Filtered[T]) SelectedCampaign() (domain.Campaign, bool) {
	for _, c := range f.Campaigns.Items {
		if c.ID == f.Selected {
			return c, true
		}
	}
	return domain.Campaign{}, false
}

// newFiltered lists the resources of campaign selected, defaulting to the first campaign when selected is 0 or
// is not one of the user's campaigns.
func newFiltered[T any](ctx context.Context, c *query.Cache, selected int64, key func(int64) query.Key) Filtered[T] {
	f := Filtered[T]{Campaigns: Campaigns(ctx, c)}
	for _, campaign := range f.Campaigns.Items {
		if campaign.ID == selected {
			f.Selected = selected
			break
		}
	}
	if f.Selected == 0 && len(f.Campaigns.Items) > 0 {
		f.Selected = f.Campaigns.Items[0].ID
	}

	if f.Selected == 0 {
		f.Items = List[T]{Items: []T{}}
		return f
	}
	f.Items = FromResult[T](await(ctx, c, key(f.Selected)))
	return f
}

func Characters(ctx context.Context, c *query.Cache, campaignID int64) Filtered[domain.Character] {
	return newFiltered[domain.Character](ctx, c, campaignID, resource.CharactersKey)
}

func Places(ctx context.Context, c *query.Cache, campaignID int64) Filtered[domain.Place] {
	return newFiltered[domain.Place](ctx, c, campaignID, resource.PlacesKey)
}

func Items(ctx context.Context, c *query.Cache, campaignID int64) Filtered[domain.Item] {
	return newFiltered[domain.Item](ctx, c, campaignID, resource.ItemsKey)
}

func Quests(ctx context.Context, c *query.Cache, campaignID int64) Filtered[domain.Quest] {
	return newFiltered[domain.Quest](ctx, c, campaignID, resource.QuestsKey)
}
