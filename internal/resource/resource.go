// Package resource binds the campaign manager's REST resources to the query cache: it names the query kinds,
// builds their keys, registers the fetchers and builds the mutations together with the keys each one makes
// stale.
package resource

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/service"
)

const (
	Campaigns             query.Kind = "campaigns"
	CampaignDetail        query.Kind = "campaign-detail"
	CharactersForCampaign query.Kind = "characters-for-campaign"
	Character             query.Kind = "character"
	PlacesForCampaign     query.Kind = "places-for-campaign"
	ItemsForCampaign      query.Kind = "items-for-campaign"
	QuestsForCampaign     query.Kind = "quests-for-campaign"
	Me                    query.Kind = "me"
)

// Kinds lists every kind Register defines.
var Kinds = []query.Kind{
	Campaigns,
	CampaignDetail,
	CharactersForCampaign,
	Character,
	PlacesForCampaign,
	ItemsForCampaign,
	QuestsForCampaign,
	Me,
}

func CampaignsKey() query.Key {
	return query.NewKey(Campaigns)
}

func CampaignKey(id int64) query.Key {
	return query.NewKey(CampaignDetail, id)
}

func CharactersKey(campaignID int64) query.Key {
	return query.NewKey(CharactersForCampaign, campaignID)
}

func CharacterKey(id int64) query.Key {
	return query.NewKey(Character, id)
}

func PlacesKey(campaignID int64) query.Key {
	return query.NewKey(PlacesForCampaign, campaignID)
}

func ItemsKey(campaignID int64) query.Key {
	return query.NewKey(ItemsForCampaign, campaignID)
}

func QuestsKey(campaignID int64) query.Key {
	return query.NewKey(QuestsForCampaign, campaignID)
}

func MeKey() query.Key {
	return query.NewKey(Me)
}

// ParseKey rebuilds a key from its String form, e.g. "characters-for-campaign(3)". Only kinds Register defines
// are accepted.
func ParseKey(s string) (query.Key, error) {
	for _, kind := range Kinds {
		name := string(kind)
		if s == name {
			return query.NewKey(kind), nil
		}
		if len(s) > len(name)+2 && s[:len(name)+1] == name+"(" && s[len(s)-1] == ')' {
			id, err := strconv.ParseInt(s[len(name)+1:len(s)-1], 10, 64)
			if err != nil {
				return query.Key{}, fmt.Errorf("invalid key %q: %w", s, err)
			}
			return query.NewKey(kind, id), nil
		}
	}
	return query.Key{}, fmt.Errorf("unknown key %q", s)
}

func scopeID(key query.Key) (int64, error) {
	id, err := strconv.ParseInt(key.Scope, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: key %s", service.ErrInvalidID, key)
	}
	return id, nil
}

func byID[T any](f func(ctx context.Context, id int64) (T, error)) query.FetchFunc {
	return func(ctx context.Context, key query.Key) (any, error) {
		id, err := scopeID(key)
		if err != nil {
			return nil, err
		}
		return f(ctx, id)
	}
}

// Register defines a fetcher for every kind on the cache.
func Register(cache *query.Cache, svc service.Service) {
	cache.Define(Campaigns, func(ctx context.Context, _ query.Key) (any, error) {
		return svc.ListCampaigns(ctx)
	})
	cache.Define(Me, func(ctx context.Context, _ query.Key) (any, error) {
		return svc.Me(ctx, "")
	})
	cache.Define(CampaignDetail, byID(svc.GetCampaign))
	cache.Define(CharactersForCampaign, byID(svc.ListCharacters))
	cache.Define(Character, byID(svc.GetCharacter))
	cache.Define(PlacesForCampaign, byID(svc.ListPlaces))
	cache.Define(ItemsForCampaign, byID(svc.ListItems))
	cache.Define(QuestsForCampaign, byID(svc.ListQuests))
}

func ListCampaigns(ctx context.Context, c *query.Cache) ([]domain.Campaign, error) {
	return query.Get[[]domain.Campaign](ctx, c, CampaignsKey())
}

func GetCampaign(ctx context.Context, c *query.Cache, id int64) (domain.CampaignDetail, error) {
	return query.Get[domain.CampaignDetail](ctx, c, CampaignKey(id))
}

func ListCharacters(ctx context.Context, c *query.Cache, campaignID int64) ([]domain.Character, error) {
	return query.Get[[]domain.Character](ctx, c, CharactersKey(campaignID))
}

func GetCharacter(ctx context.Context, c *query.Cache, id int64) (domain.Character, error) {
	return query.Get[domain.Character](ctx, c, CharacterKey(id))
}

func ListPlaces(ctx context.Context, c *query.Cache, campaignID int64) ([]domain.Place, error) {
	return query.Get[[]domain.Place](ctx, c, PlacesKey(campaignID))
}

func ListItems(ctx context.Context, c *query.Cache, campaignID int64) ([]domain.Item, error) {
	return query.Get[[]domain.Item](ctx, c, ItemsKey(campaignID))
}

func ListQuests(ctx context.Context, c *query.Cache, campaignID int64) ([]domain.Quest, error) {
	return query.Get[[]domain.Quest](ctx, c, QuestsKey(campaignID))
}

func CurrentUser(ctx context.Context, c *query.Cache) (domain.User, error) {
	return query.Get[domain.User](ctx, c, MeKey())
}
