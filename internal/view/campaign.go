package view

import (
	"context"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/resource"
)

type CampaignDetail struct {
	Campaign domain.CampaignDetail
	Found    bool
	Loading  bool
	Err      error
	// Role is the viewer's role in the campaign; the owner is a dm.
	Role       domain.Role
	Member     bool
	Characters List[domain.Character]
	Places     List[domain.Place]
	Items      List[domain.Item]
	Quests     List[domain.Quest]
}

// CanManage reports whether the viewer may edit the campaign and its members.
func (d CampaignDetail) CanManage() bool {
	return d.Member && d.Role == domain.RoleDM
}

func (d CampaignDetail) IsOwner(userID int64) bool {
	return d.Found && d.Campaign.OwnerID == userID
}

// RoleOf returns the role userID holds in the campaign.
func RoleOf(c domain.CampaignDetail, userID int64) (domain.Role, bool) {
	if c.OwnerID == userID {
		return domain.RoleDM, true
	}
	for _, m := range c.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

func NewCampaignDetail(ctx context.Context, c *query.Cache, user domain.User, id int64) CampaignDetail {
	prefetch(c,
		resource.CampaignKey(id),
		resource.CharactersKey(id),
		resource.PlacesKey(id),
		resource.ItemsKey(id),
		resource.QuestsKey(id),
	)

	r := await(ctx, c, resource.CampaignKey(id))
	d := CampaignDetail{
		Loading:    r.Loading,
		Err:        r.Err,
		Characters: FromResult[domain.Character](await(ctx, c, resource.CharactersKey(id))),
		Places:     FromResult[domain.Place](await(ctx, c, resource.PlacesKey(id))),
		Items:      FromResult[domain.Item](await(ctx, c, resource.ItemsKey(id))),
		Quests:     FromResult[domain.Quest](await(ctx, c, resource.QuestsKey(id))),
	}
	if campaign, ok := query.Value[domain.CampaignDetail](r); ok {
		d.Campaign, d.Found = campaign, true
		d.Role, d.Member = RoleOf(campaign, user.ID)
	}
	return d
}
