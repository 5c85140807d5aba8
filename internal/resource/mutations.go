package resource

import (
	"context"
	"fmt"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/mutation"
	"github.com/sidereusnuntius/tabletop/internal/query"
	"github.com/sidereusnuntius/tabletop/internal/service"
)

// Deletes are serialized per resource and treat a 404 as the resource already being gone, so two racing deletes
// both succeed and each refreshes the list.
func deletion(name, lock string, do func(ctx context.Context) error, keys ...query.Key) mutation.Mutation {
	return mutation.Mutation{
		Name: name,
		Do: func(ctx context.Context) (any, error) {
			return nil, do(ctx)
		},
		Invalidates:    keys,
		Lock:           lock,
		IgnoreNotFound: true,
	}
}

func CreateCampaign(svc service.Service, form domain.CampaignCreate) mutation.Mutation {
	return mutation.Mutation{
		Name: "create-campaign",
		Do: func(ctx context.Context) (any, error) {
			return svc.CreateCampaign(ctx, form)
		},
		Invalidates: []query.Key{CampaignsKey()},
	}
}

func UpdateCampaign(svc service.Service, id int64, form domain.CampaignUpdate) mutation.Mutation {
	return mutation.Mutation{
		Name: "update-campaign",
		Do: func(ctx context.Context) (any, error) {
			return svc.UpdateCampaign(ctx, id, form)
		},
		Invalidates: []query.Key{CampaignsKey(), CampaignKey(id)},
		Lock:        fmt.Sprintf("campaign:%d", id),
	}
}

func DeleteCampaign(svc service.Service, id int64) mutation.Mutation {
	return deletion("delete-campaign", fmt.Sprintf("campaign:%d", id), func(ctx context.Context) error {
		return svc.DeleteCampaign(ctx, id)
	}, CampaignsKey(), CampaignKey(id))
}

func AddMember(svc service.Service, campaignID int64, form domain.MemberCreate) mutation.Mutation {
	return mutation.Mutation{
		Name: "add-member",
		Do: func(ctx context.Context) (any, error) {
			return svc.AddMember(ctx, campaignID, form)
		},
		Invalidates: []query.Key{CampaignKey(campaignID)},
	}
}

func RemoveMember(svc service.Service, campaignID, userID int64) mutation.Mutation {
	return deletion("remove-member", fmt.Sprintf("member:%d:%d", campaignID, userID), func(ctx context.Context) error {
		return svc.RemoveMember(ctx, campaignID, userID)
	}, CampaignKey(campaignID))
}

func CreateCharacter(svc service.Service, form domain.CharacterCreate) mutation.Mutation {
	return mutation.Mutation{
		Name: "create-character",
		Do: func(ctx context.Context) (any, error) {
			return svc.CreateCharacter(ctx, form)
		},
		Invalidates: []query.Key{CharactersKey(form.CampaignID)},
	}
}

func ImportCharacter(svc service.Service, req domain.ImportRequest) mutation.Mutation {
	return mutation.Mutation{
		Name: "import-character",
		Do: func(ctx context.Context) (any, error) {
			return svc.ImportCharacter(ctx, req)
		},
		Invalidates: []query.Key{CharactersKey(req.CampaignID)},
	}
}

func DeleteCharacter(svc service.Service, id, campaignID int64) mutation.Mutation {
	return deletion("delete-character", fmt.Sprintf("character:%d", id), func(ctx context.Context) error {
		return svc.DeleteCharacter(ctx, id)
	}, CharactersKey(campaignID), CharacterKey(id))
}

func CreatePlace(svc service.Service, form domain.PlaceCreate) mutation.Mutation {
	return mutation.Mutation{
		Name: "create-place",
		Do: func(ctx context.Context) (any, error) {
			return svc.CreatePlace(ctx, form)
		},
		Invalidates: []query.Key{PlacesKey(form.CampaignID)},
	}
}

func DeletePlace(svc service.Service, id, campaignID int64) mutation.Mutation {
	return deletion("delete-place", fmt.Sprintf("place:%d", id), func(ctx context.Context) error {
		return svc.DeletePlace(ctx, id)
	}, PlacesKey(campaignID))
}

func CreateItem(svc service.Service, form domain.ItemCreate) mutation.Mutation {
	return mutation.Mutation{
		Name: "create-item",
		Do: func(ctx context.Context) (any, error) {
			return svc.CreateItem(ctx, form)
		},
		Invalidates: []query.Key{ItemsKey(form.CampaignID)},
	}
}

func DeleteItem(svc service.Service, id, campaignID int64) mutation.Mutation {
	return deletion("delete-item", fmt.Sprintf("item:%d", id), func(ctx context.Context) error {
		return svc.DeleteItem(ctx, id)
	}, ItemsKey(campaignID))
}

func CreateQuest(svc service.Service, form domain.QuestCreate) mutation.Mutation {
	return mutation.Mutation{
		Name: "create-quest",
		Do: func(ctx context.Context) (any, error) {
			return svc.CreateQuest(ctx, form)
		},
		Invalidates: []query.Key{QuestsKey(form.CampaignID)},
	}
}

func DeleteQuest(svc service.Service, id, campaignID int64) mutation.Mutation {
	return deletion("delete-quest", fmt.Sprintf("quest:%d", id), func(ctx context.Context) error {
		return svc.DeleteQuest(ctx, id)
	}, QuestsKey(campaignID))
}
