package core

import (
	"context"
	"fmt"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/validate"
)

func (s *AppService) ListCampaigns(ctx context.Context) (campaigns []domain.Campaign, err error) {
	err = s.Client.Get(ctx, "/campaigns", &campaigns)
	return
}

func (s *AppService) GetCampaign(ctx context.Context, id int64) (c domain.CampaignDetail, err error) {
	if err = checkID("campaign", id); err != nil {
		return
	}
	err = s.Client.Get(ctx, fmt.Sprintf("/campaigns/%d", id), &c)
	return
}

func (s *AppService) CreateCampaign(ctx context.Context, form domain.CampaignCreate) (c domain.Campaign, err error) {
	if err = validate.Struct(form); err != nil {
		return
	}
	err = s.Client.Post(ctx, "/campaigns", form, &c)
	return
}

func (s *AppService) UpdateCampaign(ctx context.Context, id int64, form domain.CampaignUpdate) (c domain.Campaign, err error) {
	if err = checkID("campaign", id); err != nil {
		return
	}
	if err = validate.Struct(form); err != nil {
		return
	}
	err = s.Client.Put(ctx, fmt.Sprintf("/campaigns/%d", id), form, &c)
	return
}

func (s *AppService) DeleteCampaign(ctx context.Context, id int64) error {
	if err := checkID("campaign", id); err != nil {
		return err
	}
	return s.Client.Delete(ctx, fmt.Sprintf("/campaigns/%d", id))
}

func (s *AppService) AddMember(ctx context.Context, campaignID int64, form domain.MemberCreate) (m domain.CampaignMember, err error) {
	if err = checkID("campaign", campaignID); err != nil {
		return
	}
	if err = validate.Struct(form); err != nil {
		return
	}
	err = s.Client.Post(ctx, fmt.Sprintf("/campaigns/%d/members", campaignID), form, &m)
	return
}

func (s *AppService) RemoveMember(ctx context.Context, campaignID, userID int64) error {
	if err := checkID("campaign", campaignID); err != nil {
		return err
	}
	if err := checkID("user", userID); err != nil {
		return err
	}
	return s.Client.Delete(ctx, fmt.Sprintf("/campaigns/%d/members/%d", campaignID, userID))
}
