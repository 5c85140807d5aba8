package core

import (
	"context"
	"fmt"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/validate"
)

// Characters, places, items and quests share one REST shape: a collection scoped by campaign under
// /<resource>/campaign/{id}, creation on the collection root and deletion by id.

func list[T any](ctx context.Context, s *AppService, resource string, campaignID int64) (out []T, err error) {
	if err = checkID("campaign", campaignID); err != nil {
		return
	}
	err = s.Client.Get(ctx, fmt.Sprintf("/%s/campaign/%d", resource, campaignID), &out)
	return
}

func create[T any](ctx context.Context, s *AppService, resource string, form any) (out T, err error) {
	if err = validate.Struct(form); err != nil {
		return
	}
	err = s.Client.Post(ctx, "/"+resource, form, &out)
	return
}

func remove(ctx context.Context, s *AppService, resource string, id int64) error {
	if err := checkID(resource, id); err != nil {
		return err
	}
	return s.Client.Delete(ctx, fmt.Sprintf("/%s/%d", resource, id))
}

func (s *AppService) ListCharacters(ctx context.Context, campaignID int64) ([]domain.Character, error) {
	return list[domain.Character](ctx, s, "characters", campaignID)
}

func (s *AppService) GetCharacter(ctx context.Context, id int64) (c domain.Character, err error) {
	if err = checkID("characters", id); err != nil {
		return
	}
	err = s.Client.Get(ctx, fmt.Sprintf("/characters/%d", id), &c)
	return
}

func (s *AppService) CreateCharacter(ctx context.Context, form domain.CharacterCreate) (domain.Character, error) {
	if form.Level == 0 {
		form.Level = domain.MinLevel
	}
	return create[domain.Character](ctx, s, "characters", form)
}

func (s *AppService) DeleteCharacter(ctx context.Context, id int64) error {
	return remove(ctx, s, "characters", id)
}

func (s *AppService) ListPlaces(ctx context.Context, campaignID int64) ([]domain.Place, error) {
	return list[domain.Place](ctx, s, "places", campaignID)
}

func (s *AppService) CreatePlace(ctx context.Context, form domain.PlaceCreate) (domain.Place, error) {
	return create[domain.Place](ctx, s, "places", form)
}

func (s *AppService) DeletePlace(ctx context.Context, id int64) error {
	return remove(ctx, s, "places", id)
}

func (s *AppService) ListItems(ctx context.Context, campaignID int64) ([]domain.Item, error) {
	return list[domain.Item](ctx, s, "items", campaignID)
}

func (s *AppService) CreateItem(ctx context.Context, form domain.ItemCreate) (domain.Item, error) {
	return create[domain.Item](ctx, s, "items", form)
}

func (s *AppService) DeleteItem(ctx context.Context, id int64) error {
	return remove(ctx, s, "items", id)
}

func (s *AppService) ListQuests(ctx context.Context, campaignID int64) ([]domain.Quest, error) {
	return list[domain.Quest](ctx, s, "quests", campaignID)
}

func (s *AppService) CreateQuest(ctx context.Context, form domain.QuestCreate) (domain.Quest, error) {
	if form.Status == "" {
		form.Status = domain.QuestNotStarted
	}
	return create[domain.Quest](ctx, s, "quests", form)
}

func (s *AppService) DeleteQuest(ctx context.Context, id int64) error {
	return remove(ctx, s, "quests", id)
}
