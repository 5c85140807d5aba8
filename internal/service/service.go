package service

import (
	"context"
	"errors"

	"github.com/sidereusnuntius/tabletop/internal/domain"
)

var (
	ErrInvalidID = errors.New("invalid id")
)

// Service is the campaign manager's REST surface. Every method performs exactly one request, except SearchUsers,
// which may perform none; failures are returned as *client.HttpError.
type Service interface {
	AuthService
	CampaignService
	CharacterService
	PlaceService
	ItemService
	QuestService
	// SearchUsers looks users up by username or email. Queries shorter than MinSearchLength, after trimming,
	// yield an empty result without contacting the backend.
	SearchUsers(ctx context.Context, q string) ([]domain.User, error)
	// ImportCharacter asks the backend to fetch a D&D Beyond character sheet and create it in a campaign.
	ImportCharacter(ctx context.Context, req domain.ImportRequest) (domain.Character, error)
}

type AuthService interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Token, error)
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	// Me returns the user the token belongs to. An empty token means the token source's.
	Me(ctx context.Context, token string) (domain.User, error)
}

type CampaignService interface {
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	GetCampaign(ctx context.Context, id int64) (domain.CampaignDetail, error)
	CreateCampaign(ctx context.Context, c domain.CampaignCreate) (domain.Campaign, error)
	UpdateCampaign(ctx context.Context, id int64, c domain.CampaignUpdate) (domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id int64) error
	AddMember(ctx context.Context, campaignID int64, m domain.MemberCreate) (domain.CampaignMember, error)
	RemoveMember(ctx context.Context, campaignID, userID int64) error
}

type CharacterService interface {
	ListCharacters(ctx context.Context, campaignID int64) ([]domain.Character, error)
	GetCharacter(ctx context.Context, id int64) (domain.Character, error)
	CreateCharacter(ctx context.Context, c domain.CharacterCreate) (domain.Character, error)
	DeleteCharacter(ctx context.Context, id int64) error
}

type PlaceService interface {
	ListPlaces(ctx context.Context, campaignID int64) ([]domain.Place, error)
	CreatePlace(ctx context.Context, p domain.PlaceCreate) (domain.Place, error)
	DeletePlace(ctx context.Context, id int64) error
}

type ItemService interface {
	ListItems(ctx context.Context, campaignID int64) ([]domain.Item, error)
	CreateItem(ctx context.Context, i domain.ItemCreate) (domain.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type QuestService interface {
	ListQuests(ctx context.Context, campaignID int64) ([]domain.Quest, error)
	CreateQuest(ctx context.Context, q domain.QuestCreate) (domain.Quest, error)
	DeleteQuest(ctx context.Context, id int64) error
}
