package domain

import "time"

type Role string

const (
	RoleDM     Role = "dm"
	RolePlayer Role = "player"
	RoleViewer Role = "viewer"
)

var Roles = []Role{RoleDM, RolePlayer, RoleViewer}

func (r Role) Valid() bool {
	switch r {
	case RoleDM, RolePlayer, RoleViewer:
		return true
	}
	return false
}

type Campaign struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Setting     string     `json:"setting,omitempty"`
	IsActive    bool       `json:"is_active"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type CampaignMember struct {
	ID         int64     `json:"id"`
	CampaignID int64     `json:"campaign_id"`
	UserID     int64     `json:"user_id"`
	Role       Role      `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
	User       User      `json:"user"`
}

// CampaignDetail is what the backend returns for a single campaign: the campaign itself, its owner and members.
type CampaignDetail struct {
	Campaign
	Owner   User             `json:"owner"`
	Members []CampaignMember `json:"members"`
}

type CampaignCreate struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Setting     string `json:"setting"`
	IsActive    bool   `json:"is_active"`
}

// CampaignUpdate only carries the fields being changed.
type CampaignUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
	Setting     *string `json:"setting,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type MemberCreate struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	Role   Role  `json:"role" validate:"required,oneof=dm player viewer"`
}
