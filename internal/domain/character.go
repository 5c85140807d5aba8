package domain

import "time"

const (
	MinLevel = 1
	MaxLevel = 20
)

type Character struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	CampaignID        int64          `json:"campaign_id"`
	CreatorID         int64          `json:"creator_id"`
	Race              string         `json:"race,omitempty"`
	CharacterClass    string         `json:"character_class,omitempty"`
	Level             int            `json:"level"`
	Background        string         `json:"background,omitempty"`
	Alignment         string         `json:"alignment,omitempty"`
	Stats             map[string]int `json:"stats,omitempty"`
	Backstory         string         `json:"backstory,omitempty"`
	PersonalityTraits string         `json:"personality_traits,omitempty"`
	Ideals            string         `json:"ideals,omitempty"`
	Bonds             string         `json:"bonds,omitempty"`
	Flaws             string         `json:"flaws,omitempty"`
	Appearance        string         `json:"appearance,omitempty"`
	IsNPC             bool           `json:"is_npc"`
	IsActive          bool           `json:"is_active"`
	DndBeyondURL      string         `json:"dndbeyond_url,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

type CharacterCreate struct {
	Name           string         `json:"name" validate:"required,max=200"`
	CampaignID     int64          `json:"campaign_id" validate:"required,gt=0"`
	Race           string         `json:"race,omitempty"`
	CharacterClass string         `json:"character_class,omitempty"`
	Level          int            `json:"level" validate:"gte=1,lte=20"`
	Background     string         `json:"background,omitempty"`
	Alignment      string         `json:"alignment,omitempty"`
	Stats          map[string]int `json:"stats,omitempty"`
	Backstory      string         `json:"backstory,omitempty"`
	IsNPC          bool           `json:"is_npc"`
	IsActive       bool           `json:"is_active"`
}
