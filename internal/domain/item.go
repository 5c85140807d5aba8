package domain

import "time"

var (
	ItemTypes    = []string{"weapon", "armor", "potion", "scroll", "wondrous", "tool", "gear", "treasure", "other"}
	ItemRarities = []string{"common", "uncommon", "rare", "very_rare", "legendary", "artifact"}
)

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CampaignID  int64  `json:"campaign_id"`
	ItemType    string `json:"item_type"`
	Rarity      string `json:"rarity"`
	Description string `json:"description,omitempty"`
	Properties  string `json:"properties,omitempty"`
	// Weight is in pounds.
	Weight *float64 `json:"weight,omitempty"`
	// Value is in gold pieces.
	Value              *int      `json:"value,omitempty"`
	Damage             string    `json:"damage,omitempty"`
	RequiresAttunement bool      `json:"requires_attunement"`
	IsMagical          bool      `json:"is_magical"`
	IsCursed           bool      `json:"is_cursed"`
	CreatedAt          time.Time `json:"created_at"`
}

type ItemCreate struct {
	Name               string   `json:"name" validate:"required,max=200"`
	CampaignID         int64    `json:"campaign_id" validate:"required,gt=0"`
	ItemType           string   `json:"item_type" validate:"required,oneof=weapon armor potion scroll wondrous tool gear treasure other"`
	Rarity             string   `json:"rarity" validate:"required,oneof=common uncommon rare very_rare legendary artifact"`
	Description        string   `json:"description,omitempty"`
	Weight             *float64 `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Value              *int     `json:"value,omitempty" validate:"omitempty,gte=0"`
	Damage             string   `json:"damage,omitempty"`
	RequiresAttunement bool     `json:"requires_attunement"`
	IsMagical          bool     `json:"is_magical"`
	IsCursed           bool     `json:"is_cursed"`
}
