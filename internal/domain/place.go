package domain

import "time"

var PlaceTypes = []string{"continent", "region", "city", "town", "village", "dungeon", "building", "landmark", "other"}

type Place struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CampaignID  int64  `json:"campaign_id"`
	PlaceType   string `json:"place_type"`
	Description string `json:"description,omitempty"`
	History     string `json:"history,omitempty"`
	NotableNPCs string `json:"notable_npcs,omitempty"`
	// Secrets are only meant for the DM.
	Secrets     string    `json:"secrets,omitempty"`
	Population  *int      `json:"population,omitempty"`
	Climate     string    `json:"climate,omitempty"`
	Terrain     string    `json:"terrain,omitempty"`
	MapImageURL string    `json:"map_image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type PlaceCreate struct {
	Name        string `json:"name" validate:"required,max=200"`
	CampaignID  int64  `json:"campaign_id" validate:"required,gt=0"`
	PlaceType   string `json:"place_type" validate:"required,oneof=continent region city town village dungeon building landmark other"`
	Description string `json:"description,omitempty"`
	Population  *int   `json:"population,omitempty" validate:"omitempty,gte=0"`
	Climate     string `json:"climate,omitempty"`
	Terrain     string `json:"terrain,omitempty"`
}
