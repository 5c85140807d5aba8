package domain

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials are sent form-encoded to the token endpoint.
type Credentials struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required"`
}

type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ImportRequest asks the backend to fetch a character sheet from D&D Beyond and add it to a campaign.
// CobaltToken is the user's D&D Beyond session cookie, only needed for private sheets.
type ImportRequest struct {
	CampaignID   int64  `json:"campaign_id" validate:"required,gt=0"`
	CharacterURL string `json:"character_url" validate:"required,url"`
	CobaltToken  string `json:"cobalt_token,omitempty"`
}
