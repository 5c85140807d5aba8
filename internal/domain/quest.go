package domain

import "time"

const (
	QuestNotStarted = "not_started"
	QuestInProgress = "in_progress"
	QuestCompleted  = "completed"
	QuestFailed     = "failed"
	QuestOnHold     = "on_hold"
)

type Quest struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	CampaignID  int64      `json:"campaign_id"`
	Description string     `json:"description,omitempty"`
	Objectives  string     `json:"objectives,omitempty"`
	Rewards     string     `json:"rewards,omitempty"`
	QuestGiver  string     `json:"quest_giver,omitempty"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type QuestCreate struct {
	Name        string `json:"name" validate:"required,max=200"`
	CampaignID  int64  `json:"campaign_id" validate:"required,gt=0"`
	Description string `json:"description,omitempty"`
	Objectives  string `json:"objectives,omitempty"`
	Rewards     string `json:"rewards,omitempty"`
	QuestGiver  string `json:"quest_giver,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status" validate:"required,oneof=not_started in_progress completed failed on_hold"`
}
