package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is a calendar event created by a user
type Schedule struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewSchedule(title, description string, start, end time.Time, location, creatorID string) *Schedule {
	now := time.Now()
	return &Schedule{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		StartTime:   start,
		EndTime:     end,
		Location:    location,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
