package domain

import "time"

// DailyActivity is a public work update posted by an admin.
type DailyActivity struct {
	ID          string    `json:"_id"`
	Date        time.Time `json:"date"`
	Department  string    `json:"department"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
