package models

import "time"

type Exclusion struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ExcludedUserID string    `json:"excluded_user_id"`
	Reason         *string   `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}
