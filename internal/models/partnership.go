package models

import (
	"fmt"
	"time"
)

type PartnershipStatus string

const (
	PartnershipStatusActive PartnershipStatus = "active"
	PartnershipStatusEnded  PartnershipStatus = "ended"
)

func ParsePartnershipStatus(value string) (PartnershipStatus, error) {
	switch PartnershipStatus(value) {
	case PartnershipStatusActive, PartnershipStatusEnded:
		return PartnershipStatus(value), nil
	}
	return "", fmt.Errorf("unknown partnership status %q", value)
}

type Partnership struct {
	ID        string            `json:"id"`
	User1ID   string            `json:"user1_id"`
	User2ID   string            `json:"user2_id"`
	Status    PartnershipStatus `json:"status"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// PartnerID returns the other participant, or "" when userID is not part of
// the partnership.
func (p *Partnership) PartnerID(userID string) string {
	switch userID {
	case p.User1ID:
		return p.User2ID
	case p.User2ID:
		return p.User1ID
	}
	return ""
}
