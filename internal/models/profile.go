package models

import (
	"fmt"
	"time"
)

type GenderPreference string

const (
	GenderPreferenceAny  GenderPreference = "any"
	GenderPreferenceSame GenderPreference = "same_gender"
)

type TimezonePreference string

const (
	TimezonePreferenceAny  TimezonePreference = "any"
	TimezonePreferenceSame TimezonePreference = "same_timezone"
)

func ParseGenderPreference(value string) (GenderPreference, error) {
	switch GenderPreference(value) {
	case GenderPreferenceAny, GenderPreferenceSame:
		return GenderPreference(value), nil
	}
	return "", fmt.Errorf("unknown gender preference %q", value)
}

func ParseTimezonePreference(value string) (TimezonePreference, error) {
	switch TimezonePreference(value) {
	case TimezonePreferenceAny, TimezonePreferenceSame:
		return TimezonePreference(value), nil
	}
	return "", fmt.Errorf("unknown timezone preference %q", value)
}

type SupportProfile struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	Gender             *string            `json:"gender"`
	GenderPreference   GenderPreference   `json:"gender_preference"`
	Timezone           *string            `json:"timezone"`
	TimezonePreference TimezonePreference `json:"timezone_preference"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
