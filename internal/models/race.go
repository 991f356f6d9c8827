package models

import (
	"time"
)

// RaceDateLayout is the ISO 8601 calendar date layout used by race contexts
const RaceDateLayout = "2006-01-02"

// RaceContext carries race-level metadata for one recommendation call
type RaceContext struct {
	RaceID   string `json:"race_id" validate:"required"`
	Date     string `json:"date"`
	RaceName string `json:"race_name,omitempty"`
	Venue    string `json:"venue,omitempty"`
	Class    string `json:"class,omitempty"`
}

// ParseDate parses the race date as a calendar date or an RFC 3339 timestamp
func (r RaceContext) ParseDate() (time.Time, bool) {
	if t, err := time.Parse(RaceDateLayout, r.Date); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
		return t, true
	}
	return time.Time{}, false
}
