package entities

import "time"

type CreateSlotRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// UpdateSlotRequest carries a partial update; nil fields are left untouched.
// Status may only move between BUSY and SWAPPABLE.
type UpdateSlotRequest struct {
	Title     *string    `json:"title,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    *string    `json:"status,omitempty"`
}
