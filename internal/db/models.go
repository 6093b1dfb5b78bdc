package db

import "time"

type SlotStatus string

const (
	SlotStatusBusy      SlotStatus = "BUSY"
	SlotStatusSwappable SlotStatus = "SWAPPABLE"
	SlotStatusReserved  SlotStatus = "RESERVED" // locked by an in-flight swap request
)

// Valid reports whether s is one of the three known slot statuses.
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusReserved:
		return true
	}
	return false
}

type Slot struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	OwnerID   string     `json:"owner_id"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "PENDING"
	SwapStatusAccepted SwapStatus = "ACCEPTED"
	SwapStatusRejected SwapStatus = "REJECTED"
)

// SwapRequest references its slots and users by id only; the records it points
// at are owned by their own stores and may outlive or predecease the request.
type SwapRequest struct {
	ID            string     `json:"id"`
	OfferedSlotID string     `json:"offered_slot_id"`
	TargetSlotID  string     `json:"target_slot_id"`
	RequesterID   string     `json:"requester_id"`
	TargetOwnerID string     `json:"target_owner_id"`
	Status        SwapStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
