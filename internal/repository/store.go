package repository

import (
	"context"
	"time"

	"slotswapper/internal/db"
)

// Direction filters swap request listings by the caller's role in them.
type Direction string

const (
	DirectionSent     Direction = "SENT"
	DirectionReceived Direction = "RECEIVED"
	DirectionAll      Direction = "ALL"
)

type SlotStore interface {
	Create(ctx context.Context, slot *db.Slot) error
	// GetByID returns a not_found error when no slot has the given id.
	GetByID(ctx context.Context, id string) (*db.Slot, error)
	ListByOwner(ctx context.Context, ownerID string) ([]db.Slot, error)
	// ListSwappableExcluding lists SWAPPABLE slots owned by anyone but ownerID.
	ListSwappableExcluding(ctx context.Context, ownerID string) ([]db.Slot, error)
	UpdateDetails(ctx context.Context, id, title string, startTime, endTime time.Time) error
	// TransitionStatus writes next only if the stored status still equals
	// expected, returning a conflict error otherwise. This is the primitive
	// that closes the read-then-write race on slot availability.
	TransitionStatus(ctx context.Context, id string, expected, next db.SlotStatus) error
	// TransferOwnership is an unconditional administrative write, only valid
	// inside an already-validated transaction.
	TransferOwnership(ctx context.Context, id, newOwnerID string, status db.SlotStatus) error
	Delete(ctx context.Context, id string) error
}

type SwapRequestStore interface {
	Create(ctx context.Context, req *db.SwapRequest) error
	// GetByID returns a not_found error when no request has the given id.
	GetByID(ctx context.Context, id string) (*db.SwapRequest, error)
	ListForUser(ctx context.Context, userID string, dir Direction) ([]db.SwapRequest, error)
	// HasPendingReferencing reports whether any PENDING request references one
	// of the given slots as either side of the swap.
	HasPendingReferencing(ctx context.Context, slotIDs ...string) (bool, error)
	// TransitionStatus is the compare-and-set twin of SlotStore.TransitionStatus.
	TransitionStatus(ctx context.Context, id string, expected, next db.SwapStatus) error
	// ListStalePending returns PENDING requests whose referenced slots have
	// started before cutoff or no longer exist.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]db.SwapRequest, error)
}

type UserStore interface {
	Create(ctx context.Context, user *db.User) error
	// GetByEmail returns (nil, nil) when no user has the given email.
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByID(ctx context.Context, id string) (*db.User, error)
}

// Store bundles the record stores with a unit-of-work. WithinTx runs fn against
// a transaction-scoped view; if fn returns an error every write made through
// that view is rolled back.
type Store interface {
	Slots() SlotStore
	Swaps() SwapRequestStore
	Users() UserStore
	WithinTx(ctx context.Context, fn func(Store) error) error
}
