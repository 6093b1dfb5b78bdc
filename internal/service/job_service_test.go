package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"slotswapper/internal/db"
	"slotswapper/internal/repository/memory"
)

func seedSlotStartingAt(t *testing.T, store *memory.Store, ownerID string, status db.SlotStatus, start time.Time) db.Slot {
	t.Helper()
	now := time.Now().UTC()
	slot := db.Slot{
		ID:        uuid.New().String(),
		Title:     "Meeting",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		OwnerID:   ownerID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Slots().Create(context.Background(), &slot))
	return slot
}

func TestRejectStaleRequests_ExpiredSlot(t *testing.T) {
	store := memory.NewStore()
	swapSvc := NewSwapService(store, nil, zap.NewNop())
	jobSvc := NewJobService(store, zap.NewNop())

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	offered := seedSlot(t, store, alice.ID, db.SlotStatusSwappable)
	target := seedSlot(t, store, bob.ID, db.SlotStatusSwappable)

	req, err := swapSvc.ProposeSwap(context.Background(), alice.ID, offered.ID, target.ID)
	require.NoError(t, err)

	// Backdate the offered slot so the proposal is now pointless.
	require.NoError(t, store.Slots().UpdateDetails(context.Background(), offered.ID, offered.Title,
		time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour)))

	require.NoError(t, jobSvc.RejectStaleRequests(context.Background()))

	stored, err := store.Swaps().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SwapStatusRejected, stored.Status)

	assert.Equal(t, db.SlotStatusSwappable, getSlot(t, store, offered.ID).Status)
	assert.Equal(t, db.SlotStatusSwappable, getSlot(t, store, target.ID).Status)
}

func TestRejectStaleRequests_OrphanedRequest(t *testing.T) {
	store := memory.NewStore()
	swapSvc := NewSwapService(store, nil, zap.NewNop())
	jobSvc := NewJobService(store, zap.NewNop())

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	offered := seedSlot(t, store, alice.ID, db.SlotStatusSwappable)
	target := seedSlot(t, store, bob.ID, db.SlotStatusSwappable)

	req, err := swapSvc.ProposeSwap(context.Background(), alice.ID, offered.ID, target.ID)
	require.NoError(t, err)

	require.NoError(t, store.Slots().Delete(context.Background(), offered.ID))

	require.NoError(t, jobSvc.RejectStaleRequests(context.Background()))

	stored, err := store.Swaps().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SwapStatusRejected, stored.Status)

	// The surviving half of the pair is released.
	assert.Equal(t, db.SlotStatusSwappable, getSlot(t, store, target.ID).Status)
}

func TestRejectStaleRequests_LeavesFreshRequestsAlone(t *testing.T) {
	store := memory.NewStore()
	swapSvc := NewSwapService(store, nil, zap.NewNop())
	jobSvc := NewJobService(store, zap.NewNop())

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	offered := seedSlot(t, store, alice.ID, db.SlotStatusSwappable)
	target := seedSlot(t, store, bob.ID, db.SlotStatusSwappable)

	req, err := swapSvc.ProposeSwap(context.Background(), alice.ID, offered.ID, target.ID)
	require.NoError(t, err)

	require.NoError(t, jobSvc.RejectStaleRequests(context.Background()))

	stored, err := store.Swaps().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SwapStatusPending, stored.Status)
	assert.Equal(t, db.SlotStatusReserved, getSlot(t, store, offered.ID).Status)
	assert.Equal(t, db.SlotStatusReserved, getSlot(t, store, target.ID).Status)
}

func TestRejectStaleRequests_SkipsResolvedRequests(t *testing.T) {
	store := memory.NewStore()
	jobSvc := NewJobService(store, zap.NewNop())

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	past := time.Now().Add(-time.Hour)
	offered := seedSlotStartingAt(t, store, alice.ID, db.SlotStatusBusy, past)
	target := seedSlotStartingAt(t, store, bob.ID, db.SlotStatusBusy, past)

	now := time.Now().UTC()
	req := db.SwapRequest{
		ID:            uuid.New().String(),
		OfferedSlotID: offered.ID,
		TargetSlotID:  target.ID,
		RequesterID:   alice.ID,
		TargetOwnerID: bob.ID,
		Status:        db.SwapStatusAccepted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.Swaps().Create(context.Background(), &req))

	require.NoError(t, jobSvc.RejectStaleRequests(context.Background()))

	stored, err := store.Swaps().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SwapStatusAccepted, stored.Status)
	assert.Equal(t, db.SlotStatusBusy, getSlot(t, store, offered.ID).Status)
}
