package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
	"slotswapper/internal/repository"
)

func seed(t *testing.T, store *Store, status db.SlotStatus) db.Slot {
	t.Helper()
	now := time.Now().UTC()
	slot := db.Slot{
		ID:        uuid.New().String(),
		Title:     "Slot",
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
		OwnerID:   "owner",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Slots().Create(context.Background(), &slot))
	return slot
}

func TestTransitionStatus_Conditional(t *testing.T) {
	store := NewStore()
	slot := seed(t, store, db.SlotStatusSwappable)
	ctx := context.Background()

	require.NoError(t, store.Slots().TransitionStatus(ctx, slot.ID, db.SlotStatusSwappable, db.SlotStatusReserved))

	// The same transition again loses the guard.
	err := store.Slots().TransitionStatus(ctx, slot.ID, db.SlotStatusSwappable, db.SlotStatusReserved)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	got, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SlotStatusReserved, got.Status)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := NewStore()
	slot := seed(t, store, db.SlotStatusSwappable)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Slots().TransitionStatus(ctx, slot.ID, db.SlotStatusSwappable, db.SlotStatusReserved); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SlotStatusSwappable, got.Status, "failed transaction must leave no trace")
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store := NewStore()
	a := seed(t, store, db.SlotStatusSwappable)
	b := seed(t, store, db.SlotStatusSwappable)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Slots().TransitionStatus(ctx, a.ID, db.SlotStatusSwappable, db.SlotStatusReserved); err != nil {
			return err
		}
		return tx.Slots().TransitionStatus(ctx, b.ID, db.SlotStatusSwappable, db.SlotStatusReserved)
	})
	require.NoError(t, err)

	for _, id := range []string{a.ID, b.ID} {
		got, err := store.Slots().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, db.SlotStatusReserved, got.Status)
	}
}

func TestWithinTx_NestedIsRejected(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.WithinTx(ctx, func(repository.Store) error { return nil })
	})
	require.Error(t, err)
}
