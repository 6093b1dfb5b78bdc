package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
	"slotswapper/internal/repository"
)

// JobService runs the scheduled janitor pass: PENDING swap requests whose
// slots have already started, or whose slots were deleted out-of-band, are
// rejected so they stop pinning reserved slots. Each request is resolved in
// its own transaction through the same conditional-write path the resolution
// engine uses.
type JobService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewJobService(store repository.Store, logger *zap.Logger) *JobService {
	return &JobService{store: store, logger: logger}
}

func (s *JobService) RejectStaleRequests(ctx context.Context) error {
	stale, err := s.store.Swaps().ListStalePending(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	s.logger.Info("Janitor: rejecting stale swap requests", zap.Int("count", len(stale)))

	for _, req := range stale {
		if err := s.rejectStale(ctx, req); err != nil {
			s.logger.Warn("Janitor: could not reject swap request",
				zap.String("swap_request_id", req.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *JobService) rejectStale(ctx context.Context, req db.SwapRequest) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Swaps().TransitionStatus(ctx, req.ID, db.SwapStatusPending, db.SwapStatusRejected); err != nil {
			// Someone resolved it between the listing and now.
			if apperrors.KindOf(err) == apperrors.KindConflict {
				return nil
			}
			return err
		}
		for _, slotID := range []string{req.OfferedSlotID, req.TargetSlotID} {
			if err := s.releaseSlot(ctx, tx, slotID); err != nil {
				return err
			}
		}
		return nil
	})
}

// releaseSlot puts a still-existing reserved slot back to SWAPPABLE. Deleted
// slots are skipped; that is exactly the orphaned-request case the janitor
// exists to clean up.
func (s *JobService) releaseSlot(ctx context.Context, tx repository.Store, slotID string) error {
	slot, err := tx.Slots().GetByID(ctx, slotID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil
		}
		return err
	}
	if slot.Status != db.SlotStatusReserved {
		return nil
	}
	return tx.Slots().TransitionStatus(ctx, slotID, db.SlotStatusReserved, db.SlotStatusSwappable)
}
