package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slotswapper/internal/db"
	"slotswapper/internal/entities"
	apperrors "slotswapper/internal/errors"
	"slotswapper/internal/repository"
)

// SlotService owns plain slot CRUD. Swap-related status moves (to and from
// RESERVED) belong to SwapService; the owner can only toggle BUSY and
// SWAPPABLE here, and only through the store's conditional transition.
type SlotService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewSlotService(store repository.Store, logger *zap.Logger) *SlotService {
	return &SlotService{store: store, logger: logger}
}

func (s *SlotService) CreateSlot(ctx context.Context, ownerID string, req entities.CreateSlotRequest) (*db.Slot, error) {
	if req.Title == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, apperrors.InvalidRequest("title, start_time and end_time are required")
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.InvalidRequest("start_time must be before end_time")
	}
	// Checked once, here; an existing slot is allowed to drift into the past.
	if !req.StartTime.After(time.Now()) {
		return nil, apperrors.InvalidRequest("start_time must be in the future")
	}

	now := time.Now().UTC()
	slot := &db.Slot{
		ID:        uuid.New().String(),
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		OwnerID:   ownerID,
		Status:    db.SlotStatusBusy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Slots().Create(ctx, slot); err != nil {
		return nil, err
	}

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID),
		zap.String("owner_id", ownerID),
	)
	return slot, nil
}

func (s *SlotService) ListMySlots(ctx context.Context, ownerID string) ([]db.Slot, error) {
	return s.store.Slots().ListByOwner(ctx, ownerID)
}

// ListSwappable returns the marketplace: other users' slots currently open
// for swapping.
func (s *SlotService) ListSwappable(ctx context.Context, userID string) ([]db.Slot, error) {
	return s.store.Slots().ListSwappableExcluding(ctx, userID)
}

func (s *SlotService) UpdateSlot(ctx context.Context, ownerID, slotID string, req entities.UpdateSlotRequest) (*db.Slot, error) {
	slot, err := s.store.Slots().GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.OwnerID != ownerID {
		return nil, apperrors.Forbidden("you do not own this slot")
	}

	title := slot.Title
	startTime := slot.StartTime
	endTime := slot.EndTime
	if req.Title != nil {
		title = *req.Title
	}
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if title == "" {
		return nil, apperrors.InvalidRequest("title cannot be empty")
	}
	if !startTime.Before(endTime) {
		return nil, apperrors.InvalidRequest("start_time must be before end_time")
	}

	var nextStatus db.SlotStatus
	if req.Status != nil {
		nextStatus = db.SlotStatus(*req.Status)
		if nextStatus != db.SlotStatusBusy && nextStatus != db.SlotStatusSwappable {
			return nil, apperrors.InvalidRequest("status must be BUSY or SWAPPABLE")
		}
		if slot.Status == db.SlotStatusReserved {
			return nil, apperrors.InvalidRequest("slot is locked by a pending swap request")
		}
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Slots().UpdateDetails(ctx, slotID, title, startTime, endTime); err != nil {
			return err
		}
		if req.Status != nil && nextStatus != slot.Status {
			// Conditional on the status read above: losing this write means a
			// swap proposal reserved the slot in the meantime.
			if err := tx.Slots().TransitionStatus(ctx, slotID, slot.Status, nextStatus); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.Slots().GetByID(ctx, slotID)
}

// DeleteSlot removes the slot unconditionally. Deleting a RESERVED slot
// orphans the referencing swap request; resolving that request later fails
// with a server fault and the janitor eventually rejects it.
func (s *SlotService) DeleteSlot(ctx context.Context, ownerID, slotID string) error {
	slot, err := s.store.Slots().GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.OwnerID != ownerID {
		return apperrors.Forbidden("you do not own this slot")
	}
	if err := s.store.Slots().Delete(ctx, slotID); err != nil {
		return err
	}

	s.logger.Info("Slot deleted",
		zap.String("slot_id", slotID),
		zap.String("owner_id", ownerID),
		zap.String("status", string(slot.Status)),
	)
	return nil
}
