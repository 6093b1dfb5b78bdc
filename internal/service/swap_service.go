package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
	"slotswapper/internal/repository"
)

type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// SwapService coordinates the lifecycle of a swap request: proposing a swap
// between two slots, resolving it, and listing a user's requests. All
// multi-record mutations run inside a single store transaction with the slot
// status field doubling as the concurrency guard.
type SwapService struct {
	store  repository.Store
	sender *SenderService
	logger *zap.Logger
}

func NewSwapService(store repository.Store, sender *SenderService, logger *zap.Logger) *SwapService {
	return &SwapService{store: store, sender: sender, logger: logger}
}

// ProposeSwap validates a swap between the requester's offered slot and the
// target slot, then atomically creates the PENDING request and reserves both
// slots. A concurrent proposal naming either slot loses the conditional status
// write and gets a conflict error, with no partial writes left behind.
func (s *SwapService) ProposeSwap(ctx context.Context, requesterID, offeredSlotID, targetSlotID string) (*db.SwapRequest, error) {
	if offeredSlotID == "" || targetSlotID == "" {
		return nil, apperrors.InvalidRequest("both slot ids are required")
	}
	if offeredSlotID == targetSlotID {
		return nil, apperrors.InvalidRequest("cannot swap a slot with itself")
	}

	offered, err := s.store.Slots().GetByID(ctx, offeredSlotID)
	if err != nil {
		return nil, err
	}
	target, err := s.store.Slots().GetByID(ctx, targetSlotID)
	if err != nil {
		return nil, err
	}

	if offered.OwnerID != requesterID {
		return nil, apperrors.Forbidden("you do not own the offered slot")
	}
	if target.OwnerID == requesterID {
		return nil, apperrors.InvalidRequest("cannot swap with your own event")
	}
	if offered.Status != db.SlotStatusSwappable || target.Status != db.SlotStatusSwappable {
		return nil, apperrors.InvalidRequest("slot is not available for swapping")
	}

	// The RESERVED transition below is the primary duplicate guard; this check
	// only covers the window before that write commits.
	pending, err := s.store.Swaps().HasPendingReferencing(ctx, offeredSlotID, targetSlotID)
	if err != nil {
		return nil, fmt.Errorf("check pending requests: %w", err)
	}
	if pending {
		return nil, apperrors.InvalidRequest("a pending swap request for one of these slots already exists")
	}

	now := time.Now().UTC()
	req := &db.SwapRequest{
		ID:            uuid.New().String(),
		OfferedSlotID: offeredSlotID,
		TargetSlotID:  targetSlotID,
		RequesterID:   requesterID,
		TargetOwnerID: target.OwnerID,
		Status:        db.SwapStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Slots().TransitionStatus(ctx, offeredSlotID, db.SlotStatusSwappable, db.SlotStatusReserved); err != nil {
			return err
		}
		if err := tx.Slots().TransitionStatus(ctx, targetSlotID, db.SlotStatusSwappable, db.SlotStatusReserved); err != nil {
			return err
		}
		return tx.Swaps().Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Swap proposed",
		zap.String("swap_request_id", req.ID),
		zap.String("requester_id", requesterID),
		zap.String("offered_slot_id", offeredSlotID),
		zap.String("target_slot_id", targetSlotID),
	)

	s.notifyProposed(ctx, req)

	return req, nil
}

// ResolveSwap applies the target owner's decision. REJECT releases both slots
// back to SWAPPABLE; ACCEPT exchanges ownership and marks both slots BUSY. The
// request-status flip, the slot writes, and the ownership exchange commit as
// one unit; if either slot has vanished the transaction aborts and the request
// stays PENDING.
func (s *SwapService) ResolveSwap(ctx context.Context, responderID, requestID string, decision Decision) (*db.SwapRequest, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, apperrors.InvalidRequest("decision must be ACCEPT or REJECT")
	}

	req, err := s.store.Swaps().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	// A request the caller cannot act on is indistinguishable from a missing
	// one, so its existence is not leaked.
	if req.TargetOwnerID != responderID {
		return nil, apperrors.NotFound(fmt.Sprintf("swap request %s not found", requestID))
	}
	if req.Status != db.SwapStatusPending {
		return nil, apperrors.InvalidRequest("swap request already processed")
	}

	next := db.SwapStatusRejected
	if decision == DecisionAccept {
		next = db.SwapStatusAccepted
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		// Re-verified inside the transaction so two racing responders cannot
		// both commit a resolution.
		if err := tx.Swaps().TransitionStatus(ctx, req.ID, db.SwapStatusPending, next); err != nil {
			if apperrors.KindOf(err) == apperrors.KindConflict {
				return apperrors.InvalidRequest("swap request already processed")
			}
			return err
		}

		offered, err := tx.Slots().GetByID(ctx, req.OfferedSlotID)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				return apperrors.Internal("swap request references a slot that no longer exists", err)
			}
			return err
		}
		target, err := tx.Slots().GetByID(ctx, req.TargetSlotID)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				return apperrors.Internal("swap request references a slot that no longer exists", err)
			}
			return err
		}

		if decision == DecisionReject {
			if err := tx.Slots().TransitionStatus(ctx, offered.ID, db.SlotStatusReserved, db.SlotStatusSwappable); err != nil {
				return apperrors.Internal("offered slot left its reserved state", err)
			}
			if err := tx.Slots().TransitionStatus(ctx, target.ID, db.SlotStatusReserved, db.SlotStatusSwappable); err != nil {
				return apperrors.Internal("target slot left its reserved state", err)
			}
			return nil
		}

		// Accept: exchange owners, both slots become BUSY.
		if err := tx.Slots().TransferOwnership(ctx, offered.ID, target.OwnerID, db.SlotStatusBusy); err != nil {
			return err
		}
		if err := tx.Slots().TransferOwnership(ctx, target.ID, offered.OwnerID, db.SlotStatusBusy); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Status = next
	req.UpdatedAt = time.Now().UTC()

	s.logger.Info("Swap resolved",
		zap.String("swap_request_id", req.ID),
		zap.String("responder_id", responderID),
		zap.String("decision", string(decision)),
	)

	s.notifyResolved(ctx, req)

	return req, nil
}

// ListRequests returns the user's swap requests filtered by direction. Order
// follows the underlying store's iteration order.
func (s *SwapService) ListRequests(ctx context.Context, userID string, dir repository.Direction) ([]db.SwapRequest, error) {
	switch dir {
	case repository.DirectionSent, repository.DirectionReceived, repository.DirectionAll:
	case "":
		dir = repository.DirectionAll
	default:
		return nil, apperrors.InvalidRequest("direction must be SENT, RECEIVED or ALL")
	}
	return s.store.Swaps().ListForUser(ctx, userID, dir)
}

func (s *SwapService) notifyProposed(ctx context.Context, req *db.SwapRequest) {
	if s.sender == nil {
		return
	}
	targetOwner, err := s.store.Users().GetByID(ctx, req.TargetOwnerID)
	if err != nil {
		s.logger.Warn("Could not load target owner for notification", zap.Error(err))
		return
	}
	requester, err := s.store.Users().GetByID(ctx, req.RequesterID)
	if err != nil {
		s.logger.Warn("Could not load requester for notification", zap.Error(err))
		return
	}
	s.sender.SendSwapProposedEmail(*targetOwner, *requester)
}

func (s *SwapService) notifyResolved(ctx context.Context, req *db.SwapRequest) {
	if s.sender == nil {
		return
	}
	requester, err := s.store.Users().GetByID(ctx, req.RequesterID)
	if err != nil {
		s.logger.Warn("Could not load requester for notification", zap.Error(err))
		return
	}
	s.sender.SendSwapResolvedEmail(*requester, req.Status)
}
