package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
)

type SwapRequestRepository struct {
	q DBTX
}

func NewSwapRequestRepository(q DBTX) *SwapRequestRepository {
	return &SwapRequestRepository{q: q}
}

func (r *SwapRequestRepository) Create(ctx context.Context, req *db.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (id, offered_slot_id, target_slot_id, requester_id, target_owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.ExecContext(ctx, query,
		req.ID,
		req.OfferedSlotID,
		req.TargetSlotID,
		req.RequesterID,
		req.TargetOwnerID,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

func (r *SwapRequestRepository) GetByID(ctx context.Context, id string) (*db.SwapRequest, error) {
	query := `
		SELECT id, offered_slot_id, target_slot_id, requester_id, target_owner_id, status, created_at, updated_at
		FROM swap_requests WHERE id = $1`
	var req db.SwapRequest
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.OfferedSlotID,
		&req.TargetSlotID,
		&req.RequesterID,
		&req.TargetOwnerID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("swap request %s not found", id))
		}
		return nil, fmt.Errorf("get swap request by id: %w", err)
	}
	return &req, nil
}

func (r *SwapRequestRepository) ListForUser(ctx context.Context, userID string, dir Direction) ([]db.SwapRequest, error) {
	query := `
		SELECT id, offered_slot_id, target_slot_id, requester_id, target_owner_id, status, created_at, updated_at
		FROM swap_requests
		WHERE `
	switch dir {
	case DirectionSent:
		query += `requester_id = $1`
	case DirectionReceived:
		query += `target_owner_id = $1`
	default:
		query += `(requester_id = $1 OR target_owner_id = $1)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}
	defer rows.Close()
	return scanSwapRequests(rows)
}

func (r *SwapRequestRepository) HasPendingReferencing(ctx context.Context, slotIDs ...string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM swap_requests
			WHERE status = $1
			  AND (offered_slot_id = ANY($2) OR target_slot_id = ANY($2))
		)`
	var exists bool
	err := r.q.QueryRowContext(ctx, query, db.SwapStatusPending, pq.Array(slotIDs)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending swap requests: %w", err)
	}
	return exists, nil
}

func (r *SwapRequestRepository) TransitionStatus(ctx context.Context, id string, expected, next db.SwapStatus) error {
	query := `
		UPDATE swap_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`
	result, err := r.q.ExecContext(ctx, query, id, expected, next)
	if err != nil {
		return fmt.Errorf("transition swap request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition swap request status: %w", err)
	}
	if rows == 0 {
		return apperrors.Conflict(fmt.Sprintf("swap request %s is no longer %s", id, expected))
	}
	return nil
}

func (r *SwapRequestRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]db.SwapRequest, error) {
	query := `
		SELECT sr.id, sr.offered_slot_id, sr.target_slot_id, sr.requester_id, sr.target_owner_id, sr.status, sr.created_at, sr.updated_at
		FROM swap_requests sr
		LEFT JOIN slots offered ON offered.id = sr.offered_slot_id
		LEFT JOIN slots target ON target.id = sr.target_slot_id
		WHERE sr.status = $1
		  AND (offered.id IS NULL OR target.id IS NULL
		       OR offered.start_time < $2 OR target.start_time < $2)`
	rows, err := r.q.QueryContext(ctx, query, db.SwapStatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale pending swap requests: %w", err)
	}
	defer rows.Close()
	return scanSwapRequests(rows)
}

func scanSwapRequests(rows *sql.Rows) ([]db.SwapRequest, error) {
	var reqs []db.SwapRequest
	for rows.Next() {
		var req db.SwapRequest
		err := rows.Scan(
			&req.ID,
			&req.OfferedSlotID,
			&req.TargetSlotID,
			&req.RequesterID,
			&req.TargetOwnerID,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap requests: %w", err)
	}
	return reqs, nil
}
