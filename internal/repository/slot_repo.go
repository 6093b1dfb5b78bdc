package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
)

type SlotRepository struct {
	q DBTX
}

func NewSlotRepository(q DBTX) *SlotRepository {
	return &SlotRepository{q: q}
}

func (r *SlotRepository) Create(ctx context.Context, slot *db.Slot) error {
	query := `
		INSERT INTO slots (id, title, start_time, end_time, owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.ExecContext(ctx, query,
		slot.ID,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.OwnerID,
		slot.Status,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id string) (*db.Slot, error) {
	query := `
		SELECT id, title, start_time, end_time, owner_id, status, created_at, updated_at
		FROM slots WHERE id = $1`
	var slot db.Slot
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&slot.ID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&slot.OwnerID,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return &slot, nil
}

func (r *SlotRepository) ListByOwner(ctx context.Context, ownerID string) ([]db.Slot, error) {
	query := `
		SELECT id, title, start_time, end_time, owner_id, status, created_at, updated_at
		FROM slots
		WHERE owner_id = $1
		ORDER BY start_time`
	return r.list(ctx, query, ownerID)
}

func (r *SlotRepository) ListSwappableExcluding(ctx context.Context, ownerID string) ([]db.Slot, error) {
	query := `
		SELECT id, title, start_time, end_time, owner_id, status, created_at, updated_at
		FROM slots
		WHERE owner_id <> $1 AND status = $2
		ORDER BY start_time`
	return r.list(ctx, query, ownerID, db.SlotStatusSwappable)
}

func (r *SlotRepository) list(ctx context.Context, query string, args ...any) ([]db.Slot, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []db.Slot
	for rows.Next() {
		var slot db.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.Title,
			&slot.StartTime,
			&slot.EndTime,
			&slot.OwnerID,
			&slot.Status,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

func (r *SlotRepository) UpdateDetails(ctx context.Context, id, title string, startTime, endTime time.Time) error {
	query := `
		UPDATE slots
		SET title = $2, start_time = $3, end_time = $4, updated_at = NOW()
		WHERE id = $1`
	result, err := r.q.ExecContext(ctx, query, id, title, startTime, endTime)
	if err != nil {
		return fmt.Errorf("update slot details: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update slot details: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
	}
	return nil
}

func (r *SlotRepository) TransitionStatus(ctx context.Context, id string, expected, next db.SlotStatus) error {
	query := `
		UPDATE slots
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`
	result, err := r.q.ExecContext(ctx, query, id, expected, next)
	if err != nil {
		return fmt.Errorf("transition slot status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition slot status: %w", err)
	}
	if rows == 0 {
		return apperrors.Conflict(fmt.Sprintf("slot %s is no longer %s", id, expected))
	}
	return nil
}

func (r *SlotRepository) TransferOwnership(ctx context.Context, id, newOwnerID string, status db.SlotStatus) error {
	query := `
		UPDATE slots
		SET owner_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1`
	result, err := r.q.ExecContext(ctx, query, id, newOwnerID, status)
	if err != nil {
		return fmt.Errorf("transfer slot ownership: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transfer slot ownership: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
	}
	return nil
}

func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
	}
	return nil
}
