// Package memory provides an in-memory repository.Store. It backs the test
// suite and local development without a Postgres instance; transactions are
// serialized under a single mutex and rolled back via snapshot restore.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"slotswapper/internal/db"
	apperrors "slotswapper/internal/errors"
	"slotswapper/internal/repository"
)

type Store struct {
	mu    sync.Mutex
	slots map[string]db.Slot
	swaps map[string]db.SwapRequest
	users map[string]db.User
}

func NewStore() *Store {
	return &Store{
		slots: make(map[string]db.Slot),
		swaps: make(map[string]db.SwapRequest),
		users: make(map[string]db.User),
	}
}

func (s *Store) Slots() repository.SlotStore {
	return &slotStore{s: s}
}

func (s *Store) Swaps() repository.SwapRequestStore {
	return &swapStore{s: s}
}

func (s *Store) Users() repository.UserStore {
	return &userStore{s: s}
}

// WithinTx holds the store lock for the whole callback, so concurrent callers
// observe either all of the group's writes or none of them. On error the
// pre-transaction snapshot is restored.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := cloneMap(s.slots)
	swaps := cloneMap(s.swaps)
	users := cloneMap(s.users)

	if err := fn(&txStore{s: s}); err != nil {
		s.slots = slots
		s.swaps = swaps
		s.users = users
		return err
	}
	return nil
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// txStore is the transaction-scoped view handed to WithinTx callbacks. Its
// accessors skip locking because WithinTx already holds the store mutex.
type txStore struct {
	s *Store
}

func (t *txStore) Slots() repository.SlotStore {
	return &slotStore{s: t.s, inTx: true}
}

func (t *txStore) Swaps() repository.SwapRequestStore {
	return &swapStore{s: t.s, inTx: true}
}

func (t *txStore) Users() repository.UserStore {
	return &userStore{s: t.s, inTx: true}
}

func (t *txStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fmt.Errorf("nested transactions are not supported")
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type slotStore struct {
	s    *Store
	inTx bool
}

func (r *slotStore) Create(ctx context.Context, slot *db.Slot) error {
	defer r.s.lock(r.inTx)()
	r.s.slots[slot.ID] = *slot
	return nil
}

func (r *slotStore) GetByID(ctx context.Context, id string) (*db.Slot, error) {
	defer r.s.lock(r.inTx)()
	slot, ok := r.s.slots[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
	}
	return &slot, nil
}

func (r *slotStore) ListByOwner(ctx context.Context, ownerID string) ([]db.Slot, error) {
	defer r.s.lock(r.inTx)()
	var slots []db.Slot
	for _, slot := range r.s.slots {
		if slot.OwnerID == ownerID {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (r *slotStore) ListSwappableExcluding(ctx context.Context, ownerID string) ([]db.Slot, error) {
	defer r.s.lock(r.inTx)()
	var slots []db.Slot
	for _, slot := range r.s.slots {
		if slot.OwnerID != ownerID && slot.Status == db.SlotStatusSwappable {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (r *slotStore) UpdateDetails(ctx context.Context, id, title string, startTime, endTime time.Time) error {
	defer r.s.lock(r.inTx)()
	slot, ok := r.s.slots[id]
	if !ok {
		return apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
	}
	slot.Title = title
	slot.StartTime = startTime
	slot.EndTime = endTime
	slot.UpdatedAt = time.Now().UTC()
	r.s.slots[id] = slot
	return nil
}

func (r *slotStore) TransitionStatus(ctx context.Context, id string, expected, next db.SlotStatus) error {
	defer r.s.lock(r.inTx)()
	slot, ok := r.s.slots[id]
	if !ok || slot.Status != expected {
		return apperrors.Conflict(fmt.Sprintf("slot %s is no longer %s", id, expected))
	}
	slot.Status = next
	slot.UpdatedAt = time.Now().UTC()
	r.s.slots[id] = slot
	return nil
}

func (r *slotStore) TransferOwnership(ctx context.Context, id, newOwnerID string, status db.SlotStatus) error {
	defer r.s.lock(r.inTx)()
	slot, ok := r.s.slots[id]
	if !ok {
		return apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
	}
	slot.OwnerID = newOwnerID
	slot.Status = status
	slot.UpdatedAt = time.Now().UTC()
	r.s.slots[id] = slot
	return nil
}

func (r *slotStore) Delete(ctx context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.slots[id]; !ok {
		return apperrors.NotFound(fmt.Sprintf("slot %s not found", id))
	}
	delete(r.s.slots, id)
	return nil
}

type swapStore struct {
	s    *Store
	inTx bool
}

func (r *swapStore) Create(ctx context.Context, req *db.SwapRequest) error {
	defer r.s.lock(r.inTx)()
	r.s.swaps[req.ID] = *req
	return nil
}

func (r *swapStore) GetByID(ctx context.Context, id string) (*db.SwapRequest, error) {
	defer r.s.lock(r.inTx)()
	req, ok := r.s.swaps[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("swap request %s not found", id))
	}
	return &req, nil
}

func (r *swapStore) ListForUser(ctx context.Context, userID string, dir repository.Direction) ([]db.SwapRequest, error) {
	defer r.s.lock(r.inTx)()
	var reqs []db.SwapRequest
	for _, req := range r.s.swaps {
		switch dir {
		case repository.DirectionSent:
			if req.RequesterID == userID {
				reqs = append(reqs, req)
			}
		case repository.DirectionReceived:
			if req.TargetOwnerID == userID {
				reqs = append(reqs, req)
			}
		default:
			if req.RequesterID == userID || req.TargetOwnerID == userID {
				reqs = append(reqs, req)
			}
		}
	}
	return reqs, nil
}

func (r *swapStore) HasPendingReferencing(ctx context.Context, slotIDs ...string) (bool, error) {
	defer r.s.lock(r.inTx)()
	for _, req := range r.s.swaps {
		if req.Status != db.SwapStatusPending {
			continue
		}
		for _, id := range slotIDs {
			if req.OfferedSlotID == id || req.TargetSlotID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *swapStore) TransitionStatus(ctx context.Context, id string, expected, next db.SwapStatus) error {
	defer r.s.lock(r.inTx)()
	req, ok := r.s.swaps[id]
	if !ok || req.Status != expected {
		return apperrors.Conflict(fmt.Sprintf("swap request %s is no longer %s", id, expected))
	}
	req.Status = next
	req.UpdatedAt = time.Now().UTC()
	r.s.swaps[id] = req
	return nil
}

func (r *swapStore) ListStalePending(ctx context.Context, cutoff time.Time) ([]db.SwapRequest, error) {
	defer r.s.lock(r.inTx)()
	var reqs []db.SwapRequest
	for _, req := range r.s.swaps {
		if req.Status != db.SwapStatusPending {
			continue
		}
		offered, offeredOK := r.s.slots[req.OfferedSlotID]
		target, targetOK := r.s.slots[req.TargetSlotID]
		if !offeredOK || !targetOK || offered.StartTime.Before(cutoff) || target.StartTime.Before(cutoff) {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

type userStore struct {
	s    *Store
	inTx bool
}

func (r *userStore) Create(ctx context.Context, user *db.User) error {
	defer r.s.lock(r.inTx)()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return apperrors.InvalidRequest("email already in use")
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userStore) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	defer r.s.lock(r.inTx)()
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userStore) GetByID(ctx context.Context, id string) (*db.User, error) {
	defer r.s.lock(r.inTx)()
	user, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("user %s not found", id))
	}
	return &user, nil
}
