package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/internal/reservations/repository"
	apperrors "restobook/pkg/errors"
	"restobook/pkg/logger"

	"github.com/google/uuid"
)

func phoneLockKey(phone, date string) string {
	return fmt.Sprintf("reservation_lock_phone_%s_%s", phone, date)
}

func tableLockKey(tableID int, date string) string {
	return fmt.Sprintf("reservation_lock_table_%d_%s", tableID, date)
}

// slotLocks collects the advisory locks taken by one operation so a single
// deferred call releases all of them. Every lock carries the operation's owner
// token.
type slotLocks struct {
	repo  repository.LockRepository
	ttl   time.Duration
	log   *logger.Logger
	owner string
	held  []string
}

func newSlotLocks(repo repository.LockRepository, ttl time.Duration, log *logger.Logger) *slotLocks {
	return &slotLocks{repo: repo, ttl: ttl, log: log, owner: uuid.NewString()}
}

func (l *slotLocks) phone(ctx context.Context, phone, date string) error {
	return l.acquire(ctx, phoneLockKey(phone, date))
}

// tables locks every table of the set on date, lowest id first.
func (l *slotLocks) tables(ctx context.Context, date string, ids []int) error {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	for _, id := range sorted {
		if err := l.acquire(ctx, tableLockKey(id, date)); err != nil {
			return err
		}
	}
	return nil
}

func (l *slotLocks) acquire(ctx context.Context, key string) error {
	if slices.Contains(l.held, key) {
		return nil
	}
	if err := l.repo.Acquire(ctx, key, l.owner, l.ttl); err != nil {
		if errors.Is(err, reservationserrors.ErrLockHeld) {
			return apperrors.Conflict("This reservation slot is currently being processed by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire reservation lock", err)
	}
	l.held = append(l.held, key)
	return nil
}

// release drops every held lock. It uses a fresh context so locks are freed even
// when the request context is already cancelled.
func (l *slotLocks) release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, key := range l.held {
		if err := l.repo.Release(ctx, key, l.owner); err != nil {
			l.log.Warn("Failed to release reservation lock", "lock_id", key, "error", err)
		}
	}
	l.held = nil
}
