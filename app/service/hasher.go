package service

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a salted digest; hashing the same password twice yields
	// different digests.
	Hash(ctx context.Context, password string) (string, error)

	// Verify reports whether password matches digest. A malformed digest is
	// a mismatch, not an error. The error is non-nil only when ctx ends
	// before a hashing slot is available.
	Verify(ctx context.Context, password, digest string) (bool, error)
}

// BcryptHasher runs bcrypt with a bounded number of concurrent operations
// so a burst of logins cannot occupy every CPU.
type BcryptHasher struct {
	cost  int
	slots *semaphore.Weighted
}

func NewBcryptHasher(cost, concurrency int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &BcryptHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(concurrency)),
	}
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	start := time.Now()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	observeHash(hashOpHash, start)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

func (h *BcryptHasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	observeHash(hashOpVerify, start)

	return err == nil, nil
}
