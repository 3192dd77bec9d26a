package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	CalorieGoal  sql.NullInt64
	CreatedAt    time.Time
}

type RefreshToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the persisted expiry has passed at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
