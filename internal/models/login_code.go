package models

import "time"

// LoginCode — one row per issued one-time code. Several live rows may
// exist for the same email; verification always targets the newest one.
type LoginCode struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	UserID      *string    `json:"user_id,omitempty"`
	Code        string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Used        bool       `json:"used"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// IsValid reports whether the code can still be accepted at the given
// moment. Expiry is strict: a check at exactly ExpiresAt counts as expired.
func (c *LoginCode) IsValid(now time.Time) bool {
	if c.Used {
		return false
	}
	if !now.Before(c.ExpiresAt) {
		return false
	}
	if c.LockedUntil != nil && now.Before(*c.LockedUntil) {
		return false
	}
	return true
}
