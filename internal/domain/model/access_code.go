package model

import (
	"time"

	"agro-advisory/internal/domain"
)

// AccessCode is a shared promotional code with a global redemption cap.
// There is one row per code value; Uses only ever increases.
type AccessCode struct {
	Code     string
	Uses     int
	MaxUses  int
	LastUsed *time.Time
}

const DefaultMaxUses = 50

// NewAccessCode constructs a fresh, unused code row.
func NewAccessCode(code string, maxUses int) (*AccessCode, error) {
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	if maxUses <= 0 {
		maxUses = DefaultMaxUses
	}
	return &AccessCode{Code: code, MaxUses: maxUses}, nil
}

// Exhausted reports whether the cap has been reached.
func (c *AccessCode) Exhausted() bool { return c.Uses >= c.MaxUses }

// AccessCodeUse is the per-consumer audit record. It is keyed by
// (code, farmer uid) so a repeated redemption overwrites rather than
// double-counts; the shared counter is guarded separately.
type AccessCodeUse struct {
	Code      string
	FarmerUID string
	Email     string
	UsedAt    time.Time
}
