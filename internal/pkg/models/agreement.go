package models

import (
	"time"
)

// InvestorAgreement records acceptance of the legal terms. Created once per
// user on first accept and immutable afterward.
type InvestorAgreement struct {
	ID         string    `json:"id" db:"id"`
	Version    string    `json:"version" db:"version"`
	Content    string    `json:"content" db:"content"`
	Accepted   bool      `json:"accepted" db:"accepted"`
	AcceptedAt time.Time `json:"accepted_at" db:"accepted_at"`
}
