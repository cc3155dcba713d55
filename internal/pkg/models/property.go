package models

import (
	"time"
)

// Location is a property's geographical position.
type Location struct {
	Address   string  `json:"address" db:"address"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Property is an investment opportunity listing. RaisedAmount is incremented
// on completed investments; AIInsight is a non-authoritative cosmetic
// annotation merged in by callers.
type Property struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	ImageURL          string    `json:"image_url"`
	GoalAmount        float64   `json:"goal_amount"`
	RaisedAmount      float64   `json:"raised_amount"`
	Location          Location  `json:"location"`
	Type              string    `json:"type"`
	ExpectedROI       float64   `json:"expected_roi"`
	MinimumInvestment float64   `json:"minimum_investment"`
	AIInsight         string    `json:"ai_insight,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FundingProgress returns raised/goal as a 0..1 ratio. Values above 1 are
// possible: raised amounts are deliberately not clamped to the goal.
func (p Property) FundingProgress() float64 {
	if p.GoalAmount <= 0 {
		return 0
	}
	return p.RaisedAmount / p.GoalAmount
}
