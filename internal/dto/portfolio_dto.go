package dto

import "time"

// PortfolioGroup holds the approved activities of a single type.
type PortfolioGroup struct {
	Type       string             `json:"type"`
	Label      string             `json:"label"`
	Activities []ActivityResponse `json:"activities"`
}

// PortfolioOwner is the profile header rendered above the portfolio.
type PortfolioOwner struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	RollNumber string `json:"roll_number,omitempty"`
}

// PortfolioResponse is the grouped projection of a student's approved activities.
type PortfolioResponse struct {
	Owner       PortfolioOwner   `json:"owner"`
	Groups      []PortfolioGroup `json:"groups"`
	Total       int              `json:"total"`
	Categories  int              `json:"categories"`
	GeneratedAt time.Time        `json:"generated_at"`
	CacheHit    bool             `json:"cache_hit"`
}
