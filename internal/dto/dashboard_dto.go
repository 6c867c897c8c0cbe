package dto

import "time"

// StudentDashboardSummary counts a student's activities by status.
type StudentDashboardSummary struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

// StudentDashboardResponse is the overview shown to a student.
type StudentDashboardResponse struct {
	Summary     StudentDashboardSummary `json:"summary"`
	Recent      []ActivityResponse      `json:"recent"`
	GeneratedAt time.Time               `json:"generated_at"`
	CacheHit    bool                    `json:"cache_hit"`
}

// ReviewerDashboardSummary aggregates the review queue for faculty and admins.
type ReviewerDashboardSummary struct {
	TotalPending     int     `json:"total_pending"`
	TodaySubmissions int     `json:"today_submissions"`
	TotalStudents    int64   `json:"total_students"`
	ApprovalRate     float64 `json:"approval_rate"`
}

// ReviewerDashboardResponse is the overview shown to reviewers.
type ReviewerDashboardResponse struct {
	Summary     ReviewerDashboardSummary `json:"summary"`
	RecentQueue []ActivityResponse       `json:"recent_queue"`
	GeneratedAt time.Time                `json:"generated_at"`
	CacheHit    bool                     `json:"cache_hit"`
}
