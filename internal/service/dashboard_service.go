package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
)

const dashboardRecentLimit = 5

// DashboardService produces the student and reviewer overviews.
type DashboardService interface {
	Student(ctx context.Context, identity *Identity) (dto.StudentDashboardResponse, error)
	Reviewer(ctx context.Context, identity *Identity) (dto.ReviewerDashboardResponse, error)
}

type dashboardService struct {
	activities ActivityService
	repo       repository.ActivityRepository
	users      repository.UserRepository
	cache      *ViewCache
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(activities ActivityService, repo repository.ActivityRepository, users repository.UserRepository, cache *ViewCache, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		activities: activities,
		repo:       repo,
		users:      users,
		cache:      cache,
		logger:     logger.With().Str("component", "dashboard_service").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *dashboardService) Student(ctx context.Context, identity *Identity) (dto.StudentDashboardResponse, error) {
	if err := Authorize(identity, ActionStudentDashboard); err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	key := studentDashboardKey(identity.UserID)
	var cached dto.StudentDashboardResponse
	if s.cache.load(ctx, "dashboard_student", key, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	own, err := s.activities.ListOwn(ctx, identity)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	summary := dto.StudentDashboardSummary{Total: len(own)}
	for _, activity := range own {
		switch models.ActivityStatus(activity.Status) {
		case models.ActivityStatusApproved:
			summary.Approved++
		case models.ActivityStatusPending:
			summary.Pending++
		case models.ActivityStatusRejected:
			summary.Rejected++
		}
	}

	response := dto.StudentDashboardResponse{
		Summary:     summary,
		Recent:      head(own, dashboardRecentLimit),
		GeneratedAt: s.now(),
	}

	s.cache.store(ctx, key, response)

	return response, nil
}

func (s *dashboardService) Reviewer(ctx context.Context, identity *Identity) (dto.ReviewerDashboardResponse, error) {
	if err := Authorize(identity, ActionReviewerDashboard); err != nil {
		return dto.ReviewerDashboardResponse{}, err
	}

	var cached dto.ReviewerDashboardResponse
	if s.cache.load(ctx, "dashboard_reviewer", reviewerDashboardKey, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	pending, err := s.activities.ListPending(ctx, identity)
	if err != nil {
		return dto.ReviewerDashboardResponse{}, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return dto.ReviewerDashboardResponse{}, err
	}

	now := s.now()
	today := now.Format("2006-01-02")
	summary := dto.ReviewerDashboardSummary{
		TotalPending: len(pending),
		ApprovalRate: approvalRate(counts[models.ActivityStatusApproved], counts[models.ActivityStatusRejected]),
	}
	for _, activity := range pending {
		if activity.CreatedAt.UTC().Format("2006-01-02") == today {
			summary.TodaySubmissions++
		}
	}

	if s.users != nil {
		students, err := s.users.CountByRole(ctx, models.RoleStudent)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to count students")
		}
		summary.TotalStudents = students
	}

	response := dto.ReviewerDashboardResponse{
		Summary:     summary,
		RecentQueue: head(pending, dashboardRecentLimit),
		GeneratedAt: now,
	}

	s.cache.store(ctx, reviewerDashboardKey, response)

	return response, nil
}

// approvalRate is the percentage of reviewed activities that were approved, rounded to one decimal.
func approvalRate(approved, rejected int64) float64 {
	reviewed := approved + rejected
	if reviewed == 0 {
		return 0
	}
	return math.Round(float64(approved)/float64(reviewed)*1000) / 10
}

func head(items []dto.ActivityResponse, limit int) []dto.ActivityResponse {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}
