package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
)

// PortfolioService renders a student's approved activities as a portfolio.
type PortfolioService interface {
	Get(ctx context.Context, identity *Identity) (dto.PortfolioResponse, error)
}

type portfolioService struct {
	activities ActivityService
	users      repository.UserRepository
	cache      *ViewCache
	logger     zerolog.Logger
	now        func() time.Time
}

// NewPortfolioService builds the portfolio composer backed by the workflow engine.
func NewPortfolioService(activities ActivityService, users repository.UserRepository, cache *ViewCache, logger zerolog.Logger) PortfolioService {
	return &portfolioService{
		activities: activities,
		users:      users,
		cache:      cache,
		logger:     logger.With().Str("component", "portfolio_service").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *portfolioService) Get(ctx context.Context, identity *Identity) (dto.PortfolioResponse, error) {
	if err := Authorize(identity, ActionListApproved); err != nil {
		return dto.PortfolioResponse{}, err
	}

	key := portfolioKey(identity.UserID)
	var cached dto.PortfolioResponse
	if s.cache.load(ctx, "portfolio", key, &cached) {
		cached.CacheHit = true
		return cached, nil
	}

	approved, err := s.activities.ListApprovedFor(ctx, identity)
	if err != nil {
		return dto.PortfolioResponse{}, err
	}

	response := ComposePortfolio(approved)
	response.Owner = s.owner(ctx, identity)
	response.GeneratedAt = s.now()

	s.cache.store(ctx, key, response)

	return response, nil
}

func (s *portfolioService) owner(ctx context.Context, identity *Identity) dto.PortfolioOwner {
	owner := dto.PortfolioOwner{ID: identity.UserID, Department: identity.Department}
	if s.users == nil {
		return owner
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("user_id", identity.UserID).Msg("failed to load portfolio owner")
		}
		return owner
	}

	owner.Name = user.Name
	owner.Email = user.Email
	owner.Department = user.Department
	owner.RollNumber = user.RollNumber
	return owner
}

// ComposePortfolio groups activities by type in display order, keeping input order within a group.
func ComposePortfolio(activities []dto.ActivityResponse) dto.PortfolioResponse {
	buckets := make(map[string][]dto.ActivityResponse)
	for _, activity := range activities {
		buckets[activity.Type] = append(buckets[activity.Type], activity)
	}

	groups := make([]dto.PortfolioGroup, 0, len(buckets))
	for _, activityType := range models.ActivityTypes {
		items, ok := buckets[string(activityType)]
		if !ok {
			continue
		}
		groups = append(groups, dto.PortfolioGroup{
			Type:       string(activityType),
			Label:      dto.ActivityTypeLabel(activityType),
			Activities: items,
		})
	}

	return dto.PortfolioResponse{
		Groups:     groups,
		Total:      len(activities),
		Categories: len(groups),
	}
}
