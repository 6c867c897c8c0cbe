package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/observability"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
)

// ReviewNotifier informs the owner of an activity about a review outcome.
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, activity models.Activity) error
}

// ActivityService is the approval workflow engine.
type ActivityService interface {
	ValidateSubmission(ctx context.Context, identity *Identity, payload dto.ActivityCreateRequest) error
	Submit(ctx context.Context, identity *Identity, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	Review(ctx context.Context, identity *Identity, activityID string, payload dto.ActivityReviewRequest) (dto.ActivityResponse, error)
	Get(ctx context.Context, identity *Identity, activityID string) (dto.ActivityResponse, error)
	ListOwn(ctx context.Context, identity *Identity) ([]dto.ActivityResponse, error)
	ListPending(ctx context.Context, identity *Identity) ([]dto.ActivityResponse, error)
	ListApprovedFor(ctx context.Context, identity *Identity) ([]dto.ActivityResponse, error)
	Delete(ctx context.Context, identity *Identity, activityID string) error
}

type activityService struct {
	repo      repository.ActivityRepository
	uploads   repository.UploadRepository
	validator *validator.Validate
	audit     AuditRecorder
	notifier  ReviewNotifier
	cache     *ViewCache
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewActivityService constructs the workflow engine. audit, notifier and cache are optional.
// Without uploads every submission that names a proof is rejected.
func NewActivityService(repo repository.ActivityRepository, uploads repository.UploadRepository, validate *validator.Validate, audit AuditRecorder, notifier ReviewNotifier, cache *ViewCache, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		uploads:   uploads,
		validator: validate,
		audit:     audit,
		notifier:  notifier,
		cache:     cache,
		logger:    logger.With().Str("component", "activity_service").Logger(),
		tracer:    observability.Tracer("service/activity"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *activityService) ValidateSubmission(ctx context.Context, identity *Identity, payload dto.ActivityCreateRequest) error {
	if err := Authorize(identity, ActionSubmit); err != nil {
		return err
	}

	_, _, err := s.normalizeSubmission(payload)
	return err
}

func (s *activityService) Submit(ctx context.Context, identity *Identity, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := Authorize(identity, ActionSubmit); err != nil {
		return dto.ActivityResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "activity.submit", trace.WithAttributes(
		attribute.String("activity.owner_id", identity.UserID),
	))
	defer span.End()

	normalized, activityType, err := s.normalizeSubmission(payload)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.ActivityResponse{}, err
	}

	if err := s.verifyProof(ctx, identity.UserID, normalized.ProofURL); err != nil {
		span.SetStatus(codes.Error, "proof rejected")
		return dto.ActivityResponse{}, err
	}

	now := s.now()
	activity := models.Activity{
		OwnerID:           identity.UserID,
		Type:              activityType,
		Title:             normalized.Title,
		Organization:      normalized.Organization,
		Date:              normalized.Date,
		Duration:          normalized.Duration,
		CertificateNumber: normalized.CertificateNumber,
		Description:       normalized.Description,
		Skills:            ParseSkills(normalized.Skills),
		ProofURL:          normalized.ProofURL,
		Status:            models.ActivityStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, &activity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		s.logger.Error().Err(err).Str("owner_id", identity.UserID).Msg("failed to create activity")
		return dto.ActivityResponse{}, err
	}

	span.SetAttributes(attribute.String("activity.id", activity.ID), attribute.String("activity.type", string(activity.Type)))
	observability.Submissions().WithLabelValues(string(activity.Type)).Inc()

	s.recordAudit(ctx, identity, "activity.submitted", activity.ID, map[string]interface{}{
		"type":      string(activity.Type),
		"has_proof": activity.ProofURL != "",
	})
	s.cache.InvalidateOwner(ctx, activity.OwnerID)

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Review(ctx context.Context, identity *Identity, activityID string, payload dto.ActivityReviewRequest) (dto.ActivityResponse, error) {
	if err := Authorize(identity, ActionReview); err != nil {
		return dto.ActivityResponse{}, err
	}

	payload.Decision = strings.ToLower(strings.TrimSpace(payload.Decision))
	payload.Remarks = strings.TrimSpace(payload.Remarks)
	decision := models.ActivityStatus(payload.Decision)

	ctx, span := s.tracer.Start(ctx, "activity.review", trace.WithAttributes(
		attribute.String("activity.id", activityID),
		attribute.String("activity.decision", string(decision)),
		attribute.String("reviewer.id", identity.UserID),
	))
	defer span.End()

	activity, err := s.load(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		return dto.ActivityResponse{}, err
	}

	// A decided activity reports the transition error whatever the payload holds.
	if activity.IsReviewed() {
		span.SetStatus(codes.Error, "invalid transition")
		return dto.ActivityResponse{}, &TransitionError{ActivityID: activity.ID, Current: activity.Status}
	}

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.ActivityResponse{}, asValidationError(err)
	}
	if decision == models.ActivityStatusRejected && payload.Remarks == "" {
		span.SetStatus(codes.Error, "validation failed")
		return dto.ActivityResponse{}, newValidationError("remarks", "are required when rejecting an activity")
	}

	now := s.now()
	reviewer := identity.UserID
	remarks := payload.Remarks
	fields := map[string]interface{}{
		"status":      decision,
		"reviewed_by": reviewer,
		"reviewed_at": now,
		"remarks":     remarks,
		"updated_at":  now,
	}

	if err := s.repo.UpdateFields(ctx, activity.ID, models.ActivityStatusPending, fields); err != nil {
		span.RecordError(err)
		return dto.ActivityResponse{}, s.translateWriteError(ctx, activity.ID, err)
	}

	activity.Status = decision
	activity.ReviewedBy = &reviewer
	activity.ReviewedAt = &now
	activity.Remarks = &remarks
	activity.UpdatedAt = now

	observability.ReviewDecisions().WithLabelValues(string(decision)).Inc()
	span.SetStatus(codes.Ok, "reviewed")

	s.recordAudit(ctx, identity, "activity.reviewed", activity.ID, map[string]interface{}{
		"decision": string(decision),
		"owner_id": activity.OwnerID,
	})
	if s.notifier != nil {
		if err := s.notifier.NotifyReview(ctx, activity); err != nil {
			s.logger.Warn().Err(err).Str("activity_id", activity.ID).Msg("failed to notify activity owner")
		}
	}
	s.cache.InvalidateOwner(ctx, activity.OwnerID)

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Get(ctx context.Context, identity *Identity, activityID string) (dto.ActivityResponse, error) {
	if err := Authorize(identity, ActionView); err != nil {
		return dto.ActivityResponse{}, err
	}

	activity, err := s.load(ctx, activityID)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if activity.OwnerID != identity.UserID && !identity.Role.IsReviewer() {
		return dto.ActivityResponse{}, ErrUnauthorized
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) ListOwn(ctx context.Context, identity *Identity) ([]dto.ActivityResponse, error) {
	if err := Authorize(identity, ActionListOwn); err != nil {
		return nil, err
	}

	activities, err := s.repo.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	return dto.NewActivityResponseSlice(activities), nil
}

func (s *activityService) ListPending(ctx context.Context, identity *Identity) ([]dto.ActivityResponse, error) {
	if err := Authorize(identity, ActionListPending); err != nil {
		return nil, err
	}

	activities, err := s.repo.ListByStatus(ctx, models.ActivityStatusPending)
	if err != nil {
		return nil, err
	}

	return dto.NewActivityResponseSlice(activities), nil
}

func (s *activityService) ListApprovedFor(ctx context.Context, identity *Identity) ([]dto.ActivityResponse, error) {
	if err := Authorize(identity, ActionListApproved); err != nil {
		return nil, err
	}

	owner := identity.UserID
	approved := models.ActivityStatusApproved
	activities, err := s.repo.List(ctx, repository.ActivityFilter{OwnerID: &owner, Status: &approved})
	if err != nil {
		return nil, err
	}

	return dto.NewActivityResponseSlice(activities), nil
}

func (s *activityService) Delete(ctx context.Context, identity *Identity, activityID string) error {
	if err := Authorize(identity, ActionDelete); err != nil {
		return err
	}

	activity, err := s.load(ctx, activityID)
	if err != nil {
		return err
	}

	if activity.OwnerID != identity.UserID {
		return ErrUnauthorized
	}

	if activity.IsReviewed() {
		return &TransitionError{ActivityID: activity.ID, Current: activity.Status}
	}

	if err := s.repo.DeleteIfStatus(ctx, activity.ID, identity.UserID, models.ActivityStatusPending); err != nil {
		return s.translateWriteError(ctx, activity.ID, err)
	}

	s.recordAudit(ctx, identity, "activity.deleted", activity.ID, map[string]interface{}{
		"type": string(activity.Type),
	})
	s.cache.InvalidateOwner(ctx, activity.OwnerID)

	return nil
}

// verifyProof accepts an empty url, or one recorded as an upload by ownerID.
func (s *activityService) verifyProof(ctx context.Context, ownerID, proofURL string) error {
	if proofURL == "" {
		return nil
	}
	if s.uploads == nil {
		return newValidationError("proof_url", "must reference a proof uploaded by the caller")
	}

	if _, err := s.uploads.FindByURL(ctx, ownerID, proofURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("proof_url", "must reference a proof uploaded by the caller")
		}
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to look up proof upload")
		return err
	}
	return nil
}

func (s *activityService) normalizeSubmission(payload dto.ActivityCreateRequest) (dto.ActivityCreateRequest, models.ActivityType, error) {
	payload.Type = strings.TrimSpace(payload.Type)
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Organization = strings.TrimSpace(payload.Organization)
	payload.Date = strings.TrimSpace(payload.Date)
	payload.Duration = strings.TrimSpace(payload.Duration)
	payload.CertificateNumber = strings.TrimSpace(payload.CertificateNumber)
	payload.Description = strings.TrimSpace(payload.Description)
	payload.ProofURL = strings.TrimSpace(payload.ProofURL)

	if err := s.validator.Struct(payload); err != nil {
		return payload, "", asValidationError(err)
	}

	activityType, ok := models.ParseActivityType(payload.Type)
	if !ok {
		return payload, "", newValidationError("type", "must be one of: "+joinActivityTypes())
	}

	return payload, activityType, nil
}

func (s *activityService) load(ctx context.Context, activityID string) (models.Activity, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return models.Activity{}, ErrActivityNotFound
	}

	activity, err := s.repo.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Activity{}, ErrActivityNotFound
		}
		return models.Activity{}, err
	}

	return activity, nil
}

// translateWriteError maps a failed conditional write onto the workflow error kinds.
func (s *activityService) translateWriteError(ctx context.Context, activityID string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrActivityNotFound
	case errors.Is(err, repository.ErrStatusConflict):
		observability.TransitionConflicts().Inc()
		current := models.ActivityStatus("")
		if latest, loadErr := s.repo.GetByID(ctx, activityID); loadErr == nil {
			current = latest.Status
		}
		s.logger.Info().Str("activity_id", activityID).Str("status", string(current)).Msg("conditional write lost race")
		return &TransitionError{ActivityID: activityID, Current: current}
	default:
		s.logger.Error().Err(err).Str("activity_id", activityID).Msg("failed to write activity")
		return err
	}
}

func (s *activityService) recordAudit(ctx context.Context, identity *Identity, action, entityID string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}

	entry := AuditEntry{
		ActorID:    identity.UserID,
		ActorRole:  identity.Role,
		Action:     action,
		EntityType: "activity",
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if _, err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Str("activity_id", entityID).Msg("failed to record audit entry")
	}
}

// ParseSkills splits comma separated text into trimmed, non-empty skills.
func ParseSkills(raw string) []string {
	skills := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

func joinActivityTypes() string {
	names := make([]string, 0, len(models.ActivityTypes))
	for _, activityType := range models.ActivityTypes {
		names = append(names, string(activityType))
	}
	return strings.Join(names, " ")
}
