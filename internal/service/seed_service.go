package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
)

// ErrSeedDisabled indicates demo seeding is disabled by configuration.
var ErrSeedDisabled = errors.New("seeding is disabled")

// SeedResult reports how many demo rows were inserted.
type SeedResult struct {
	Users      int   `json:"users"`
	Activities int64 `json:"activities"`
}

// SeedService installs the demo directory and activities.
type SeedService interface {
	SeedDemo(ctx context.Context) (SeedResult, error)
}

type seedService struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	enabled    bool
	logger     zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, activities repository.ActivityRepository, enabled bool, logger zerolog.Logger) SeedService {
	return &seedService{
		users:      users,
		activities: activities,
		enabled:    enabled,
		logger:     logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedDemo is idempotent; existing rows are left untouched.
func (s *seedService) SeedDemo(ctx context.Context) (SeedResult, error) {
	if !s.enabled {
		return SeedResult{}, ErrSeedDisabled
	}

	var result SeedResult
	for _, user := range DemoUsers() {
		user := user
		if err := s.users.EnsureExists(ctx, &user); err != nil {
			return result, err
		}
		result.Users++
	}

	inserted, err := s.activities.InsertMissing(ctx, DemoActivities())
	if err != nil {
		return result, err
	}
	result.Activities = inserted

	s.logger.Info().Int("users", result.Users).Int64("activities", inserted).Msg("demo data seeded")
	return result, nil
}

// DemoUsers returns one user per role.
func DemoUsers() []models.User {
	return []models.User{
		{ID: "demo-student-1", Name: "Demo Student", Email: "student@demo.com", Role: models.RoleStudent, Department: "Computer Science", RollNumber: "CS2021001", Credits: 45},
		{ID: "demo-faculty-1", Name: "Dr. Demo Faculty", Email: "faculty@demo.com", Role: models.RoleFaculty, Department: "Computer Science"},
		{ID: "demo-admin-1", Name: "Demo Administrator", Email: "admin@demo.com", Role: models.RoleAdmin, Department: "Administration"},
	}
}

// DemoActivities returns the activities logged by the demo student.
func DemoActivities() []models.Activity {
	reviewer := "demo-faculty-1"
	approvedAt := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
	hackathonAt := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	empty := ""

	return []models.Activity{
		{
			ID:                "activity-1",
			OwnerID:           "demo-student-1",
			Type:              models.ActivityTypeCertification,
			Title:             "AWS Cloud Practitioner",
			Description:       "Completed AWS Cloud Practitioner certification course covering cloud concepts, security, and pricing.",
			Organization:      "Amazon Web Services",
			Date:              "2024-01-15",
			Duration:          "40 hours",
			CertificateNumber: "AWS-CP-2024-001",
			Skills:            datatypes.JSONSlice[string]{"AWS", "Cloud Computing", "DevOps"},
			ProofURL:          "https://example.com/demo-certificate.pdf",
			Status:            models.ActivityStatusApproved,
			Remarks:           &empty,
			ReviewedBy:        &reviewer,
			ReviewedAt:        &approvedAt,
			CreatedAt:         time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			UpdatedAt:         approvedAt,
		},
		{
			ID:                "activity-2",
			OwnerID:           "demo-student-1",
			Type:              models.ActivityTypeInternship,
			Title:             "Software Development Intern",
			Description:       "Worked on React.js and Node.js applications during summer internship.",
			Organization:      "Tech Solutions Pvt Ltd",
			Date:              "2024-05-01",
			Duration:          "3 months",
			CertificateNumber: "INTERN-2024-001",
			Skills:            datatypes.JSONSlice[string]{"React.js", "Node.js", "JavaScript", "Git"},
			ProofURL:          "https://example.com/internship-certificate.pdf",
			Status:            models.ActivityStatusPending,
			CreatedAt:         time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
			UpdatedAt:         time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:                "activity-3",
			OwnerID:           "demo-student-1",
			Type:              models.ActivityTypeCompetition,
			Title:             "Smart India Hackathon 2024",
			Description:       "Developed Smart Student Hub platform for education sector problem statement.",
			Organization:      "Government of India",
			Date:              "2024-09-01",
			Duration:          "36 hours",
			CertificateNumber: "SIH-2024-WINNER",
			Skills:            datatypes.JSONSlice[string]{"React.js", "Firebase", "UI/UX Design", "Problem Solving"},
			ProofURL:          "https://example.com/sih-certificate.pdf",
			Status:            models.ActivityStatusApproved,
			Remarks:           &empty,
			ReviewedBy:        &reviewer,
			ReviewedAt:        &hackathonAt,
			CreatedAt:         hackathonAt,
			UpdatedAt:         hackathonAt,
		},
	}
}
