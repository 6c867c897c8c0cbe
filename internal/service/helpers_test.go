package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

var (
	studentU1 = &Identity{UserID: "u1", Role: models.RoleStudent, Department: "Computer Science"}
	studentU2 = &Identity{UserID: "u2", Role: models.RoleStudent, Department: "Mechanical"}
	facultyF1 = &Identity{UserID: "f1", Role: models.RoleFaculty}
	facultyF2 = &Identity{UserID: "f2", Role: models.RoleFaculty}
	adminA1   = &Identity{UserID: "admin1", Role: models.RoleAdmin}
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// newTestDB opens an isolated in-memory database behind a single connection.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// steppingClock returns strictly increasing timestamps so created_at ordering is deterministic.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, entry AuditEntry) (dto.AuditLogResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return dto.AuditLogResponse{Action: entry.Action, EntityID: entry.EntityID}, nil
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.Action)
	}
	return out
}

type recordingNotifier struct {
	mu       sync.Mutex
	reviewed []models.Activity
}

func (r *recordingNotifier) NotifyReview(_ context.Context, activity models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviewed = append(r.reviewed, activity)
	return nil
}

type workflowFixture struct {
	db       *gorm.DB
	repo     repository.ActivityRepository
	uploads  repository.UploadRepository
	service  ActivityService
	audit    *recordingAudit
	notifier *recordingNotifier
}

func newWorkflowFixture(t *testing.T) workflowFixture {
	t.Helper()

	db := newTestDB(t)
	repo := repository.NewActivityRepository(db)
	audit := &recordingAudit{}
	notifier := &recordingNotifier{}

	uploads := repository.NewUploadRepository(db)
	svc := NewActivityService(repo, uploads, utils.NewValidator(), audit, notifier, nil, testLogger())
	svc.(*activityService).now = steppingClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	return workflowFixture{db: db, repo: repo, uploads: uploads, service: svc, audit: audit, notifier: notifier}
}

func certificationRequest(title string) dto.ActivityCreateRequest {
	return dto.ActivityCreateRequest{
		Type:         "certification",
		Title:        title,
		Organization: "Y",
		Date:         "2024-01-15",
		Skills:       "AWS, Docker",
	}
}
