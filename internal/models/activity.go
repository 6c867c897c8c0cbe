package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityStatus is the review state of an activity.
type ActivityStatus string

const (
	// ActivityStatusPending is the initial state of every submitted activity.
	ActivityStatusPending ActivityStatus = "pending"
	// ActivityStatusApproved is terminal and makes the activity part of the portfolio.
	ActivityStatusApproved ActivityStatus = "approved"
	// ActivityStatusRejected is terminal.
	ActivityStatusRejected ActivityStatus = "rejected"
)

// IsTerminal reports whether no further review is possible from this status.
func (s ActivityStatus) IsTerminal() bool {
	return s == ActivityStatusApproved || s == ActivityStatusRejected
}

// ActivityType enumerates the kinds of achievements a student can log.
type ActivityType string

const (
	ActivityTypeCertification ActivityType = "certification"
	ActivityTypeInternship    ActivityType = "internship"
	ActivityTypeCompetition   ActivityType = "competition"
	ActivityTypeConference    ActivityType = "conference"
	ActivityTypeVolunteering  ActivityType = "volunteering"
	ActivityTypeLeadership    ActivityType = "leadership"
	ActivityTypeProject       ActivityType = "project"
	ActivityTypePublication   ActivityType = "publication"
)

// ActivityTypes lists every known type in display order.
var ActivityTypes = []ActivityType{
	ActivityTypeCertification,
	ActivityTypeInternship,
	ActivityTypeCompetition,
	ActivityTypeConference,
	ActivityTypeVolunteering,
	ActivityTypeLeadership,
	ActivityTypeProject,
	ActivityTypePublication,
}

// ParseActivityType normalises raw input and reports whether it names a known type.
func ParseActivityType(raw string) (ActivityType, bool) {
	candidate := ActivityType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ActivityTypes {
		if candidate == known {
			return known, true
		}
	}
	return "", false
}

// Activity is a single achievement logged by a student and reviewed by faculty.
type Activity struct {
	ID                string                      `gorm:"primaryKey;size:36" json:"id"`
	OwnerID           string                      `gorm:"size:64;not null;index" json:"owner_id"`
	Type              ActivityType                `gorm:"size:32;not null" json:"type"`
	Title             string                      `gorm:"size:255;not null" json:"title"`
	Organization      string                      `gorm:"size:255;not null" json:"organization"`
	Date              string                      `gorm:"size:10;not null" json:"date"`
	Duration          string                      `gorm:"size:128" json:"duration"`
	CertificateNumber string                      `gorm:"size:128" json:"certificate_number"`
	Description       string                      `gorm:"type:text" json:"description"`
	Skills            datatypes.JSONSlice[string] `gorm:"type:json" json:"skills"`
	ProofURL          string                      `gorm:"size:512" json:"proof_url"`
	Status            ActivityStatus              `gorm:"size:16;not null;index" json:"status"`
	Remarks           *string                     `gorm:"type:text" json:"remarks"`
	ReviewedBy        *string                     `gorm:"size:64" json:"reviewed_by"`
	ReviewedAt        *time.Time                  `json:"reviewed_at"`
	CreatedAt         time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns an opaque identifier when none was provided.
func (a *Activity) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsReviewed reports whether a reviewer has already decided on the activity.
func (a Activity) IsReviewed() bool {
	return a.Status.IsTerminal()
}
