package dto

import (
	"time"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
)

// ActivityCreateRequest is the payload a student submits for a new activity.
type ActivityCreateRequest struct {
	Type              string `json:"type" form:"type" validate:"required"`
	Title             string `json:"title" form:"title" validate:"required,max=255"`
	Organization      string `json:"organization" form:"organization" validate:"required,max=255"`
	Date              string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Duration          string `json:"duration" form:"duration" validate:"max=128"`
	CertificateNumber string `json:"certificate_number" form:"certificate_number" validate:"max=128"`
	Description       string `json:"description" form:"description" validate:"max=5000"`
	Skills            string `json:"skills" form:"skills"`
	ProofURL          string `json:"proof_url" form:"proof_url" validate:"omitempty,url,max=512"`
}

// ActivityReviewRequest carries a reviewer decision.
type ActivityReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Remarks  string `json:"remarks" validate:"max=2000"`
}

// ActivityResponse is the presented shape of an activity.
type ActivityResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	Type              string     `json:"type"`
	TypeLabel         string     `json:"type_label"`
	Title             string     `json:"title"`
	Organization      string     `json:"organization"`
	Date              string     `json:"date"`
	Duration          string     `json:"duration,omitempty"`
	CertificateNumber string     `json:"certificate_number,omitempty"`
	Description       string     `json:"description,omitempty"`
	Skills            []string   `json:"skills"`
	ProofURL          string     `json:"proof_url,omitempty"`
	Status            string     `json:"status"`
	Remarks           *string    `json:"remarks"`
	ReviewedBy        *string    `json:"reviewed_by"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

var activityTypeLabels = map[models.ActivityType]string{
	models.ActivityTypeCertification: "Certification",
	models.ActivityTypeInternship:    "Internship",
	models.ActivityTypeCompetition:   "Competition",
	models.ActivityTypeConference:    "Conference/Workshop",
	models.ActivityTypeVolunteering:  "Volunteering",
	models.ActivityTypeLeadership:    "Leadership",
	models.ActivityTypeProject:       "Project",
	models.ActivityTypePublication:   "Publication",
}

// ActivityTypeLabel returns the human readable label for an activity type.
func ActivityTypeLabel(activityType models.ActivityType) string {
	if label, ok := activityTypeLabels[activityType]; ok {
		return label
	}
	return string(activityType)
}

// NewActivityResponse converts an Activity model into a DTO.
func NewActivityResponse(model models.Activity) ActivityResponse {
	skills := make([]string, 0, len(model.Skills))
	skills = append(skills, model.Skills...)

	return ActivityResponse{
		ID:                model.ID,
		OwnerID:           model.OwnerID,
		Type:              string(model.Type),
		TypeLabel:         ActivityTypeLabel(model.Type),
		Title:             model.Title,
		Organization:      model.Organization,
		Date:              model.Date,
		Duration:          model.Duration,
		CertificateNumber: model.CertificateNumber,
		Description:       model.Description,
		Skills:            skills,
		ProofURL:          model.ProofURL,
		Status:            string(model.Status),
		Remarks:           model.Remarks,
		ReviewedBy:        model.ReviewedBy,
		ReviewedAt:        model.ReviewedAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// NewActivityResponseSlice converts activity models into DTOs.
func NewActivityResponseSlice(items []models.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewActivityResponse(item))
	}
	return responses
}
