package service

import (
	"github.com/noah-isme/smart-student-hub-api/internal/models"
)

// Identity is the resolved caller of a workflow operation.
type Identity struct {
	UserID     string
	Role       models.Role
	Department string
}

// Action names an entry point guarded by the capability table.
type Action string

const (
	ActionSubmit            Action = "activity.submit"
	ActionListOwn           Action = "activity.list_own"
	ActionListPending       Action = "activity.list_pending"
	ActionReview            Action = "activity.review"
	ActionListApproved      Action = "activity.list_approved"
	ActionView              Action = "activity.view"
	ActionDelete            Action = "activity.delete"
	ActionUploadProof       Action = "proof.upload"
	ActionStudentDashboard  Action = "dashboard.student"
	ActionReviewerDashboard Action = "dashboard.reviewer"
)

var capabilities = map[Action]map[models.Role]bool{
	ActionSubmit:            {models.RoleStudent: true},
	ActionListOwn:           {models.RoleStudent: true},
	ActionListPending:       {models.RoleFaculty: true, models.RoleAdmin: true},
	ActionReview:            {models.RoleFaculty: true, models.RoleAdmin: true},
	ActionListApproved:      {models.RoleStudent: true},
	ActionView:              {models.RoleStudent: true, models.RoleFaculty: true, models.RoleAdmin: true},
	ActionDelete:            {models.RoleStudent: true},
	ActionUploadProof:       {models.RoleStudent: true},
	ActionStudentDashboard:  {models.RoleStudent: true},
	ActionReviewerDashboard: {models.RoleFaculty: true, models.RoleAdmin: true},
}

// Authorize checks the capability table for the identity and action.
// A nil identity or empty user id is unauthenticated; unknown actions are denied.
func Authorize(identity *Identity, action Action) error {
	if identity == nil || identity.UserID == "" {
		return ErrUnauthenticated
	}

	if !Can(identity.Role, action) {
		return ErrUnauthorized
	}

	return nil
}

// Can reports whether the role holds the capability, without an identity check.
func Can(role models.Role, action Action) bool {
	return capabilities[action][role]
}
