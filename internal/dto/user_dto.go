package dto

import "github.com/noah-isme/smart-student-hub-api/internal/models"

// ProfileResponse is the caller's directory entry.
type ProfileResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	RollNumber string `json:"roll_number,omitempty"`
	Credits    int    `json:"credits"`
}

// NewProfileResponse converts a user model into a DTO.
func NewProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Department: user.Department,
		RollNumber: user.RollNumber,
		Credits:    user.Credits,
	}
}
