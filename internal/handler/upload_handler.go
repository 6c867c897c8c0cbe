package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// UploadHandler accepts proof documents ahead of a submission.
type UploadHandler struct {
	service service.ProofService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.ProofService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires upload routes. Extra handlers run before the upload.
func (h *UploadHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	handlers := append([]fiber.Handler{}, guards...)
	handlers = append(handlers, middleware.WithAuth(h.upload, middleware.AuthOptions{Action: service.ActionUploadProof}))
	router.Post("/proof", handlers...)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile(proofFormField)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "proof is required", service.ValidationError{Field: proofFormField, Reason: "is required"})
	}

	result, err := h.service.Upload(requestContext(c), middleware.IdentityFromContext(c), file)
	if err != nil {
		return handleError(c, h.logger, err, "upload failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "upload successful", result)
}
