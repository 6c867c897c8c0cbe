package handler

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

const proofFormField = "proof"

// ActivityHandler exposes the approval workflow over HTTP.
type ActivityHandler struct {
	activities service.ActivityService
	proofs     service.ProofService
	logger     zerolog.Logger
	submitMW   []fiber.Handler
}

// NewActivityHandler constructs an activity handler. proofs may be nil when no blob store is configured.
func NewActivityHandler(activities service.ActivityService, proofs service.ProofService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		proofs:     proofs,
		logger:     logger.With().Str("component", "activity_handler").Logger(),
	}
}

// WithSubmitMiddleware runs the handlers before submission, typically a rate limiter.
func (h *ActivityHandler) WithSubmitMiddleware(handlers ...fiber.Handler) *ActivityHandler {
	h.submitMW = append(h.submitMW, handlers...)
	return h
}

// Register binds activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	submit := append([]fiber.Handler{}, h.submitMW...)
	submit = append(submit, middleware.WithAuth(h.submit, middleware.AuthOptions{Action: service.ActionSubmit}))

	router.Post("/", submit...)
	router.Get("/mine", h.listOwn)
	router.Get("/pending", h.listPending)
	router.Get("/approved", h.listApproved)
	router.Get("/:id", h.get)
	router.Patch("/:id/review", h.review)
	router.Delete("/:id", h.delete)
}

func (h *ActivityHandler) submit(c *fiber.Ctx) error {
	identity := middleware.IdentityFromContext(c)

	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	ctx := requestContext(c)

	file, err := proofFromRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid proof file")
	}

	if file != nil {
		if h.proofs == nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "proof uploads are not configured")
		}
		if err := h.activities.ValidateSubmission(ctx, identity, payload); err != nil {
			return handleError(c, h.logger, err, "failed to submit activity")
		}

		uploaded, err := h.proofs.Upload(ctx, identity, file)
		if err != nil {
			return handleError(c, h.logger, err, "failed to upload proof")
		}
		payload.ProofURL = uploaded.URL
	}

	activity, err := h.activities.Submit(ctx, identity, payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to submit activity")
	}

	requestLogger(h.logger, c).Info().
		Str("activity_id", activity.ID).
		Str("type", activity.Type).
		Bool("has_proof", activity.ProofURL != "").
		Msg("activity submitted")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity submitted", activity)
}

func (h *ActivityHandler) listOwn(c *fiber.Ctx) error {
	items, err := h.activities.ListOwn(requestContext(c), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to list activities")
	}

	return utils.OK(c, items, "activities", fiber.Map{"count": len(items)})
}

func (h *ActivityHandler) listPending(c *fiber.Ctx) error {
	items, err := h.activities.ListPending(requestContext(c), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to list pending activities")
	}

	return utils.OK(c, items, "pending activities", fiber.Map{"count": len(items)})
}

func (h *ActivityHandler) listApproved(c *fiber.Ctx) error {
	items, err := h.activities.ListApprovedFor(requestContext(c), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to list approved activities")
	}

	return utils.OK(c, items, "approved activities", fiber.Map{"count": len(items)})
}

func (h *ActivityHandler) get(c *fiber.Ctx) error {
	activity, err := h.activities.Get(requestContext(c), middleware.IdentityFromContext(c), c.Params("id"))
	if err != nil {
		return handleError(c, h.logger, err, "failed to load activity")
	}

	return utils.SendSuccess(c, "activity", activity)
}

func (h *ActivityHandler) review(c *fiber.Ctx) error {
	var payload dto.ActivityReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	activity, err := h.activities.Review(requestContext(c), middleware.IdentityFromContext(c), c.Params("id"), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to review activity")
	}

	requestLogger(h.logger, c).Info().
		Str("activity_id", activity.ID).
		Str("decision", activity.Status).
		Msg("activity reviewed")

	return utils.SendSuccess(c, "activity reviewed", activity)
}

func (h *ActivityHandler) delete(c *fiber.Ctx) error {
	if err := h.activities.Delete(requestContext(c), middleware.IdentityFromContext(c), c.Params("id")); err != nil {
		return handleError(c, h.logger, err, "failed to delete activity")
	}

	return utils.SendSuccess(c, "activity deleted", nil)
}

// proofFromRequest returns the optional proof part of a multipart submission.
func proofFromRequest(c *fiber.Ctx) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	files := form.File[proofFormField]
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}
