package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint answers with. Success mirrors the status class.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Message string      `json:"message"`
}

// Respond writes body with the given status. Success is derived from status and an empty
// message is replaced by "success" or "error".
func Respond(c *fiber.Ctx, status int, body APIResponse) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	body.Success = status < fiber.StatusBadRequest
	if body.Message == "" {
		body.Message = "success"
		if !body.Success {
			body.Message = "error"
		}
	}

	return c.Status(status).JSON(body)
}

// SendSuccess answers 200 with data.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return Respond(c, fiber.StatusOK, APIResponse{Data: data, Message: message})
}

// SendSuccessWithStatus answers with a 2xx status such as 201 Created.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	return Respond(c, status, APIResponse{Data: data, Message: message})
}

// OK answers 200 with list metadata like counts or pagination.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	return Respond(c, fiber.StatusOK, APIResponse{Data: data, Meta: meta, Message: message})
}

// SendError answers with an error status and no details.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail answers with an error status and machine readable details, e.g. the offending field.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	return Respond(c, status, APIResponse{Details: details, Message: message})
}
