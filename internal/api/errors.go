package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	adminErrors "github.com/conduitllm/admin/internal/errors"
)

// Standard error codes
const (
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeValidation     = "VALIDATION_ERROR"
)

// Standard error messages
const (
	ErrMsgInternalServer = "An internal server error occurred"
	ErrMsgBadRequest     = "Invalid request format"
	ErrMsgValidation     = "Request validation failed"
)

// RespondServiceError maps an error returned by the cache management layer to
// the matching HTTP response. Unknown errors are logged and answered with 500.
func (s *Server) RespondServiceError(c *fiber.Ctx, message string, err error) error {
	var invalid *adminErrors.InvalidArgumentError
	if errors.As(err, &invalid) {
		return RespondValidationError(c, ErrMsgValidation, invalid.Error())
	}

	var notFound *adminErrors.NotFoundError
	if errors.As(err, &notFound) {
		return RespondNotFound(c, notFound.Resource, notFound.Error())
	}

	s.logger.ErrorContext(c.UserContext(), message, "path", c.Path(), "err", err)
	return RespondInternalError(c, message, err.Error())
}
