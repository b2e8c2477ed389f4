package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/conduitllm/admin/internal/slogutil"
)

// loggingMiddleware tags the request context with the request id and logs
// every request once it completes
func (s *Server) loggingMiddleware(c *fiber.Ctx) error {
	start := time.Now()

	ctx := slogutil.With(c.UserContext(), "request_id", c.GetRespHeader(fiber.HeaderXRequestID))
	c.SetUserContext(ctx)

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	s.logger.DebugContext(ctx, "API request",
		"method", c.Method(),
		"path", c.Path(),
		"query", string(c.Request().URI().QueryString()),
		"status", status,
		"duration", time.Since(start),
		"remote_addr", c.IP(),
	)
	return err
}
