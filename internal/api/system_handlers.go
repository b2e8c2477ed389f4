package api

import (
	"github.com/gofiber/fiber/v2"
)

// handleGetSystemHealth handles GET /system/health
func (s *Server) handleGetSystemHealth(c *fiber.Ctx) error {
	health := s.checkSystemHealth(c.UserContext())

	if health.Status == "unhealthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"data":    health,
		})
	}
	return RespondSuccess(c, health)
}

// handleReloadConfig handles POST /system/config/reload
func (s *Server) handleReloadConfig(c *fiber.Ctx) error {
	if err := s.deps.ConfigManager.ReloadConfig(); err != nil {
		s.logger.ErrorContext(c.UserContext(), "Failed to reload configuration", "err", err)
		return RespondValidationError(c, "Failed to reload configuration", err.Error())
	}
	s.logger.InfoContext(c.UserContext(), "Configuration reloaded")
	return RespondMessage(c, "Configuration reloaded")
}
