package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseIntQuery reads an integer query parameter, returning def when absent.
func ParseIntQuery(c *fiber.Ctx, param string, def int) (int, error) {
	value := c.Query(param)
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ValidationError{Message: "Invalid integer for parameter: " + param}
	}
	return n, nil
}

// ParseTimeParamFiber extracts time parameter from Fiber context
func ParseTimeParamFiber(c *fiber.Ctx, param string) (*time.Time, error) {
	value := c.Query(param)
	if value == "" {
		return nil, nil
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return &t, nil
		}
	}

	return nil, &ValidationError{Message: "Invalid time format for parameter: " + param}
}

// actor returns the user recorded as the author of a change.
func actor(c *fiber.Ctx) string {
	if user := c.Get(HeaderAdminUser); user != "" {
		return user
	}
	return defaultActor
}
