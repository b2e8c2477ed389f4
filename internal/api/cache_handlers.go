package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/region"
)

const (
	defaultHistoryWindow = 24 * time.Hour
	defaultAuditLimit    = 50
)

// handleGetConfiguration handles GET /cache/config
func (s *Server) handleGetConfiguration(c *fiber.Ctx) error {
	snapshot, err := s.deps.Cache.GetConfiguration(c.UserContext())
	if err != nil {
		return s.RespondServiceError(c, "Failed to retrieve cache configuration", err)
	}
	return RespondSuccess(c, snapshot)
}

// handleUpdateConfiguration handles PUT /cache/config
func (s *Server) handleUpdateConfiguration(c *fiber.Ctx) error {
	var body UpdateConfigurationBody
	if err := c.BodyParser(&body); err != nil {
		return RespondBadRequest(c, ErrMsgBadRequest, err.Error())
	}

	err := s.deps.Cache.UpdateConfiguration(c.UserContext(), cachemgmt.UpdateConfigurationRequest{
		ApplyGlobally:       body.ApplyGlobally,
		RegionID:            body.RegionID,
		DefaultTTLSeconds:   body.DefaultTTLSeconds,
		EvictionPolicy:      body.EvictionPolicy,
		CompressionEnabled:  body.CompressionEnabled,
		ClearAffectedCaches: body.ClearAffectedCaches,
		ChangedBy:           actor(c),
	})
	if err != nil {
		return s.RespondServiceError(c, "Failed to update cache configuration", err)
	}
	return RespondMessage(c, "Cache configuration updated")
}

// handleUpdatePolicy handles PUT /cache/regions/:region/policy
func (s *Server) handleUpdatePolicy(c *fiber.Ctx) error {
	var body PolicyUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return RespondBadRequest(c, ErrMsgBadRequest, err.Error())
	}

	err := s.deps.Cache.UpdatePolicy(c.UserContext(), c.Params("region"), cachemgmt.PolicyUpdate{
		TTLSeconds: body.TTLSeconds,
		MaxSize:    body.MaxSize,
		Strategy:   body.Strategy,
		Reason:     body.Reason,
		ChangedBy:  actor(c),
	})
	if err != nil {
		return s.RespondServiceError(c, "Failed to update cache policy", err)
	}
	return RespondMessage(c, "Cache policy updated")
}

// handleGetStatistics handles GET /cache/statistics
func (s *Server) handleGetStatistics(c *fiber.Ctx) error {
	stats, err := s.deps.Cache.GetStatistics(c.UserContext(), c.Query("region"))
	if err != nil {
		return s.RespondServiceError(c, "Failed to retrieve cache statistics", err)
	}
	return RespondSuccess(c, stats)
}

// handleGetTopCachedItems handles GET /cache/statistics/top
func (s *Server) handleGetTopCachedItems(c *fiber.Ctx) error {
	items, err := s.deps.Cache.GetTopCachedItems(c.UserContext())
	if err != nil {
		return s.RespondServiceError(c, "Failed to retrieve top cached items", err)
	}
	return RespondSuccess(c, items)
}

// handleGetStatisticsHistory handles GET /cache/statistics/history
func (s *Server) handleGetStatisticsHistory(c *fiber.Ctx) error {
	limit, err := ParseIntQuery(c, "limit", 0)
	if err != nil {
		return RespondValidationError(c, ErrMsgValidation, err.Error())
	}

	since, err := ParseTimeParamFiber(c, "since")
	if err != nil {
		return RespondValidationError(c, ErrMsgValidation, err.Error())
	}
	from := time.Now().Add(-defaultHistoryWindow)
	if since != nil {
		from = *since
	}

	regionName := ""
	if id := c.Query("region"); id != "" {
		r, err := region.Parse(id)
		if err != nil {
			return s.RespondServiceError(c, "Invalid region", err)
		}
		regionName = r.String()
	}

	snapshots, err := s.deps.History.ListSnapshots(c.UserContext(), regionName, from, limit)
	if err != nil {
		return s.RespondServiceError(c, "Failed to retrieve statistics history", err)
	}
	return RespondSuccessWithMeta(c, snapshots, &APIMeta{
		Total: len(snapshots),
		Limit: limit,
		Count: len(snapshots),
	})
}

// handleClearCache handles DELETE /cache/:cacheId
func (s *Server) handleClearCache(c *fiber.Ctx) error {
	cacheID := c.Params("cacheId")
	if err := s.deps.Cache.ClearCache(c.UserContext(), cacheID); err != nil {
		return s.RespondServiceError(c, "Failed to clear cache", err)
	}
	if strings.EqualFold(strings.TrimSpace(cacheID), cachemgmt.AllCaches) {
		return RespondMessage(c, "All caches cleared")
	}
	return RespondMessage(c, "Cache "+cacheID+" cleared")
}

// handleGetEntries handles GET /cache/regions/:region/entries
func (s *Server) handleGetEntries(c *fiber.Ctx) error {
	skip, err := ParseIntQuery(c, "skip", 0)
	if err != nil {
		return RespondValidationError(c, ErrMsgValidation, err.Error())
	}
	take, err := ParseIntQuery(c, "take", cachemgmt.DefaultEntriesTake)
	if err != nil {
		return RespondValidationError(c, ErrMsgValidation, err.Error())
	}

	page, err := s.deps.Cache.GetEntries(c.UserContext(), c.Params("region"), skip, take)
	if err != nil {
		return s.RespondServiceError(c, "Failed to retrieve cache entries", err)
	}
	return RespondSuccessWithMeta(c, page, &APIMeta{
		Total:  int(page.TotalCount),
		Limit:  page.Take,
		Offset: page.Skip,
		Count:  len(page.Entries),
	})
}

// handleRefreshCache handles POST /cache/regions/:region/refresh. An empty
// key refreshes the whole region.
func (s *Server) handleRefreshCache(c *fiber.Ctx) error {
	var body RefreshBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return RespondBadRequest(c, ErrMsgBadRequest, err.Error())
		}
	}

	if err := s.deps.Cache.RefreshCache(c.UserContext(), c.Params("region"), body.Key); err != nil {
		return s.RespondServiceError(c, "Failed to refresh cache", err)
	}
	return RespondMessage(c, "Cache refreshed")
}

// handleGetAudit handles GET /cache/regions/:region/audit
func (s *Server) handleGetAudit(c *fiber.Ctx) error {
	limit, err := ParseIntQuery(c, "limit", defaultAuditLimit)
	if err != nil {
		return RespondValidationError(c, ErrMsgValidation, err.Error())
	}

	r, err := region.Parse(c.Params("region"))
	if err != nil {
		return s.RespondServiceError(c, "Invalid region", err)
	}

	entries, err := s.deps.Audit.ListAudit(c.UserContext(), r.String(), limit)
	if err != nil {
		return s.RespondServiceError(c, "Failed to retrieve configuration audit", err)
	}
	return RespondSuccessWithMeta(c, entries, &APIMeta{
		Total: len(entries),
		Limit: limit,
		Count: len(entries),
	})
}
