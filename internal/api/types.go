package api

import (
	"time"
)

// HeaderAdminUser carries the name recorded as the author of a change.
const HeaderAdminUser = "X-Admin-User"

const defaultActor = "admin"

// APIMeta represents metadata for list responses
type APIMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// UpdateConfigurationBody is the body of PUT /cache/config.
type UpdateConfigurationBody struct {
	ApplyGlobally       bool    `json:"apply_globally"`
	RegionID            string  `json:"region_id"`
	DefaultTTLSeconds   *int64  `json:"default_ttl_seconds"`
	EvictionPolicy      *string `json:"eviction_policy"`
	CompressionEnabled  *bool   `json:"compression_enabled"`
	ClearAffectedCaches bool    `json:"clear_affected_caches"`
}

// PolicyUpdateBody is the body of PUT /cache/regions/:region/policy.
type PolicyUpdateBody struct {
	TTLSeconds *int64  `json:"ttl_seconds"`
	MaxSize    *int64  `json:"max_size"`
	Strategy   *string `json:"strategy"`
	Reason     string  `json:"reason"`
}

// RefreshBody is the body of POST /cache/regions/:region/refresh.
type RefreshBody struct {
	Key string `json:"key"`
}

// SystemHealthResponse reports the health of the admin service.
type SystemHealthResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
	GoVersion  string                     `json:"go_version"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth is the health of one dependency.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
