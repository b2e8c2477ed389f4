// Package region defines the fixed catalog of logical cache partitions used by
// the gateway. The catalog is a compile-time table: adding a region requires a
// code change.
package region

import (
	"strings"

	adminErrors "github.com/conduitllm/admin/internal/errors"
)

// Region identifies a logical cache partition.
type Region int

const (
	VirtualKeys Region = iota
	RateLimits
	ProviderHealth
	ModelMetadata
	AuthTokens
	IPFilters
	AsyncTasks
	ProviderResponses
	Embeddings
	GlobalSettings
	ProviderCredentials
	ModelCosts
	AudioStreams
	Monitoring
)

type descriptor struct {
	id          string
	displayName string
	keyPattern  string
	sensitive   bool
}

// catalog is indexed by Region; its order is the declaration order above.
var catalog = [...]descriptor{
	VirtualKeys:         {id: "VirtualKeys", displayName: "Virtual Keys", keyPattern: "vkey:*"},
	RateLimits:          {id: "RateLimits", displayName: "Rate Limits", keyPattern: "ratelimit:*"},
	ProviderHealth:      {id: "ProviderHealth", displayName: "Provider Health", keyPattern: "health:*"},
	ModelMetadata:       {id: "ModelMetadata", displayName: "Model Metadata", keyPattern: "model:*"},
	AuthTokens:          {id: "AuthTokens", displayName: "Authentication Tokens", keyPattern: "auth:*", sensitive: true},
	IPFilters:           {id: "IpFilters", displayName: "IP Filters", keyPattern: "ipfilter:*"},
	AsyncTasks:          {id: "AsyncTasks", displayName: "Async Tasks", keyPattern: "task:*"},
	ProviderResponses:   {id: "ProviderResponses", displayName: "Provider Responses", keyPattern: "response:*"},
	Embeddings:          {id: "Embeddings", displayName: "Embeddings", keyPattern: "embedding:*"},
	GlobalSettings:      {id: "GlobalSettings", displayName: "Global Settings", keyPattern: "setting:*"},
	ProviderCredentials: {id: "ProviderCredentials", displayName: "Provider Credentials", keyPattern: "credential:*", sensitive: true},
	ModelCosts:          {id: "ModelCosts", displayName: "Model Costs", keyPattern: "cost:*"},
	AudioStreams:        {id: "AudioStreams", displayName: "Audio Streams", keyPattern: "audio:*"},
	Monitoring:          {id: "Monitoring", displayName: "Monitoring", keyPattern: "monitor:*"},
}

// lookup maps a normalized identifier to its region.
var lookup = func() map[string]Region {
	m := make(map[string]Region, len(catalog))
	for i, d := range catalog {
		m[normalize(d.id)] = Region(i)
	}
	return m
}()

// All returns every region in catalog order.
func All() []Region {
	regions := make([]Region, len(catalog))
	for i := range catalog {
		regions[i] = Region(i)
	}
	return regions
}

// Valid reports whether r is part of the catalog.
func (r Region) Valid() bool {
	return r >= 0 && int(r) < len(catalog)
}

// String returns the canonical identifier, which is also the key under which
// region configuration is persisted.
func (r Region) String() string {
	if !r.Valid() {
		return "Unknown"
	}
	return catalog[r].id
}

// DisplayName returns the human-facing name of the region.
func (r Region) DisplayName() string {
	if !r.Valid() {
		return "Unknown"
	}
	return catalog[r].displayName
}

// KeyPattern returns the wildcard key pattern stored in the region.
func (r Region) KeyPattern() string {
	if !r.Valid() {
		return "*"
	}
	return catalog[r].keyPattern
}

// Sensitive reports whether the region holds tokens or credentials. Entries of
// sensitive regions are never exposed through entry browsing.
func (r Region) Sensitive() bool {
	return r.Valid() && catalog[r].sensitive
}

// Lookup resolves an identifier case-insensitively, ignoring '_', '-' and
// spaces, so "VirtualKeys", "virtual_keys" and "virtual-keys" all match.
func Lookup(id string) (Region, bool) {
	r, ok := lookup[normalize(id)]
	return r, ok
}

// Parse resolves an identifier and returns an InvalidArgumentError naming it
// when it is not part of the catalog.
func Parse(id string) (Region, error) {
	r, ok := Lookup(id)
	if !ok {
		return 0, adminErrors.NewInvalidArgument("region", id, "unknown cache region")
	}
	return r, nil
}

func normalize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(id)))
}
