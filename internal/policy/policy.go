// Package policy supplies the named cache policies that apply to each region.
package policy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/config"
	adminErrors "github.com/conduitllm/admin/internal/errors"
	"github.com/conduitllm/admin/internal/region"
)

// Rule is a configured policy. A rule without regions applies to every region.
type Rule struct {
	Name        string
	Kind        string
	Regions     []string
	Enabled     bool
	Description string
}

type compiledRule struct {
	policy  cachemgmt.Policy
	regions map[region.Region]bool
}

func (c compiledRule) appliesTo(r region.Region) bool {
	return len(c.regions) == 0 || c.regions[r]
}

// Engine implements cachemgmt.PolicyEngine over a rule set that can be
// replaced at runtime.
type Engine struct {
	mu    sync.RWMutex
	rules []compiledRule
}

// New creates a policy engine. With no rules it serves DefaultRules.
func New(rules []Rule) (*Engine, error) {
	e := &Engine{}
	if err := e.SetRules(rules); err != nil {
		return nil, err
	}
	return e, nil
}

// SetRules validates and replaces the rule set. On error the current rules
// stay in place.
func (e *Engine) SetRules(rules []Rule) error {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	compiled := make([]compiledRule, 0, len(rules))
	names := make(map[string]bool, len(rules))

	for _, rule := range rules {
		if rule.Name == "" {
			return adminErrors.NewInvalidArgument("policy name", "", "must not be empty")
		}
		if names[rule.Name] {
			return adminErrors.NewInvalidArgument("policy name", rule.Name, "duplicate policy")
		}
		names[rule.Name] = true

		kind, err := ParseKind(rule.Kind)
		if err != nil {
			return err
		}

		c := compiledRule{
			policy: cachemgmt.Policy{
				Name:        rule.Name,
				Kind:        kind,
				Enabled:     rule.Enabled,
				Description: rule.Description,
			},
		}
		if len(rule.Regions) > 0 {
			c.regions = make(map[region.Region]bool, len(rule.Regions))
			for _, id := range rule.Regions {
				r, err := region.Parse(id)
				if err != nil {
					return fmt.Errorf("policy %s: %w", rule.Name, err)
				}
				c.regions[r] = true
			}
		}
		compiled = append(compiled, c)
	}

	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	return nil
}

// GetPoliciesForRegion implements cachemgmt.PolicyEngine. Policies are
// returned in rule order.
func (e *Engine) GetPoliciesForRegion(_ context.Context, r region.Region) ([]cachemgmt.Policy, error) {
	if !r.Valid() {
		return nil, adminErrors.NewInvalidArgument("region", r.String(), "unknown cache region")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	policies := []cachemgmt.Policy{}
	for _, rule := range e.rules {
		if rule.appliesTo(r) {
			policies = append(policies, rule.policy)
		}
	}
	return policies, nil
}

// ParseKind resolves a policy kind case-insensitively.
func ParseKind(kind string) (cachemgmt.PolicyKind, error) {
	for _, k := range []cachemgmt.PolicyKind{
		cachemgmt.PolicyKindTTL,
		cachemgmt.PolicyKindSize,
		cachemgmt.PolicyKindEviction,
		cachemgmt.PolicyKindCustom,
	} {
		if strings.EqualFold(kind, string(k)) {
			return k, nil
		}
	}
	return "", adminErrors.NewInvalidArgument("policy kind", kind, "expected TTL, Size, Eviction or Custom")
}

// DefaultRules returns the built-in policies: expiry, size limit and eviction
// for every region.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "default-ttl", Kind: string(cachemgmt.PolicyKindTTL), Enabled: true, Description: "Expire entries after the region's default TTL"},
		{Name: "default-size", Kind: string(cachemgmt.PolicyKindSize), Enabled: true, Description: "Bound the region to its maximum entry count"},
		{Name: "default-eviction", Kind: string(cachemgmt.PolicyKindEviction), Enabled: true, Description: "Evict entries according to the region's eviction policy"},
	}
}

// UpdatePolicies implements config.PolicyUpdater.
func (e *Engine) UpdatePolicies(policies []config.PolicyConfig) error {
	return e.SetRules(RulesFromConfig(policies))
}

// RulesFromConfig converts configured policies into rules.
func RulesFromConfig(policies []config.PolicyConfig) []Rule {
	rules := make([]Rule, 0, len(policies))
	for _, p := range policies {
		rules = append(rules, Rule{
			Name:        p.Name,
			Kind:        p.Kind,
			Regions:     p.Regions,
			Enabled:     p.PolicyEnabled(),
			Description: p.Description,
		})
	}
	return rules
}

var (
	_ cachemgmt.PolicyEngine = (*Engine)(nil)
	_ config.PolicyUpdater   = (*Engine)(nil)
)
