// Package domain defines the core types shared across the suite.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Wildcard matches any action or module in a granted capability.
const Wildcard = "*"

// Actions a capability can name.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Modules of the suite that carry permissions.
const (
	ModuleSales      = "sales"
	ModulePurchasing = "purchasing"
	ModuleProduction = "production"
	ModuleQuality    = "quality"
	ModuleResources  = "resources"
	ModuleInventory  = "inventory"
	ModuleAccounting = "accounting"
	ModuleSettings   = "settings"
	ModuleUsers      = "users"
	ModuleDocuments  = "documents"
)

var knownActions = map[string]bool{
	ActionView: true, ActionCreate: true, ActionUpdate: true, ActionDelete: true, Wildcard: true,
}

// Capability is a named permission such as "view:sales".
type Capability struct {
	Action string
	Module string
}

// Cap builds a capability from its two halves.
func Cap(action, module string) Capability {
	return Capability{Action: action, Module: module}
}

// ParseCapability parses "action:module".
func ParseCapability(s string) (Capability, error) {
	action, module, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || action == "" || module == "" {
		return Capability{}, fmt.Errorf("invalid capability %q: want action:module", s)
	}
	action = strings.ToLower(action)
	module = strings.ToLower(module)
	if !knownActions[action] {
		return Capability{}, fmt.Errorf("invalid capability %q: unknown action %q", s, action)
	}
	return Capability{Action: action, Module: module}, nil
}

// MustCapability is ParseCapability for literals; it panics on error.
func MustCapability(s string) Capability {
	c, err := ParseCapability(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Capability) String() string {
	return c.Action + ":" + c.Module
}

// Covers reports whether the granted capability c satisfies the required one.
func (c Capability) Covers(required Capability) bool {
	actionOK := c.Action == Wildcard || c.Action == required.Action
	moduleOK := c.Module == Wildcard || c.Module == required.Module
	return actionOK && moduleOK
}

// CapabilitySet is a set of granted capabilities.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from parsed capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// ParseCapabilitySet parses each entry; the first invalid one aborts.
func ParseCapabilitySet(raw []string) (CapabilitySet, error) {
	s := make(CapabilitySet, len(raw))
	for _, r := range raw {
		c, err := ParseCapability(r)
		if err != nil {
			return nil, err
		}
		s[c] = struct{}{}
	}
	return s, nil
}

// Has reports whether any granted capability covers required.
func (s CapabilitySet) Has(required Capability) bool {
	if _, ok := s[required]; ok {
		return true
	}
	for c := range s {
		if c.Covers(required) {
			return true
		}
	}
	return false
}

// Missing returns the first of required not covered by the set.
func (s CapabilitySet) Missing(required ...Capability) (Capability, bool) {
	for _, r := range required {
		if !s.Has(r) {
			return r, true
		}
	}
	return Capability{}, false
}

// Strings returns the set sorted for display.
func (s CapabilitySet) Strings() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c.String())
	}
	sort.Strings(out)
	return out
}
