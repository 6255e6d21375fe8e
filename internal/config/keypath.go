package config

import (
	"strconv"
	"strings"
)

// secretKeys are leaf names whose values the CLI never prints.
var secretKeys = map[string]bool{
	"token":      true,
	"signingKey": true,
}

// KeyPath addresses a value in the raw YAML tree, e.g. "server.port" or
// "auth.tokens.0.role". Numeric segments index into lists.
type KeyPath []string

// ParseKeyPath splits a dotted key. Empty keys and empty segments are
// rejected with a *ConfigError.
func ParseKeyPath(raw string) (KeyPath, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config key"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: "config key " + strconv.Quote(raw) + " has an empty segment"}
		}
	}
	return KeyPath(parts), nil
}

func (k KeyPath) String() string { return strings.Join(k, ".") }

// Secret reports whether the key holds a credential, or a subtree that
// contains one (auth.tokens).
func (k KeyPath) Secret() bool {
	if len(k) == 0 {
		return false
	}
	if secretKeys[k[len(k)-1]] {
		return true
	}
	return k[0] == "auth" && (len(k) == 1 || k[1] == "tokens")
}

// Lookup returns the value at k.
func (k KeyPath) Lookup(root map[string]any) (any, bool) {
	var cur any = root
	for _, seg := range k {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Set stores v at k, creating maps for missing or scalar intermediates.
// An index into an existing list replaces that element; list indices
// past the end are an error.
func (k KeyPath) Set(root map[string]any, v any) error {
	parent, err := k.parent(root, true)
	if err != nil {
		return err
	}
	last := k[len(k)-1]
	switch c := parent.(type) {
	case map[string]any:
		c[last] = v
	case []any:
		i, ok := index(c, last)
		if !ok {
			return &ConfigError{Message: "no element " + last + " in " + k[:len(k)-1].String()}
		}
		c[i] = v
	}
	return nil
}

// Unset removes the value at k and reports whether it existed. List
// elements are removed in place.
func (k KeyPath) Unset(root map[string]any) bool {
	parent, err := k.parent(root, false)
	if err != nil {
		return false
	}
	last := k[len(k)-1]
	switch c := parent.(type) {
	case map[string]any:
		if _, ok := c[last]; !ok {
			return false
		}
		delete(c, last)
		return true
	case []any:
		i, ok := index(c, last)
		if !ok {
			return false
		}
		// the list header lives in the grandparent, so rewrite it there
		grand, _ := k[:len(k)-1].parent(root, false)
		trimmed := append(c[:i:i], c[i+1:]...)
		switch g := grand.(type) {
		case map[string]any:
			g[k[len(k)-2]] = trimmed
		case []any:
			j, _ := index(g, k[len(k)-2])
			g[j] = trimmed
		}
		return true
	}
	return false
}

// parent walks to the container holding the last segment. With create,
// missing or scalar map entries become empty maps.
func (k KeyPath) parent(root map[string]any, create bool) (any, error) {
	if len(k) == 0 {
		return nil, &ConfigError{Message: "empty config key"}
	}
	var cur any = root
	for n, seg := range k[:len(k)-1] {
		next, ok := child(cur, seg)
		_, isMap := next.(map[string]any)
		_, isList := next.([]any)
		if ok && (isMap || isList) {
			cur = next
			continue
		}
		m, inMap := cur.(map[string]any)
		if !create || !inMap {
			return nil, &ConfigError{Message: "config key " + k[:n+1].String() + " is not a section"}
		}
		fresh := map[string]any{}
		m[seg] = fresh
		cur = fresh
	}
	return cur, nil
}

func child(node any, seg string) (any, bool) {
	switch c := node.(type) {
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case []any:
		i, ok := index(c, seg)
		if !ok {
			return nil, false
		}
		return c[i], true
	}
	return nil, false
}

func index(list []any, seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(list) {
		return 0, false
	}
	return i, true
}
