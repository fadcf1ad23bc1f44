package ratelimit

import "strings"

// Match returns the tier for a request: the matching tier with the longest
// path, or the default tier.
func (c *Config) Match(path, method string) Tier {
	best := -1
	for i, t := range c.Tiers {
		if t.Method != "" && t.Method != method {
			continue
		}
		if !underPath(path, t.Path) {
			continue
		}
		if best < 0 || len(t.Path) > len(c.Tiers[best].Path) {
			best = i
		}
	}
	if best < 0 {
		return c.Default
	}
	return c.Tiers[best]
}

// underPath reports whether path is prefix itself or a path below it.
func underPath(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
