package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a Go duration string, additionally accepting a
// whole-day suffix ("7d", "30d").
func ParseDuration(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(trimmed, "d"); ok {
		value, err := strconv.Atoi(days)
		if err == nil {
			if value < 0 {
				return 0, fmt.Errorf("negative duration: %s", trimmed)
			}
			return time.Duration(value) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(trimmed)
}

// DurationOrDefault parses a duration string, falling back to def when
// the string is empty or invalid.
func DurationOrDefault(s string, def time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return def
	}
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
