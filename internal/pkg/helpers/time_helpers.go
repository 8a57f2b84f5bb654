package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		// Global logger: this runs while configuration is still being assembled
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// PerMinute converts an events-per-minute budget into an interval between events.
// Non-positive budgets yield zero.
func PerMinute(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Minute / time.Duration(n)
}
