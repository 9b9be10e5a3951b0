package aggregation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseWindowDays parses a window given as "90" or "90d".
func ParseWindowDays(s string) (int, error) {
	if s == "" {
		return 0, invalidQueryf("window must not be empty")
	}

	days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil {
		return 0, invalidQueryf("invalid window %q: %v", s, err)
	}
	if days <= 0 {
		return 0, invalidQueryf("window must be positive, got %q", s)
	}
	return days, nil
}

// WindowStart returns the inclusive lower bound of a days-long window ending at now.
func WindowStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

func validateDays(days int) error {
	if days <= 0 {
		return invalidQueryf("window_days must be positive, got %d", days)
	}
	return nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
