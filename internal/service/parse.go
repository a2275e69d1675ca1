package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"nexusboard/internal/domain"
)

// dueDateLayouts are tried in order. Layouts without a zone are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDueDate accepts an ISO calendar date or date-time. Blank input means
// no due date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Validationf("Invalid due date format. Use YYYY-MM-DD or ISO format.")
}

// IsISODate reports whether ParseDueDate would accept s.
func IsISODate(s string) bool {
	_, err := ParseDueDate(s)
	return err == nil
}

// ParseProgress coerces a percent to an integer in [0, 100]. Fractions are
// truncated and blank input is 0.
func ParseProgress(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.MinProgress, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.Validationf("Progress must be a number")
	}
	switch {
	case f < domain.MinProgress:
		return domain.MinProgress, nil
	case f > domain.MaxProgress:
		return domain.MaxProgress, nil
	}
	return int(f), nil
}
