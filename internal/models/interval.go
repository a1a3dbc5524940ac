package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rickb777/period"
)

// intervalEpoch anchors ISO-8601 periods so calendar units resolve to a fixed length
var intervalEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseInterval normalizes a SMEAR sampling interval to whole minutes.
// It accepts a plain minute count ("60") or an ISO-8601 period ("PT1H", "P1D").
func ParseInterval(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultInterval, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return "", invalidInterval(raw, "interval must be positive")
		}
		return strconv.Itoa(n), nil
	}

	p, err := period.Parse(strings.ToUpper(raw))
	if err != nil {
		return "", invalidInterval(raw, "expected minutes or an ISO-8601 period such as PT30M")
	}
	end, ok := p.AddTo(intervalEpoch)
	if !ok {
		return "", invalidInterval(raw, "period cannot be resolved to a fixed length")
	}

	d := end.Sub(intervalEpoch)
	if d < time.Minute || d%time.Minute != 0 {
		return "", invalidInterval(raw, "interval must be a positive whole number of minutes")
	}
	return strconv.Itoa(int(d / time.Minute)), nil
}

func invalidInterval(raw, reason string) error {
	return &ValidationError{
		Field:   "interval",
		Value:   raw,
		Message: fmt.Sprintf("invalid interval %q: %s", raw, reason),
	}
}
