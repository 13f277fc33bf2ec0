package attendance

import (
	"fmt"
	"strings"
	"time"
)

// StatusPolicy decides the stored status of a day at check-in time.
type StatusPolicy interface {
	StatusFor(checkIn time.Time) string
}

type alwaysPresentPolicy struct{}

func (alwaysPresentPolicy) StatusFor(time.Time) string {
	return StatusPresent
}

type lateAfterPolicy struct {
	hour, minute int
}

// StatusFor marks a check-in strictly after HH:MM local time as late.
func (p lateAfterPolicy) StatusFor(checkIn time.Time) string {
	local := checkIn.In(time.Local)
	if local.Hour() > p.hour || (local.Hour() == p.hour && local.Minute() > p.minute) {
		return StatusLate
	}
	return StatusPresent
}

// NewStatusPolicy returns the always-present policy for an empty threshold,
// otherwise a late-after-HH:MM policy.
func NewStatusPolicy(lateAfter string) (StatusPolicy, error) {
	lateAfter = strings.TrimSpace(lateAfter)
	if lateAfter == "" {
		return alwaysPresentPolicy{}, nil
	}

	t, err := time.Parse("15:04", lateAfter)
	if err != nil {
		return nil, fmt.Errorf("invalid late threshold %q: %w", lateAfter, err)
	}
	return lateAfterPolicy{hour: t.Hour(), minute: t.Minute()}, nil
}
