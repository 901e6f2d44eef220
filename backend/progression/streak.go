package progression

import (
	"fmt"
	"strconv"
	"strings"
)

// Milestones is an ascending list of streak lengths, in days.
type Milestones []uint32

// DefaultMilestones are the streak lengths recognised out of the box.
var DefaultMilestones = Milestones{7, 30, 100, 365}

// IsMilestone reports whether streak is exactly one of the milestones.
func (m Milestones) IsMilestone(streak uint32) bool {
	for _, v := range m {
		if v == streak {
			return true
		}
	}
	return false
}

// Next returns the first milestone strictly greater than streak. The second
// result is false once streak has reached the last milestone.
func (m Milestones) Next(streak uint32) (uint32, bool) {
	for _, v := range m {
		if v > streak {
			return v, true
		}
	}
	return 0, false
}

// ParseMilestones parses a comma separated, strictly ascending list such as
// "7,30,100,365".
func ParseMilestones(s string) (Milestones, error) {
	var out Milestones
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid milestone %q: %w", part, err)
		}
		if len(out) > 0 && uint32(v) <= out[len(out)-1] {
			return nil, fmt.Errorf("milestones must be strictly ascending: %d after %d", v, out[len(out)-1])
		}
		out = append(out, uint32(v))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no milestones in %q", s)
	}
	return out, nil
}

func IsStreakMilestone(streak uint32) bool {
	return DefaultMilestones.IsMilestone(streak)
}

func NextStreakMilestone(streak uint32) (uint32, bool) {
	return DefaultMilestones.Next(streak)
}
