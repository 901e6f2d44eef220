package progression

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatXP compacts xp for badges: 999, 1.2K, 3.4M.
func FormatXP(xp uint64) string {
	switch {
	case xp >= 1_000_000:
		return strconv.FormatFloat(float64(xp)/1_000_000, 'f', 1, 64) + "M"
	case xp >= 1_000:
		return strconv.FormatFloat(float64(xp)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatUint(xp, 10)
	}
}

// FormatXPFull renders xp with thousands separators.
func FormatXPFull(xp uint64) string {
	return humanize.Comma(int64(min(xp, uint64(1<<63-1))))
}

// FormatDuration renders seconds as "2d 5h", or "5h" below one day.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh", hours)
}

// FormatDate renders a unix timestamp as a US short date in UTC.
func FormatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("1/2/2006")
}

// FormatSince renders the time elapsed between unix and now, e.g. "3 days ago".
func FormatSince(unix int64, now time.Time) string {
	return humanize.RelTime(time.Unix(unix, 0), now, "ago", "from now")
}
