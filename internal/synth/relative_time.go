package synth

import (
	"fmt"
	"time"
)

// RelativeTime renders the elapsed time between ts (unix millis) and now
// using fixed thresholds: "just now" under a minute, minutes under an
// hour, hours under a day, days under a week, else the absolute local
// date.
func RelativeTime(ts, now uint64) string {
	if now < ts {
		now = ts
	}
	elapsed := time.Duration(now-ts) * time.Millisecond

	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed/time.Minute))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed/time.Hour))
	case elapsed < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(elapsed/(24*time.Hour)))
	default:
		return time.UnixMilli(int64(ts)).Local().Format("2006-01-02")
	}
}
