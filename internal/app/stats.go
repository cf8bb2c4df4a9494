package app

import (
	"fmt"
	"time"
)

// RunStats accumulates per-item outcomes for one batch run. It is owned by a
// single run and discarded afterwards; nothing persists between runs.
type RunStats struct {
	Total    int
	Success  int
	Error    int
	Skipped  int
	Duration time.Duration
}

// formatDuration renders a wall-clock duration for the run summary,
// e.g. "12.3s" or "2m 5s".
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	return fmt.Sprintf("%dm %ds", int(secs)/60, int(secs)%60)
}
