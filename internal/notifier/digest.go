// Package notifier publishes per-cycle alert digests to interested
// subscribers.
package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// Digest is the wire payload published after a cycle that produced
// noteworthy alerts.
type Digest struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Headline    string         `json:"headline"`
	Alerts      []models.Alert `json:"alerts"`
}

// BuildDigest summarizes a cycle's alerts. Only cycles containing at
// least one alert at or above warning produce a digest; routine cycles
// return nil.
func BuildDigest(alerts []models.Alert, at time.Time) *Digest {
	noteworthy := false
	counts := make(map[models.Severity]int)
	for _, a := range alerts {
		counts[a.Severity]++
		if a.Severity.AtLeast(models.SeverityWarning) {
			noteworthy = true
		}
	}
	if !noteworthy {
		return nil
	}

	var parts []string
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityWarning, models.SeveritySuccess, models.SeverityInfo} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}

	return &Digest{
		GeneratedAt: at,
		Headline:    fmt.Sprintf("Market pulse: %s", strings.Join(parts, ", ")),
		Alerts:      alerts,
	}
}
