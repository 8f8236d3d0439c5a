package integrity

import (
	"crowdfundx/domain"
	"crowdfundx/domain/funding"
	"strings"
	"time"
)

const (
	HealthActive  = "Active"
	HealthAtRisk  = "At Risk"
	HealthStalled = "Stalled"

	TransparencyNoData     = "No Data"
	TransparencySuspicious = "Suspicious (None reported)"
	TransparencyHealthy    = "Healthy Transparency"
	TransparencyStruggling = "Struggling but Honest"

	StabilityStable   = "Stable"
	StabilityModerate = "Moderate"
	StabilityVolatile = "Volatile"

	AllocationFully     = "Fully Allocated"
	AllocationPartially = "Partially Allocated"
	AllocationPoorly    = "Poorly Allocated"
)

// Report carries the derived metrics. They are recomputed on every read and
// never feed back into stored state.
type Report struct {
	DaysSinceLastUpdate int    `json:"daysSinceLastUpdate"`
	HealthStatus        string `json:"healthStatus"`

	MilestoneProgressRatio float64 `json:"milestoneProgressRatio"`

	TransparencyRatio float64 `json:"transparencyRatio"`
	TransparencyLabel string  `json:"transparencyLabel"`

	StabilityClass string `json:"stabilityClass"`

	AllocationCoverage float64 `json:"allocationCoverage"`
	AllocationStatus   string  `json:"allocationStatus"`

	ConsistencyScore int `json:"consistencyScore"`
}

// Evaluate scores the aggregate as of now.
func Evaluate(d *domain.ProjectDetail, now time.Time) Report {
	report := Report{}

	report.DaysSinceLastUpdate = int(now.Sub(time.Time(d.LastUpdate)).Hours() / 24)
	switch {
	case report.DaysSinceLastUpdate > 21:
		report.HealthStatus = HealthStalled
	case report.DaysSinceLastUpdate > 8:
		report.HealthStatus = HealthAtRisk
	default:
		report.HealthStatus = HealthActive
	}

	if len(d.Milestones) > 0 {
		completed := 0
		for _, m := range d.Milestones {
			if m.Status == domain.MilestoneCompleted {
				completed++
			}
		}
		report.MilestoneProgressRatio = float64(completed) / float64(len(d.Milestones))
	}

	report.TransparencyRatio, report.TransparencyLabel = transparency(d.Updates)
	report.StabilityClass = stability(d.AuditHistory, len(d.Milestones))

	report.AllocationCoverage = funding.AllocationCoverage(d.FundingRaised, d.FinancialBreakdown)
	switch {
	case report.AllocationCoverage >= 90:
		report.AllocationStatus = AllocationFully
	case report.AllocationCoverage >= 40:
		report.AllocationStatus = AllocationPartially
	default:
		report.AllocationStatus = AllocationPoorly
	}

	report.ConsistencyScore = consistency(len(d.Updates), d.Duration)
	return report
}

// transparency rates how often the architect reports blockers. A project that
// posts updates but never admits a single blocker reads as suspicious, not
// healthy.
func transparency(updates []domain.ProjectUpdate) (float64, string) {
	if len(updates) == 0 {
		return 0, TransparencyNoData
	}
	blocked := 0
	for _, u := range updates {
		if strings.TrimSpace(u.Blocked) != "" {
			blocked++
		}
	}
	ratio := float64(blocked) / float64(len(updates))
	if blocked == 0 {
		return ratio, TransparencySuspicious
	}
	if ratio <= 0.4 {
		return ratio, TransparencyHealthy
	}
	return ratio, TransparencyStruggling
}

// stability compares the count of architect revisions against the milestone
// total: a plan revised more often than it has milestones is volatile.
func stability(history []domain.AuditLog, milestoneTotal int) string {
	if milestoneTotal == 0 {
		return StabilityStable
	}
	edits := 0
	for _, entry := range history {
		if entry.Action == domain.AuditRevision {
			edits++
		}
	}
	ratio := float64(edits) / float64(milestoneTotal)
	if ratio > 1.0 {
		return StabilityVolatile
	}
	if ratio > 0.4 {
		return StabilityModerate
	}
	return StabilityStable
}

// consistency measures posted updates against roughly one per week over the
// declared duration. An unparseable duration expects 24 updates.
func consistency(totalUpdates int, duration string) int {
	expected := parseDurationMonths(duration) * 4
	if expected <= 0 {
		expected = 24
	}
	score := int(float64(totalUpdates) / float64(expected) * 100)
	if score > 100 {
		return 100
	}
	return score
}

// parseDurationMonths reads the numeric prefix of strings like "6 Months".
func parseDurationMonths(duration string) int {
	months := 0
	for _, r := range strings.TrimSpace(duration) {
		if r < '0' || r > '9' {
			break
		}
		months = months*10 + int(r-'0')
	}
	return months
}
