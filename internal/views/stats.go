package views

import (
	"fmt"
	"math"
	"sort"

	"claimsportal/domain/claim"

	"github.com/montanaflynn/stats"
)

// Stats are the headline numbers on both dashboards
type Stats struct {
	Total     int
	Approved  int
	Rejected  int
	Pending   int
	AvgDamage int
}

// ApprovalRate is approved over total as a percentage with one decimal, "0" when empty
func (s Stats) ApprovalRate() string {
	if s.Total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(s.Approved)/float64(s.Total)*100)
}

// DashboardStats summarises claims. Pending counts every active status.
// AvgDamage is the rounded mean damage percent, with unassessed claims counted as 0.
func DashboardStats(claims []claim.Claim) Stats {
	s := Stats{Total: len(claims)}
	damage := make([]float64, 0, len(claims))
	for _, c := range claims {
		switch {
		case c.Status == claim.StatusApproved:
			s.Approved++
		case c.Status == claim.StatusRejected:
			s.Rejected++
		case c.Status.IsActive():
			s.Pending++
		}
		var pct float64
		if c.AIAnalysis != nil {
			pct = c.AIAnalysis.DamagePercent
		}
		damage = append(damage, pct)
	}
	if mean, err := stats.Mean(damage); err == nil {
		s.AvgDamage = int(math.Round(mean))
	}
	return s
}

// Slice is one segment of a chart
type Slice struct {
	Name  string
	Value int
	Color string
}

var statusColors = map[claim.Status]string{
	claim.StatusApproved:       "#10B981",
	claim.StatusRejected:       "#EF4444",
	claim.StatusPending:        "#F59E0B",
	claim.StatusAnalyzing:      "#3B82F6",
	claim.StatusRequiresReview: "#8B5CF6",
	claim.StatusDraft:          "#94A3B8",
}

const fallbackColor = "#CBD5E1"

var vehicleColors = []string{"#0EA5E9", "#6366F1", "#8B5CF6", "#EC4899"}

// StatusColor returns the chart colour for s
func StatusColor(s claim.Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return fallbackColor
}

// StatusDistribution counts claims per status. Known statuses come first in
// claim.Statuses order, unknown ones follow alphabetically. Empty buckets are omitted.
func StatusDistribution(claims []claim.Claim) []Slice {
	counts := map[claim.Status]int{}
	for _, c := range claims {
		counts[c.Status]++
	}

	out := make([]Slice, 0, len(counts))
	for _, s := range claim.Statuses {
		if n := counts[s]; n > 0 {
			out = append(out, Slice{Name: string(s), Value: n, Color: StatusColor(s)})
			delete(counts, s)
		}
	}
	rest := make([]string, 0, len(counts))
	for s := range counts {
		rest = append(rest, string(s))
	}
	sort.Strings(rest)
	for _, s := range rest {
		out = append(out, Slice{Name: s, Value: counts[claim.Status(s)], Color: fallbackColor})
	}
	return out
}

// VehicleDistribution counts claims per vehicle type in first-seen order
func VehicleDistribution(claims []claim.Claim) []Slice {
	index := map[claim.VehicleType]int{}
	var out []Slice
	for _, c := range claims {
		vt := c.VehicleDetails.VehicleType
		i, ok := index[vt]
		if !ok {
			i = len(out)
			index[vt] = i
			out = append(out, Slice{Name: string(vt), Color: vehicleColors[i%len(vehicleColors)]})
		}
		out[i].Value++
	}
	return out
}

// MonthCount is claims filed in one calendar month
type MonthCount struct {
	Label  string
	Claims int
}

// MonthlyTrend buckets claims by creation month ("Feb 2025"), oldest first.
// Claims with an unparseable createdAt are skipped.
func MonthlyTrend(claims []claim.Claim) []MonthCount {
	type bucket struct {
		key   int
		label string
		n     int
	}
	buckets := map[int]*bucket{}
	for _, c := range claims {
		t, ok := c.Created()
		if !ok {
			continue
		}
		key := t.Year()*12 + int(t.Month())
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key, label: t.Format("Jan 2006")}
			buckets[key] = b
		}
		b.n++
	}

	sorted := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	out := make([]MonthCount, len(sorted))
	for i, b := range sorted {
		out[i] = MonthCount{Label: b.label, Claims: b.n}
	}
	return out
}
