// Package stats aggregates focus samples into the figures shown on the
// performance screen: the per-label distribution and the daily trend.
package stats

import (
	"fmt"
	"math"
	"time"

	"focusplan/internal/model"
)

// Palette is the fallback slice color list, cycled by sample index.
var Palette = []string{
	"#4a90e2",
	"#50e3c2",
	"#f5a623",
	"#d0021b",
	"#9013fe",
	"#b8e986",
	"#bd10e0",
	"#7ed321",
	"#50e3c2",
	"#00aced",
}

// Slice is one entry of the distribution.
type Slice struct {
	Label    string `json:"label"`
	Minutes  int    `json:"minutes"`
	Percent  int    `json:"percent"`
	Duration string `json:"duration"`
	Color    string `json:"color"`
}

// DistributionResult is the aggregated distribution.
type DistributionResult struct {
	TotalMinutes int     `json:"total_minutes"`
	Total        string  `json:"total"`
	Slices       []Slice `json:"slices"`
	Empty        bool    `json:"empty"`
}

// Distribution computes each sample's share of the total as
// round(100*minutes/total). When the total is zero every share is zero.
func Distribution(samples []model.FocusSample) DistributionResult {
	total := 0
	for _, s := range samples {
		total += s.Minutes
	}

	res := DistributionResult{
		TotalMinutes: total,
		Total:        FormatDuration(total),
		Slices:       make([]Slice, 0, len(samples)),
		Empty:        len(samples) == 0,
	}
	for i, s := range samples {
		color := s.Color
		if color == "" {
			color = Palette[i%len(Palette)]
		}
		res.Slices = append(res.Slices, Slice{
			Label:    s.Label,
			Minutes:  s.Minutes,
			Percent:  Percent(s.Minutes, total),
			Duration: FormatDuration(s.Minutes),
			Color:    color,
		})
	}
	return res
}

// Percent returns round(100*part/total), or 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// FormatDuration renders minutes as "Hh Mm" from one hour up, else "Mm".
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// TrendSummary holds the statistics shown under the trend chart.
type TrendSummary struct {
	Points       []model.TrendPoint `json:"points"`
	TotalMinutes int                `json:"total_minutes"`
	Total        string             `json:"total"`
	Average      int                `json:"average"`
	Max          int                `json:"max"`
	MaxLabel     string             `json:"max_label"`
	Min          int                `json:"min"`
	MinLabel     string             `json:"min_label"`
	Empty        bool               `json:"empty"`
}

// Trend summarizes a series. Ties for max/min resolve to the earliest
// point. An empty series yields a zero summary with Empty set.
func Trend(points []model.TrendPoint) TrendSummary {
	sum := TrendSummary{
		Points: points,
		Total:  FormatDuration(0),
		Empty:  len(points) == 0,
	}
	if sum.Points == nil {
		sum.Points = []model.TrendPoint{}
	}
	if len(points) == 0 {
		return sum
	}

	sum.Max, sum.MaxLabel = points[0].Minutes, points[0].Label
	sum.Min, sum.MinLabel = points[0].Minutes, points[0].Label
	for _, p := range points {
		sum.TotalMinutes += p.Minutes
		if p.Minutes > sum.Max {
			sum.Max, sum.MaxLabel = p.Minutes, p.Label
		}
		if p.Minutes < sum.Min {
			sum.Min, sum.MinLabel = p.Minutes, p.Label
		}
	}
	sum.Total = FormatDuration(sum.TotalMinutes)
	sum.Average = int(math.Round(float64(sum.TotalMinutes) / float64(len(points))))
	return sum
}

// TrendLabel formats a day as the short "M/D" chart label.
func TrendLabel(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

// LastNDays builds an n-point daily series ending at end (inclusive) from
// minutes keyed by Day Key (YYYY-MM-DD). Missing days count as zero.
func LastNDays(minutesByDay map[string]int, end time.Time, n int) []model.TrendPoint {
	if n <= 0 {
		return []model.TrendPoint{}
	}
	y, m, d := end.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, end.Location())

	points := make([]model.TrendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := last.AddDate(0, 0, -i)
		points = append(points, model.TrendPoint{
			Label:   TrendLabel(day),
			Minutes: minutesByDay[day.Format("2006-01-02")],
		})
	}
	return points
}

// MinutesByDay totals samples per recorded day in loc. Samples without a
// recorded time are skipped.
func MinutesByDay(samples []model.FocusSample, loc *time.Location) map[string]int {
	if loc == nil {
		loc = time.Local
	}
	out := make(map[string]int)
	for _, s := range samples {
		if s.Recorded.IsZero() {
			continue
		}
		out[s.Recorded.In(loc).Format("2006-01-02")] += s.Minutes
	}
	return out
}

// GroupByLabel merges samples with the same label, keeping first-seen
// order. It is used to turn recorded sessions into distribution input.
func GroupByLabel(samples []model.FocusSample) []model.FocusSample {
	idx := make(map[string]int)
	out := make([]model.FocusSample, 0, len(samples))
	for _, s := range samples {
		if i, ok := idx[s.Label]; ok {
			out[i].Minutes += s.Minutes
			continue
		}
		idx[s.Label] = len(out)
		out = append(out, model.FocusSample{Label: s.Label, Minutes: s.Minutes, Color: s.Color})
	}
	return out
}
