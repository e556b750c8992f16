package planner

import (
	"strings"
	"time"
)

const (
	// GridCells is the fixed length of a month grid: six weeks of seven days.
	GridCells = 42
	// GridWeeks is the number of rows in a month grid.
	GridWeeks = 6
)

// Cell is one day of a month grid.
type Cell struct {
	Date    time.Time `json:"date"`
	Key     string    `json:"key"`
	InMonth bool      `json:"in_month"`

	// Filled in by Planner.View; BuildMonthGrid leaves them zero.
	IsToday    bool `json:"is_today"`
	IsSelected bool `json:"is_selected"`
	EventCount int  `json:"event_count"`
}

// MonthGrid is the 42-cell page rendered for one month.
type MonthGrid struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	WeekStart time.Weekday `json:"week_start"`
	Cells     []Cell       `json:"cells"`

	leading  int
	trailing int
}

// BuildMonthGrid returns the grid for the given month. The grid always has
// GridCells cells: leading days from the previous month so that cell 0
// falls on weekStart, every day of the month, then enough days of the next
// month to fill six full weeks, even when five rows would be enough.
//
// month may be out of range (e.g. 13); it is normalized the same way
// time.Date does. A nil loc means time.Local.
func BuildMonthGrid(year int, month time.Month, weekStart time.Weekday, loc *time.Location) MonthGrid {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	year, month = first.Year(), first.Month()

	leading := (int(first.Weekday()) - int(weekStart) + 7) % 7
	days := DaysIn(year, month)

	g := MonthGrid{
		Year:      year,
		Month:     month,
		WeekStart: weekStart,
		Cells:     make([]Cell, 0, GridCells),
		leading:   leading,
		trailing:  GridCells - leading - days,
	}

	// time.Date normalizes day offsets outside 1..days into the adjacent
	// months, which covers both the leading and trailing cells.
	for i := 0; i < GridCells; i++ {
		d := time.Date(year, month, 1-leading+i, 0, 0, 0, 0, loc)
		g.Cells = append(g.Cells, Cell{
			Date:    d,
			Key:     DayKey(d),
			InMonth: d.Month() == month && d.Year() == year,
		})
	}
	return g
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Leading is the number of cells taken from the previous month.
func (g MonthGrid) Leading() int { return g.leading }

// Trailing is the number of cells taken from the next month.
func (g MonthGrid) Trailing() int { return g.trailing }

// Weeks splits the grid into GridWeeks rows of seven cells.
func (g MonthGrid) Weeks() [][]Cell {
	rows := make([][]Cell, 0, GridWeeks)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		rows = append(rows, g.Cells[i:i+7])
	}
	return rows
}

// Index returns the position of t's day in the grid, or -1.
func (g MonthGrid) Index(t time.Time) int {
	if len(g.Cells) == 0 {
		return -1
	}
	key := DayKey(t.In(g.Cells[0].Date.Location()))
	for i, c := range g.Cells {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// WeekdayLabels returns short weekday headers starting at weekStart.
func WeekdayLabels(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = ((weekStart + time.Weekday(i)) % 7).String()[:3]
	}
	return out
}

// ParseWeekStart maps "sunday"/"monday" (any case) to a weekday. Anything
// else yields Sunday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "monday") {
		return time.Monday
	}
	return time.Sunday
}
