package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appLog "focusplan/internal/log"
	"focusplan/internal/planner"
)

var (
	gridMonth     string
	gridWeekStart string
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Print the 42-cell grid of a month",
	Long: `Print the six-week grid for a month. Days of the adjacent months are
shown in parentheses.`,
	Args: cobra.NoArgs,
	RunE: runGrid,
}

func init() {
	gridCmd.Flags().StringVar(&gridMonth, "month", "", "Month as YYYY-MM (default: current month)")
	gridCmd.Flags().StringVar(&gridWeekStart, "week-start", "", "First column: sunday or monday (default: from config)")
}

func runGrid(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		appLog.Warn("unknown timezone; using local", "timezone", cfg.Timezone)
	}
	ws := cfg.Weekday()
	if gridWeekStart != "" {
		ws = planner.ParseWeekStart(gridWeekStart)
	}

	now := time.Now().In(loc)
	year, month := now.Year(), now.Month()
	if gridMonth != "" {
		t, err := time.Parse("2006-01", gridMonth)
		if err != nil {
			return fmt.Errorf("invalid --month %q: want YYYY-MM", gridMonth)
		}
		year, month = t.Year(), t.Month()
	}

	grid := planner.BuildMonthGrid(year, month, ws, loc)
	printGrid(cmd.OutOrStdout(), grid, planner.DayKey(now))
	return nil
}

func printGrid(w io.Writer, grid planner.MonthGrid, todayKey string) {
	fmt.Fprintf(w, "%s %d\n", grid.Month, grid.Year)

	var b strings.Builder
	for _, label := range planner.WeekdayLabels(grid.WeekStart) {
		fmt.Fprintf(&b, "%5s", label)
	}
	fmt.Fprintln(w, b.String())

	for _, week := range grid.Weeks() {
		b.Reset()
		for _, c := range week {
			day := fmt.Sprint(c.Date.Day())
			switch {
			case !c.InMonth:
				day = "(" + day + ")"
			case c.Key == todayKey:
				day = "*" + day
			}
			fmt.Fprintf(&b, "%5s", day)
		}
		fmt.Fprintln(w, b.String())
	}
}
