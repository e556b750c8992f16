package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"focusplan/internal/app"
	"focusplan/internal/ics"
	appLog "focusplan/internal/log"
	"focusplan/internal/model"
	"focusplan/internal/planner"
)

var (
	exportOut           string
	exportEvents        []string
	exportSubscriptions bool
	exportCacheDir      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write planner events as an ICS calendar",
	Example: `  focusplan export --event "2026-10-20=Dentist" --out plan.ics
  focusplan export --subscriptions`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().StringArrayVarP(&exportEvents, "event", "e", nil, "Event as YYYY-MM-DD=title (repeatable)")
	exportCmd.Flags().BoolVar(&exportSubscriptions, "subscriptions", false, "Fetch configured subscriptions and include their events")
	exportCmd.Flags().StringVar(&exportCacheDir, "cache-dir", "", "Directory for cached ICS feeds (default: system temp)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a := newApp(cfg, exportCacheDir)

	if err := addExportEvents(a, exportEvents); err != nil {
		return err
	}
	if exportSubscriptions {
		if err := a.RefreshSubscriptions(cmd.Context()); err != nil {
			appLog.Warn("some subscriptions failed", "err", err)
		}
	}

	var events []model.CalendarEvent
	a.View(func(st *app.State) { events = st.Planner.Events() })
	body := ics.Export(events, ics.ExportOptions{Name: "focusplan", Now: time.Now})

	if exportOut == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(exportOut, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	appLog.Info("calendar exported", "path", exportOut, "events", len(events))
	return nil
}

func addExportEvents(a *app.App, raw []string) error {
	return a.Update(func(st *app.State) error {
		for _, r := range raw {
			key, title, ok := strings.Cut(r, "=")
			if !ok {
				return fmt.Errorf("invalid event %q: want YYYY-MM-DD=title", r)
			}
			day, err := planner.ParseDayKey(strings.TrimSpace(key), a.Location())
			if err != nil {
				return fmt.Errorf("invalid event date %q: %w", key, err)
			}
			if _, err := st.Planner.AddEvent(planner.NewEvent{Title: title, Date: &day}); err != nil {
				return fmt.Errorf("event %q: %w", r, err)
			}
		}
		return nil
	})
}
