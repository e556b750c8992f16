package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"focusplan/internal/model"
	"focusplan/internal/stats"
)

var statsSamples []string

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Print the focus distribution for labeled samples",
	Example: `  focusplan stats --sample "Project work=120" --sample "Study=90" --sample "Meetings=60"`,
	Args:    cobra.NoArgs,
	RunE:    runStats,
}

func init() {
	statsCmd.Flags().StringArrayVarP(&statsSamples, "sample", "s", nil, "Sample as label=minutes (repeatable)")
}

func runStats(cmd *cobra.Command, _ []string) error {
	samples, err := parseSamples(statsSamples)
	if err != nil {
		return err
	}
	printDistribution(cmd.OutOrStdout(), stats.Distribution(samples))
	return nil
}

func parseSamples(raw []string) ([]model.FocusSample, error) {
	out := make([]model.FocusSample, 0, len(raw))
	for _, r := range raw {
		label, minutes, ok := strings.Cut(r, "=")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("invalid sample %q: want label=minutes", r)
		}
		n, err := strconv.Atoi(strings.TrimSpace(minutes))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid minutes in sample %q", r)
		}
		out = append(out, model.FocusSample{Label: label, Minutes: n})
	}
	return out, nil
}

func printDistribution(w io.Writer, res stats.DistributionResult) {
	if res.Empty {
		fmt.Fprintln(w, "no focus samples")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tDURATION\tSHARE\tCOLOR")
	for _, s := range res.Slices {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%s\n", s.Label, s.Duration, s.Percent, s.Color)
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t\t\n", res.Total)
	_ = tw.Flush()
}
