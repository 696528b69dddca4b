package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"democap/internal/catalog"
	"democap/internal/deps"
	"democap/internal/preflight"
	"democap/internal/textutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkJourney bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment readiness and recording totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(stdout, line)
			}
			scope := preflight.Scope{LiveCapture: true, Journey: checkJourney}
			for _, result := range preflight.RunAll(cmd.Context(), cfg, scope) {
				fmt.Fprintln(stdout, preflightLine(result, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Recordings", colorize) {
				fmt.Fprintln(stdout, line)
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				fmt.Fprintln(stdout, renderStatusLine("Catalog", statusError, err.Error(), colorize))
				return nil
			}
			defer store.Close()
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("catalog stats: %w", err)
			}
			rows := buildStatsRows(stats)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No recordings yet")
				return nil
			}
			fmt.Fprint(stdout, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintln(stdout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkJourney, "check-site", false, "Also probe the journey base URL")
	return cmd
}

func preflightLine(result preflight.Result, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, statusError, result.Detail, colorize)
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+2)
	lines = append(lines, dependencySummary(statuses, colorize))
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Path != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Path)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func dependencySummary(statuses []deps.Status, colorize bool) string {
	required := len(deps.Missing(statuses))
	optional := 0
	for _, dep := range statuses {
		if !dep.Available && dep.Optional {
			optional++
		}
	}
	switch {
	case required > 0:
		return renderStatusLine("Summary", statusError, fmt.Sprintf("%d required missing", required), colorize)
	case optional > 0:
		return renderStatusLine("Summary", statusWarn, fmt.Sprintf("%d optional missing", optional), colorize)
	default:
		return renderStatusLine("Summary", statusOK, "All dependencies available", colorize)
	}
}

func buildStatsRows(stats map[catalog.Status]int) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, status := range catalog.AllStatuses() {
		count := stats[status]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{textutil.Title(string(status)), strconv.Itoa(count)})
	}
	return rows
}
