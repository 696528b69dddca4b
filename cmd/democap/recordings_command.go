package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"democap/internal/catalog"
	"democap/internal/textutil"
)

func newRecordingsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "List recorded artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFilters(statusFlags)
			if err != nil {
				return err
			}
			store, err := catalog.Open(ctx.configValue())
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			recs, err := store.List(cmd.Context(), limit, statuses...)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(stdout, "No recordings found")
				return nil
			}
			headers := []string{"ID", "Kind", "Status", "Started", "Duration", "Size", "Output"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprint(stdout, renderTable(headers, buildRecordingRows(recs), aligns))
			fmt.Fprintln(stdout)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of recordings to show (0 for all)")
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (recording, completed, missing, failed)")
	return cmd
}

func parseStatusFilters(values []string) ([]catalog.Status, error) {
	statuses := make([]catalog.Status, 0, len(values))
	for _, value := range values {
		status, ok := catalog.ParseStatus(strings.ToLower(strings.TrimSpace(value)))
		if !ok {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func buildRecordingRows(recs []*catalog.Recording) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		output := filepath.Base(rec.OutputPath)
		if rec.ErrorMessage != "" {
			output = fmt.Sprintf("%s (%s)", output, rec.ErrorMessage)
		}
		rows = append(rows, []string{
			shortID(rec.ID),
			string(rec.Kind),
			textutil.Title(string(rec.Status)),
			formatTimestamp(rec.StartedAt),
			formatDuration(rec.Duration()),
			formatBytes(rec.SizeBytes),
			output,
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatBytes(n int64) string {
	if n <= 0 {
		return "-"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
