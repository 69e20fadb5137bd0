package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrel-tools/volscan/internal/scanlog"
	"github.com/kestrel-tools/volscan/internal/ui"
)

// historyCmd lists recently completed scans from the local history
// database, the read side of the write-once log recordHistory appends to
// after every scan.
func historyCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := scanlog.Open(scanlog.DefaultPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer db.Close()

			records, err := db.Recent(context.Background(), n)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recorded scans")
				return nil
			}
			for _, r := range records {
				status := "ok"
				if r.Error != "" {
					status = "failed: " + r.Error
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s %-10s %10s  %s  %s\n",
					r.StartedAt.Format("2006-01-02 15:04"),
					r.SourceKind,
					ui.FormatDuration(r.Duration),
					ui.FormatBytes(r.BytesTotal),
					r.RootPath,
					status,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "limit", 20, "maximum number of runs to show")
	return cmd
}
