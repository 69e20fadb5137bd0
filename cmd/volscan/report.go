package main

import (
	"fmt"
	"io"

	"github.com/kestrel-tools/volscan/internal/model"
	"github.com/kestrel-tools/volscan/internal/ui"
)

// printReport writes the final human-readable report to w once a scan
// completes: drive usage, the largest files, and per-extension totals.
func printReport(w io.Writer, result model.ScanResult, dups []model.DuplicateGroup) {
	if result.Drive.TotalBytes > 0 {
		fmt.Fprintf(w, "volume: %s  used %s / %s  (%s free)\n",
			result.Drive.Label,
			ui.FormatBytes(result.Drive.UsedBytes),
			ui.FormatBytes(result.Drive.TotalBytes),
			ui.FormatBytes(result.Drive.FreeBytes),
		)
	}
	if result.Root != nil {
		fmt.Fprintf(w, "scanned: %s  total size %s\n", result.Root.FullPath, ui.FormatBytes(result.Root.SizeBytes))
	}

	if len(result.TopFiles) > 0 {
		fmt.Fprintln(w, "\nlargest files:")
		for i, item := range result.TopFiles {
			fmt.Fprintf(w, "  %2d. %10s  %s\n", i+1, ui.FormatBytes(item.SizeBytes), item.FullPath)
		}
	}

	if len(result.ByExtension) > 0 {
		fmt.Fprintln(w, "\nby extension:")
		for _, g := range result.ByExtension {
			ext := g.Extension
			if ext == "" {
				ext = "(none)"
			}
			fmt.Fprintf(w, "  %-12s %10s  %s files\n", ext, ui.FormatBytes(g.TotalSize), ui.FormatCount(g.FileCount))
		}
	}

	if len(dups) > 0 {
		fmt.Fprintln(w, "\nduplicate content groups:")
		for _, group := range dups {
			fmt.Fprintf(w, "  %s each, %d copies:\n", ui.FormatBytes(group.SizeBytes), len(group.Paths))
			for _, p := range group.Paths {
				fmt.Fprintf(w, "    %s\n", p)
			}
		}
	}
}
