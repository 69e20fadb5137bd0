// Command volscan scans a volume's directory tree and reports where the
// space went: largest files, per-extension totals, and (opt-in) duplicate
// content groups.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrel-tools/volscan/internal/analyze"
	"github.com/kestrel-tools/volscan/internal/config"
	"github.com/kestrel-tools/volscan/internal/coordinator"
	"github.com/kestrel-tools/volscan/internal/event"
	"github.com/kestrel-tools/volscan/internal/model"
	"github.com/kestrel-tools/volscan/internal/scanlog"
	"github.com/kestrel-tools/volscan/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing and mode selection
func run() int {
	var (
		workers        int
		topN           int
		forceDirectory bool
		verbose        bool
		quiet          bool
		tuiFlag        bool
		logFile        string
		jsonLog        bool
		dedup          bool
		dedupBudget    string
		showVersion    bool
	)

	rootCmd := &cobra.Command{
		Use:   "volscan [flags] <path>",
		Short: "Scan a volume and report where the space went",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "volscan %s\n", version)
				return nil
			}
			root := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults, &workers, &topN, &forceDirectory, &tuiFlag, &logFile, &jsonLog)

			logLevel := slog.LevelWarn
			switch {
			case verbose || os.Getenv("SCANNER_DEBUG") == "1":
				logLevel = slog.LevelDebug
			case !quiet:
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				if jsonLog {
					logHandler = slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
				} else {
					logHandler = slog.NewTextHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
				}
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			if workers <= 0 {
				workers = min(runtime.NumCPU()*2, 32)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			events := make(chan event.Event, 256)
			isTTY := ui.IsTTY(os.Stderr.Fd())
			if tuiFlag && !isTTY {
				slog.Warn("--tui requires a terminal, falling back to inline output")
			}
			presenter := ui.NewPresenter(ui.Config{
				Writer:    os.Stdout,
				ErrWriter: os.Stderr,
				RootPath:  root,
				IsTTY:     isTTY,
				Quiet:     quiet,
				TUI:       tuiFlag,
			})

			co := coordinator.New(coordinator.Config{
				ForceDirectoryScan: forceDirectory,
				Workers:            workers,
				TopN:               topN,
				Logger:             logger,
				Events: func(e event.Event) {
					events <- e
				},
			})

			var presenterWg sync.WaitGroup
			var presenterErr error
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(events)
			}()

			started := time.Now()
			events <- event.Event{Type: event.ScanStarted, Timestamp: started, Path: root}

			result, scanErr := co.Scan(ctx, root, func(p model.ScanProgress) {
				events <- event.Event{
					Type:           event.Progress,
					Timestamp:      time.Now(),
					Path:           p.CurrentPath,
					Percent:        p.Percent,
					FilesProcessed: p.FilesProcessed,
				}
			})

			var dupGroups []model.DuplicateGroup
			if scanErr == nil && dedup {
				budget := parseByteSizeOr(dedupBudget, 4<<30)
				dupGroups = analyze.DuplicateGroups(result.Root, budget)
			}

			if scanErr != nil {
				events <- event.Event{Type: event.ScanFailed, Timestamp: time.Now(), Error: scanErr}
			} else {
				events <- event.Event{Type: event.ScanComplete, Timestamp: time.Now(), FilesProcessed: countFiles(result)}
			}
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			stop()

			if !quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if hpath := scanlog.DefaultPath(); hpath != "" {
				recordHistory(hpath, root, started, scanErr, result)
			}

			if scanErr != nil {
				slog.Error("scan failed", "error", scanErr)
				var se *model.ScanError
				if errors.As(scanErr, &se) && se.Kind == model.ScanAborted {
					return &exitError{code: 130}
				}
				return &exitError{code: 1}
			}

			printReport(os.Stdout, result, dupGroups)
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().IntVarP(&workers, "workers", "n", 0, "number of scan workers (default: min(NumCPU*2, 32))")
	rootCmd.Flags().IntVar(&topN, "top", 20, "number of largest files to report")
	rootCmd.Flags().BoolVar(&forceDirectory, "force-directory-scan", false, "always walk the filesystem instead of using a platform-native journal source")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except the final report")
	rootCmd.Flags().BoolVar(&tuiFlag, "tui", false, "full-screen progress display (Bubble Tea)")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write log output to FILE")
	rootCmd.Flags().BoolVar(&jsonLog, "json-log", false, "write --log output as JSON")
	rootCmd.Flags().BoolVar(&dedup, "dedup", false, "find groups of files with identical content (BLAKE3)")
	rootCmd.Flags().StringVar(&dedupBudget, "dedup-budget", "4G", "max total bytes to hash when --dedup is set")

	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI: an explicit flag always wins over a config file default.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, workers, topN *int, forceDirectory, tuiFlag *bool, logFile *string, jsonLog *bool) {
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("top") && defaults.TopN != nil {
		*topN = *defaults.TopN
	}
	if !cmd.Flags().Changed("force-directory-scan") && defaults.ForceDirectoryScan != nil {
		*forceDirectory = *defaults.ForceDirectoryScan
	}
	if !cmd.Flags().Changed("tui") && defaults.TUI != nil {
		*tuiFlag = *defaults.TUI
	}
	if !cmd.Flags().Changed("log") && defaults.LogFile != nil {
		*logFile = *defaults.LogFile
	}
	if !cmd.Flags().Changed("json-log") && defaults.JSONLog != nil {
		*jsonLog = *defaults.JSONLog
	}
}

func countFiles(r model.ScanResult) int64 {
	var count int64
	var walk func(n *model.TreeNode)
	walk = func(n *model.TreeNode) {
		if n == nil {
			return
		}
		if !n.IsDirectory {
			count++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(r.Root)
	return count
}

func recordHistory(path, root string, started time.Time, scanErr error, result model.ScanResult) {
	db, err := scanlog.Open(path)
	if err != nil {
		slog.Debug("history db unavailable", "error", err)
		return
	}
	defer db.Close()

	rec := scanlog.Record{
		RunID:      scanlog.NewRunID(),
		RootPath:   root,
		SourceKind: "auto",
		StartedAt:  started,
		Duration:   time.Since(started),
	}
	if scanErr != nil {
		rec.Error = scanErr.Error()
	} else {
		rec.FilesTotal = countFiles(result)
		if result.Root != nil {
			rec.BytesTotal = result.Root.SizeBytes
		}
	}
	if err := db.Insert(context.Background(), rec); err != nil {
		slog.Debug("history insert failed", "error", err)
	}
}

func parseByteSizeOr(s string, fallback int64) int64 {
	n, err := parseByteSize(s)
	if err != nil {
		return fallback
	}
	return n
}
