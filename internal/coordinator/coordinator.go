// Package coordinator wires a ScanSource to a TreeBuilder under bounded
// concurrency, reports throttled progress, and synthesizes the final
// ScanResult — the single entry point the rest of the system calls.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/kestrel-tools/volscan/internal/analyze"
	"github.com/kestrel-tools/volscan/internal/builder"
	"github.com/kestrel-tools/volscan/internal/event"
	"github.com/kestrel-tools/volscan/internal/model"
	"github.com/kestrel-tools/volscan/internal/source"
)

// progressHz is the maximum rate at which the progress callback fires; it
// must stay safe to invoke frequently, so callers can update a UI at up to
// 10 Hz without buffering or dropping updates themselves.
const progressHz = 10

// yieldEvery is how many entries the coordinator processes before
// cooperatively yielding the scheduler, so a scan of a huge, mostly-cached
// tree doesn't starve other goroutines on a GOMAXPROCS=1 host.
const yieldEvery = 10_000

// Config controls one Coordinator invocation.
type Config struct {
	ForceDirectoryScan bool
	Workers            int
	TopN               int
	Logger             *slog.Logger

	// Events, if non-nil, receives lifecycle events as the scan progresses:
	// SourceSelected/SourceFallback once the source is chosen, and
	// BuildingTree/Analyzing as the scan moves into its post-collection
	// phases. It is called from the same goroutine as Scan itself.
	Events func(event.Event)
}

// Coordinator is the single orchestration entry point of the scanning
// core.
type Coordinator struct {
	cfg Config
}

// New builds a Coordinator. A nil Logger falls back to slog.Default().
func New(cfg Config) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 20
	}
	return &Coordinator{cfg: cfg}
}

// Scan runs one complete scan of volumeRoot. progress, if non-nil, is
// invoked from the coordinator's own goroutine at up to 10 Hz; it must not
// block. Cancelling ctx aborts promptly with a ScanAborted error and no
// partial ScanResult.
func (c *Coordinator) Scan(ctx context.Context, volumeRoot string, progress func(model.ScanProgress)) (model.ScanResult, error) {
	start := time.Now()
	root := filepath.Clean(volumeRoot)
	if _, err := os.Stat(root); err != nil {
		return model.ScanResult{}, model.NewScanError(model.HostIoError, root, "volume root not accessible", err)
	}

	drive, err := sampleDriveStats(root)
	if err != nil {
		c.cfg.Logger.Warn("drive stats unavailable", "root", root, "error", err)
	}

	sel, err := source.Select(source.SelectOpts{ForceDirectory: c.cfg.ForceDirectoryScan, Workers: c.cfg.Workers})
	if err != nil {
		return model.ScanResult{}, model.NewScanError(model.SourceUnavailable, root, "no scan source available", err)
	}
	src := sel.Source
	if sel.Fallback {
		c.cfg.Logger.Warn("primary scan source unavailable, falling back", "source", src.Description(), "root", root, "reason", sel.Reason)
		c.emit(event.Event{Type: event.SourceFallback, Timestamp: time.Now(), Source: src.Description(), Error: sel.Reason})
	} else {
		c.cfg.Logger.Info("scan source selected", "source", src.Description(), "root", root)
		c.emit(event.Event{Type: event.SourceSelected, Timestamp: time.Now(), Source: src.Description()})
	}

	estimate := src.EstimateEntryCount(root)

	var faults []error
	tb := builder.New(root, func(err error) {
		faults = append(faults, err)
		c.cfg.Logger.Debug("build fault", "error", err)
	})

	entries, srcErrs := src.Scan(ctx, root)

	limiter := rate.NewLimiter(rate.Limit(progressHz), 1)
	var processed int64

	var hostErr *model.ScanError
	errsDone := make(chan struct{})
	go func() {
		defer close(errsDone)
		for err := range srcErrs {
			c.logSourceFault(err)
			var se *model.ScanError
			if hostErr == nil && errors.As(err, &se) && se.Kind == model.HostIoError {
				hostErr = se
			}
		}
	}()

	for entry := range entries {
		select {
		case <-ctx.Done():
			c.drain(entries, srcErrs, errsDone)
			return model.ScanResult{}, model.NewScanError(model.ScanAborted, root, "scan cancelled", ctx.Err())
		default:
		}

		tb.OnEntry(entry)
		processed++

		if processed%yieldEvery == 0 {
			runtimeGosched()
			c.cfg.Logger.Debug("batch processed", "processed", processed, "current", entry.Name)
		}

		if progress != nil && limiter.Allow() {
			progress(makeProgress(processed, estimate, start, entry.Name))
		}
	}
	<-errsDone

	// A source stops and closes its channels on cancellation, so the loop
	// above can end without ever seeing ctx.Done().
	if ctx.Err() != nil {
		return model.ScanResult{}, model.NewScanError(model.ScanAborted, root, "scan cancelled", ctx.Err())
	}
	if hostErr != nil {
		return model.ScanResult{}, hostErr
	}

	if progress != nil {
		progress(model.ScanProgress{Percent: 95, FilesProcessed: processed, Elapsed: time.Since(start), Message: "building tree"})
	}
	c.emit(event.Event{Type: event.BuildingTree, Timestamp: time.Now(), Percent: 95, FilesProcessed: processed})
	root2 := tb.BuildTree()

	if progress != nil {
		progress(model.ScanProgress{Percent: 98, FilesProcessed: processed, Elapsed: time.Since(start), Message: "analyzing"})
	}
	c.emit(event.Event{Type: event.Analyzing, Timestamp: time.Now(), Percent: 98, FilesProcessed: processed})
	topFiles := analyze.TopFiles(root2, c.cfg.TopN)
	extGroups := analyze.ExtensionGroups(root2)

	if progress != nil {
		progress(model.ScanProgress{Percent: 100, FilesProcessed: processed, Elapsed: time.Since(start), Message: "done"})
	}

	return model.ScanResult{
		Drive:       drive,
		Root:        root2,
		TopFiles:    topFiles,
		ByExtension: extGroups,
	}, nil
}

func (c *Coordinator) emit(e event.Event) {
	if c.cfg.Events != nil {
		c.cfg.Events(e)
	}
}

func (c *Coordinator) drain(entries <-chan model.Entry, srcErrs <-chan error, errsDone <-chan struct{}) {
	for range entries {
	}
	<-errsDone
}

func (c *Coordinator) logSourceFault(err error) {
	var scanErr *model.ScanError
	if se, ok := err.(*model.ScanError); ok {
		scanErr = se
	}
	if scanErr == nil {
		c.cfg.Logger.Warn("scan fault", "error", err)
		return
	}
	switch scanErr.Kind {
	case model.AccessDenied, model.CorruptRecord:
		c.cfg.Logger.Debug("scan fault", "kind", scanErr.Kind, "path", scanErr.Path, "error", scanErr.Err)
	default:
		c.cfg.Logger.Warn("scan fault", "kind", scanErr.Kind, "path", scanErr.Path, "error", scanErr.Err)
	}
}

func makeProgress(processed, estimate int64, start time.Time, currentPath string) model.ScanProgress {
	var percent float64
	if estimate > 0 {
		percent = min(95, 100*float64(processed)/float64(estimate))
	} else {
		percent = min(95, 2*time.Since(start).Seconds())
	}
	return model.ScanProgress{
		Percent:        percent,
		FilesProcessed: processed,
		Elapsed:        time.Since(start),
		CurrentPath:    currentPath,
	}
}
