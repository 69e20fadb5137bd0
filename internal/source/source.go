// Package source implements the two ScanSource strategies the scanning
// core can run: an NTFS Master-File-Table fast path (Windows only) and a
// portable directory-enumeration fallback, plus the factory that picks
// between them by platform and capability.
package source

import (
	"context"
	"os"

	"github.com/kestrel-tools/volscan/internal/model"
)

// ScanSource is the polymorphic producer contract every scan strategy
// implements. Scan is finite and not restartable; both returned channels
// close when the source is exhausted, faulted, or cancelled.
type ScanSource interface {
	Scan(ctx context.Context, volumeRoot string) (<-chan model.Entry, <-chan error)
	EstimateEntryCount(volumeRoot string) int64
	Description() string
}

// SelectOpts configures the factory's decision, mirroring the environment
// variables and config settings the external interface documents.
type SelectOpts struct {
	ForceDirectory bool
	Workers        int
}

// Result reports which ScanSource the factory chose and, if the preferred
// source could not be used, why it fell back.
type Result struct {
	Source   ScanSource
	Fallback bool
	Reason   error // set when Fallback is true
}

// Select picks the optimal ScanSource for volumeRoot: MFT when the host is
// Windows, the volume is NTFS, the process has administrator rights, and a
// test volume-open succeeds; Directory otherwise. A failed MFT open is
// reported back as a Fallback rather than surfaced as a scan-ending error,
// so the caller can log or display it without treating the scan itself as
// failed.
func Select(opts SelectOpts) (Result, error) {
	if opts.ForceDirectory || os.Getenv("FORCE_DIRECTORY_SCAN") == "1" {
		return Result{Source: NewDirectorySource(opts.Workers)}, nil
	}
	mft, err := newMFTSource()
	if err == nil {
		return Result{Source: mft}, nil
	}
	return Result{Source: NewDirectorySource(opts.Workers), Fallback: true, Reason: err}, nil
}
