//go:build !windows

package source

import "github.com/kestrel-tools/volscan/internal/model"

// newMFTSource reports SourceUnavailable immediately on non-Windows hosts,
// without touching the OS, so Select's fallback to the Directory source is
// instant rather than paying for a doomed syscall.
func newMFTSource() (ScanSource, error) {
	return nil, model.NewScanError(model.SourceUnavailable, "", "MFT source requires Windows", nil)
}
