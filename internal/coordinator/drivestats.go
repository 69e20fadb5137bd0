package coordinator

import (
	"github.com/kestrel-tools/volscan/internal/analyze"
	"github.com/kestrel-tools/volscan/internal/model"
)

// sampleDriveStats is captured before scanning begins: the scan itself
// touches metadata and can perturb atime, so drive totals must not be
// derived from the tree it produces.
func sampleDriveStats(root string) (model.DriveStats, error) {
	return analyze.SampleDriveStats(root)
}
