//go:build !linux && !darwin && !windows

package analyze

import "github.com/kestrel-tools/volscan/internal/model"

// SampleDriveStats has no portable implementation outside the three
// platforms above; it returns stats carrying only the label, with zero
// byte counts and no error, so the scan proceeds without drive totals.
func SampleDriveStats(root string) (model.DriveStats, error) {
	return model.DriveStats{Label: root}, nil
}
