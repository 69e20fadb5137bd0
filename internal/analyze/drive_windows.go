//go:build windows

package analyze

import (
	"golang.org/x/sys/windows"

	"github.com/kestrel-tools/volscan/internal/model"
)

// SampleDriveStats is a thin wrapper around GetDiskFreeSpaceEx.
func SampleDriveStats(root string) (model.DriveStats, error) {
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return model.DriveStats{}, err
	}

	var freeAvail, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeAvail, &total, &free); err != nil {
		return model.DriveStats{}, err
	}

	return model.DriveStats{
		Label:      root,
		TotalBytes: int64(total),
		FreeBytes:  int64(free),
		UsedBytes:  int64(total - free),
	}, nil
}
