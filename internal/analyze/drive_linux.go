//go:build linux

package analyze

import (
	"golang.org/x/sys/unix"

	"github.com/kestrel-tools/volscan/internal/model"
)

// SampleDriveStats reads total/free bytes via statfs.
func SampleDriveStats(root string) (model.DriveStats, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(root, &stat); err != nil {
		return model.DriveStats{}, err
	}

	blockSize := uint64(stat.Bsize)
	total := stat.Blocks * blockSize
	free := stat.Bavail * blockSize
	return model.DriveStats{
		Label:      root,
		TotalBytes: int64(total),
		FreeBytes:  int64(free),
		UsedBytes:  int64(total - free),
	}, nil
}
