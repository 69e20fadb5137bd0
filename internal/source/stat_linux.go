//go:build linux

package source

import (
	"os"
	"syscall"
)

// statDevInoNlink extracts (device, inode, link count) from a Lstat result
// by reaching into info.Sys().(*syscall.Stat_t).
func statDevInoNlink(info os.FileInfo) (dev, ino uint64, nlink uint32, ok bool) {
	stat, isStatT := info.Sys().(*syscall.Stat_t)
	if !isStatT {
		return 0, 0, 0, false
	}
	return uint64(stat.Dev), stat.Ino, uint32(stat.Nlink), true
}

// allocSizeFromStat returns the exact on-disk footprint (st_blocks*512)
// when the platform stat is available, refining the cluster-rounded
// default the portable formula falls back to.
func allocSizeFromStat(info os.FileInfo) (int64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return stat.Blocks * 512, true
}
