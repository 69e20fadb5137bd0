//go:build darwin

package source

import (
	"os"
	"syscall"
)

func statDevInoNlink(info os.FileInfo) (dev, ino uint64, nlink uint32, ok bool) {
	stat, isStatT := info.Sys().(*syscall.Stat_t)
	if !isStatT {
		return 0, 0, 0, false
	}
	return uint64(stat.Dev), stat.Ino, uint32(stat.Nlink), true
}

func allocSizeFromStat(info os.FileInfo) (int64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return stat.Blocks * 512, true
}
