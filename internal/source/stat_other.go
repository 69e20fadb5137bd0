//go:build !linux && !darwin

package source

import "os"

// statDevInoNlink has no portable answer outside linux/darwin (notably
// Windows, where the Directory source falls back to path-based ids only —
// the MFT source is the one that handles NTFS hard links there). The
// cluster-rounded allocation-size default in allocSizeFromInfo covers this
// case.
func statDevInoNlink(os.FileInfo) (dev, ino uint64, nlink uint32, ok bool) {
	return 0, 0, 0, false
}

func allocSizeFromStat(os.FileInfo) (int64, bool) {
	return 0, false
}
