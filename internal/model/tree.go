package model

import "time"

// TreeNode is the immutable output of a finished tree build. Directories
// carry a recursive size aggregate; files carry their own size.
type TreeNode struct {
	Name        string
	FullPath    string
	IsDirectory bool
	SizeBytes   int64
	Children    []*TreeNode
}

// DriveStats describes the volume a scan ran against, sampled once at scan
// start (before the scan itself can perturb access times).
type DriveStats struct {
	Label      string
	TotalBytes int64
	UsedBytes  int64
	FreeBytes  int64
}

// TopItem is one entry in the top-N largest files list. Directories are
// never included by convention.
type TopItem struct {
	Name        string
	FullPath    string
	SizeBytes   int64
	IsDirectory bool
}

// ExtensionGroup summarizes total size and file count for one lower-cased
// file extension.
type ExtensionGroup struct {
	Extension string
	TotalSize int64
	FileCount int64
}

// ScanResult is the value a completed, uncancelled scan returns. Its shape
// never changes based on whether a caller also requested duplicate
// grouping — that is a separate, opt-in artifact.
type ScanResult struct {
	Drive       DriveStats
	Root        *TreeNode
	TopFiles    []TopItem
	ByExtension []ExtensionGroup
}

// ScanProgress is the snapshot type delivered to a scan's progress
// callback. Percent is monotonically non-decreasing across a successful
// scan and always ends at exactly 100.
type ScanProgress struct {
	Percent        float64
	FilesProcessed int64
	Elapsed        time.Duration
	CurrentPath    string
	Message        string
}

// DuplicateGroup is the opt-in output of the content-based duplicate pass:
// two or more files of the same size whose BLAKE3 digest also matches.
type DuplicateGroup struct {
	ContentHash string
	SizeBytes   int64
	Paths       []string
}
