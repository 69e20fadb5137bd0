package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/kestrel-tools/volscan/internal/model"
)

// DirectoryScanSource is the portable fallback: a single-pass recursive
// enumeration fanned out over a small worker pool of directory walkers,
// each pulling from a shared queue of pending directories and emitting
// model.Entry values as it goes.
type DirectoryScanSource struct {
	workers int

	inodeSeen sync.Map // devIno -> first path observed, first one wins
}

// NewDirectorySource builds a Directory source with the given worker
// fan-out; workers <= 0 picks a small default, min(NumCPU, 8).
func NewDirectorySource(workers int) *DirectoryScanSource {
	if workers <= 0 {
		workers = min(runtime.NumCPU(), 8)
	}
	return &DirectoryScanSource{workers: workers}
}

func (s *DirectoryScanSource) Description() string { return "directory enumeration (portable)" }

// EstimateEntryCount has no cheap way to know the answer up front on a
// plain directory tree; 0 tells the coordinator to fall back to an
// elapsed-time-based progress heuristic.
func (s *DirectoryScanSource) EstimateEntryCount(string) int64 { return 0 }

func (s *DirectoryScanSource) Scan(ctx context.Context, volumeRoot string) (<-chan model.Entry, <-chan error) {
	entries := make(chan model.Entry, s.workers*4)
	errs := make(chan error, s.workers*4)

	go func() {
		defer close(entries)
		defer close(errs)
		s.scanTree(ctx, volumeRoot, entries, errs)
	}()

	return entries, errs
}

func (s *DirectoryScanSource) scanTree(ctx context.Context, root string, entries chan<- model.Entry, errs chan<- error) {
	rootID := pathFileID(root)
	select {
	case entries <- model.Entry{
		FileID:       rootID,
		ParentFileID: rootID,
		Name:         "",
		Attributes:   model.AttrDirectory,
	}:
	case <-ctx.Done():
		return
	}

	workQueue := make(chan string, s.workers*2)
	var outstanding sync.WaitGroup // directories queued but not yet processed

	var workerWg sync.WaitGroup
	for range s.workers {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for dirPath := range workQueue {
				s.scanDir(ctx, dirPath, workQueue, &outstanding, entries, errs)
				outstanding.Done()
			}
		}()
	}

	outstanding.Add(1)
	workQueue <- root

	outstanding.Wait()
	close(workQueue)
	workerWg.Wait()
}

func (s *DirectoryScanSource) scanDir(
	ctx context.Context,
	dirPath string,
	workQueue chan<- string,
	outstanding *sync.WaitGroup,
	entries chan<- model.Entry,
	errs chan<- error,
) {
	dirents, err := os.ReadDir(dirPath)
	if err != nil {
		sendErr(errs, model.NewScanError(model.AccessDenied, dirPath, "readdir failed", err))
		return
	}
	slog.Debug("scanning directory", "path", dirPath, "entries", len(dirents))

	parentID := pathFileID(dirPath)

	for _, dirent := range dirents {
		select {
		case <-ctx.Done():
			return
		default:
		}

		childPath := filepath.Join(dirPath, dirent.Name())
		if err := s.processEntry(ctx, childPath, dirent.Name(), parentID, workQueue, outstanding, entries, errs); err != nil {
			sendErr(errs, err)
		}
	}
}

func (s *DirectoryScanSource) processEntry(
	ctx context.Context,
	childPath, name string,
	parentID model.FileID,
	workQueue chan<- string,
	outstanding *sync.WaitGroup,
	entries chan<- model.Entry,
	errs chan<- error,
) error {
	info, err := os.Lstat(childPath)
	if err != nil {
		return model.NewScanError(model.AccessDenied, childPath, "lstat failed", err)
	}

	entry := model.Entry{
		ParentFileID:  parentID,
		Name:          name,
		LastWriteTime: info.ModTime(),
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		entry.Attributes = model.AttrReparsePoint
		entry.FileID = pathFileID(childPath)
		if err := sendEntry(ctx, entries, entry); err != nil {
			return err
		}
		return nil

	case mode.IsDir():
		entry.Attributes = model.AttrDirectory
		entry.FileID = pathFileID(childPath)
		if err := sendEntry(ctx, entries, entry); err != nil {
			return err
		}
		outstanding.Add(1)
		select {
		case workQueue <- childPath:
		default:
			// The queue is full and only the workers drain it; hand the
			// send to its own goroutine so no worker waits on itself.
			go func() {
				select {
				case workQueue <- childPath:
				case <-ctx.Done():
					outstanding.Done()
				}
			}()
		}
		return nil

	default:
		entry.Size = info.Size()
		entry.AllocSize = allocSizeFromInfo(info)
		entry.FileID, entry.LinkCount = s.regularFileID(childPath, info)
		if err := sendEntry(ctx, entries, entry); err != nil {
			return err
		}
		return nil
	}
}

// regularFileID identifies a regular file for TreeBuilder deduplication.
// When the platform reports link_count > 1, the id is derived from
// (device, inode) rather than the path, so every hard-linked name of the
// same file collapses onto one TreeBuilder node — disk usage is logical
// bytes, counted once per unique inode.
func (s *DirectoryScanSource) regularFileID(path string, info os.FileInfo) (model.FileID, uint32) {
	dev, ino, nlink, ok := statDevInoNlink(info)
	if !ok || nlink <= 1 {
		return pathFileID(path), max(nlink, 1)
	}

	key := devIno{dev: dev, ino: ino}
	s.inodeSeen.LoadOrStore(key, path)
	return devInoFileID(dev, ino), nlink
}

type devIno struct{ dev, ino uint64 }

// pathFileID synthesizes a FileID as the leading 16 bytes of a SHA-256
// digest of the normalized absolute path, case-folded on Windows and macOS.
func pathFileID(path string) model.FileID {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	norm := normalizePath(abs)
	sum := sha256.Sum256([]byte(norm))
	var id model.FileID
	copy(id[:], sum[:16])
	return id
}

func devInoFileID(dev, ino uint64) model.FileID {
	sum := sha256.Sum256([]byte(fmt.Sprintf("devino:%d:%d", dev, ino)))
	var id model.FileID
	copy(id[:], sum[:16])
	return id
}

func normalizePath(p string) string {
	p = filepath.Clean(p)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.ToLower(p)
	}
	return p
}

func sendEntry(ctx context.Context, entries chan<- model.Entry, e model.Entry) error {
	select {
	case entries <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sendErr(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

func allocSizeFromInfo(info os.FileInfo) int64 {
	if alloc, ok := allocSizeFromStat(info); ok {
		return alloc
	}
	const cluster = 4096
	size := info.Size()
	return ((size + cluster - 1) / cluster) * cluster
}
