// Package builder implements the streaming tree reconstruction the
// scanning core needs: it ingests Entries in arbitrary order and, once the
// stream is exhausted, resolves them into an immutable TreeNode hierarchy.
//
// Entries accumulate keyed by id first, in whatever order they arrive, and
// only once the stream ends does a single pass link children to parents
// and walk the result depth-first to aggregate sizes. That two-phase shape
// keeps the accumulator agnostic to arrival order without needing a
// pending-orphan structure kept up to date incrementally.
package builder

import (
	"path/filepath"
	"sort"

	"github.com/kestrel-tools/volscan/internal/model"
)

// maxPathDepth bounds the parent-chain walk during full-path reconstruction:
// malformed or cyclic linkage must not hang or crash the build.
const maxPathDepth = 100

type nodeBuilder struct {
	entry    model.Entry
	children []model.FileID
}

// TreeBuilder is the single-consumer accumulator a Coordinator drives. Its
// maps are touched from exactly one goroutine; publication of the finished
// tree happens only after BuildTree returns.
type TreeBuilder struct {
	scanRoot string

	nodes       map[model.FileID]*nodeBuilder
	visited     map[model.FileID]struct{}
	rootFileID  model.FileID
	haveRoot    bool
	totalFiles  int64
	totalDirs   int64
	built       bool
	onFault     func(error)
}

// New creates a TreeBuilder bound to scanRoot, the normalized volume path
// entries are ultimately joined under. onFault, if non-nil, receives faults
// recorded during OnEntry/BuildTree; it is never required for correctness.
func New(scanRoot string, onFault func(error)) *TreeBuilder {
	return &TreeBuilder{
		scanRoot: scanRoot,
		nodes:    make(map[model.FileID]*nodeBuilder),
		visited:  make(map[model.FileID]struct{}),
		onFault:  onFault,
	}
}

// TotalFiles and TotalDirs report the running counts maintained as entries
// arrive, useful for progress reporting before BuildTree is called.
func (b *TreeBuilder) TotalFiles() int64 { return b.totalFiles }
func (b *TreeBuilder) TotalDirs() int64  { return b.totalDirs }

// OnEntry ingests one Entry. Legal only while the builder is in its
// Accumulating state (before BuildTree is called).
func (b *TreeBuilder) OnEntry(e model.Entry) {
	if b.built {
		b.fault(model.NewScanError(model.InternalInvariant, "", "OnEntry called after BuildTree", nil))
		return
	}

	if _, dup := b.visited[e.FileID]; dup {
		return // hard link / duplicate id / cycle guard: each unique id counts once
	}
	b.visited[e.FileID] = struct{}{}

	if e.IsDirectory() {
		b.totalDirs++
	} else {
		b.totalFiles++
	}

	// Only the first root-flagged entry becomes the root; a later one (for
	// example an id that happens to equal the NTFS sentinel) stays an
	// ordinary node linked under its own parent.
	if !b.haveRoot && b.isRootEntry(e) {
		b.rootFileID = e.FileID
		b.haveRoot = true
	}

	// Children lists are resolved in one pass at BuildTree time (see
	// there): entries can arrive in any order, so linking incrementally
	// here would need to handle "parent not seen yet" as a special case
	// anyway, with no savings over a single deferred pass.
	b.nodes[e.FileID] = &nodeBuilder{entry: e}
}

// isRootEntry recognizes the volume root under any of the ways a source
// might signal it: an empty name, a name equal to the final segment of the
// scan root, a parent that points at itself, or the NTFS root sentinel.
func (b *TreeBuilder) isRootEntry(e model.Entry) bool {
	if e.Name == "" {
		return true
	}
	if e.Name == filepath.Base(b.scanRoot) {
		return true
	}
	if e.ParentFileID == e.FileID {
		return true
	}
	if e.FileID == model.NTFSRootFileID() {
		return true
	}
	return false
}

// BuildTree finalizes the accumulated entries into an immutable TreeNode
// hierarchy. Legal exactly once, after the Entry stream has been fully
// drained into OnEntry.
func (b *TreeBuilder) BuildTree() *model.TreeNode {
	if b.built {
		b.fault(model.NewScanError(model.InternalInvariant, "", "BuildTree called twice", nil))
	}
	b.built = true

	if !b.haveRoot {
		b.synthesizeRoot()
	}

	// Single linkage pass: OnEntry links nothing, so children lists are
	// built here from scratch. That is simpler and no more expensive than
	// tracking a pending-orphan set incrementally, and it tolerates
	// arbitrary arrival order uniformly.
	childrenByParent := make(map[model.FileID][]model.FileID, len(b.nodes))
	for id, nb := range b.nodes {
		if id == b.rootFileID {
			continue
		}
		parent := nb.entry.ParentFileID
		if _, ok := b.nodes[parent]; !ok {
			parent = b.rootFileID // orphan: attach directly under the root
		}
		childrenByParent[parent] = append(childrenByParent[parent], id)
	}
	for id, nb := range b.nodes {
		nb.children = childrenByParent[id]
	}

	paths := b.reconstructPaths()

	return b.buildNode(b.rootFileID, paths)
}

func (b *TreeBuilder) synthesizeRoot() {
	name := filepath.Base(b.scanRoot)
	var sentinel model.FileID
	sentinel[0] = 0xff // distinguishable from any zero-extended real id
	b.rootFileID = sentinel
	b.nodes[sentinel] = &nodeBuilder{entry: model.Entry{
		FileID:       sentinel,
		ParentFileID: sentinel,
		Name:         name,
		Attributes:   model.AttrDirectory,
	}}
	b.haveRoot = true
}

// reconstructPaths walks each node's parent chain up to maxPathDepth,
// assembling path segments, and joins them under scanRoot.
func (b *TreeBuilder) reconstructPaths() map[model.FileID]string {
	paths := make(map[model.FileID]string, len(b.nodes))
	paths[b.rootFileID] = b.scanRoot

	for id := range b.nodes {
		if id == b.rootFileID {
			continue
		}
		if _, done := paths[id]; done {
			continue
		}
		b.reconstructPath(id, paths)
	}
	return paths
}

func (b *TreeBuilder) reconstructPath(id model.FileID, paths map[model.FileID]string) string {
	if p, ok := paths[id]; ok {
		return p
	}

	var segments []string
	cur := id
	for depth := 0; depth < maxPathDepth; depth++ {
		if p, ok := paths[cur]; ok {
			full := p
			for i := len(segments) - 1; i >= 0; i-- {
				full = filepath.Join(full, segments[i])
			}
			paths[id] = full
			return full
		}
		nb, ok := b.nodes[cur]
		if !ok || cur == b.rootFileID {
			break
		}
		segments = append(segments, nb.entry.Name)
		cur = nb.entry.ParentFileID
		if cur == id {
			break // cycle guard
		}
	}

	// Depth exceeded or chain broken: attach directly under the root
	// rather than fail the whole build (invariant 12).
	nb := b.nodes[id]
	full := filepath.Join(b.scanRoot, nb.entry.Name)
	paths[id] = full
	return full
}

func (b *TreeBuilder) buildNode(id model.FileID, paths map[model.FileID]string) *model.TreeNode {
	nb := b.nodes[id]

	node := &model.TreeNode{
		Name:        nb.entry.Name,
		FullPath:    paths[id],
		IsDirectory: nb.entry.IsDirectory() || id == b.rootFileID,
		SizeBytes:   nb.entry.Size,
	}

	if len(nb.children) > 0 {
		node.Children = make([]*model.TreeNode, 0, len(nb.children))
		var childSum int64
		for _, childID := range nb.children {
			child := b.buildNode(childID, paths)
			node.Children = append(node.Children, child)
			childSum += child.SizeBytes
		}
		node.SizeBytes += childSum
		sort.SliceStable(node.Children, func(i, j int) bool {
			if node.Children[i].SizeBytes != node.Children[j].SizeBytes {
				return node.Children[i].SizeBytes > node.Children[j].SizeBytes
			}
			return node.Children[i].Name < node.Children[j].Name
		})
	}

	return node
}

func (b *TreeBuilder) fault(err error) {
	if b.onFault != nil {
		b.onFault(err)
	}
}
