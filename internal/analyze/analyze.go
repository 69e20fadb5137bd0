// Package analyze implements the post-scan analyzers: top-N largest
// files, per-extension size groups, and (opt-in) content-duplicate
// grouping, plus the platform drive-stats sampler the coordinator calls
// before a scan starts.
package analyze

import (
	"sort"
	"strings"

	"github.com/kestrel-tools/volscan/internal/model"
)

// TopFiles returns up to n of the largest files in the tree (directories
// are never included): a depth-first traversal collecting up to 3n
// candidates before the final sort and trim.
func TopFiles(root *model.TreeNode, n int) []model.TopItem {
	if root == nil || n <= 0 {
		return nil
	}

	candidateCap := n * 3
	var candidates []model.TopItem

	var walk func(node *model.TreeNode)
	walk = func(node *model.TreeNode) {
		for _, child := range node.Children {
			if len(candidates) >= candidateCap {
				return
			}
			if child.IsDirectory {
				walk(child)
				continue
			}
			candidates = append(candidates, model.TopItem{
				Name:        child.Name,
				FullPath:    child.FullPath,
				SizeBytes:   child.SizeBytes,
				IsDirectory: false,
			})
		}
	}
	walk(root)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].SizeBytes != candidates[j].SizeBytes {
			return candidates[i].SizeBytes > candidates[j].SizeBytes
		}
		return candidates[i].Name < candidates[j].Name
	})

	if len(candidates) > candidateCap {
		candidates = candidates[:candidateCap]
	}
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

const maxExtensionGroups = 15

// ExtensionGroups summarizes total size and file count per lower-cased
// extension, keeping the top 15 by total size. Files with no extension
// (or a leading/trailing dot only) are excluded from the summary.
func ExtensionGroups(root *model.TreeNode) []model.ExtensionGroup {
	if root == nil {
		return nil
	}

	totals := make(map[string]*model.ExtensionGroup)

	var walk func(node *model.TreeNode)
	walk = func(node *model.TreeNode) {
		for _, child := range node.Children {
			if child.IsDirectory {
				walk(child)
				continue
			}
			ext, ok := extensionOf(child.Name)
			if !ok {
				continue
			}
			g, exists := totals[ext]
			if !exists {
				g = &model.ExtensionGroup{Extension: ext}
				totals[ext] = g
			}
			g.TotalSize += child.SizeBytes
			g.FileCount++
		}
	}
	walk(root)

	groups := make([]model.ExtensionGroup, 0, len(totals))
	for _, g := range totals {
		groups = append(groups, *g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].TotalSize != groups[j].TotalSize {
			return groups[i].TotalSize > groups[j].TotalSize
		}
		return groups[i].Extension < groups[j].Extension
	})
	if len(groups) > maxExtensionGroups {
		groups = groups[:maxExtensionGroups]
	}
	return groups
}

func extensionOf(name string) (string, bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return "", false
	}
	return strings.ToLower(name[idx+1:]), true
}
