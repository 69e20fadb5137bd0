package analyze

import (
	"encoding/hex"
	"io"
	"os"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/kestrel-tools/volscan/internal/model"
)

// DuplicateGroups is the opt-in post-scan duplicate finder: it groups files
// by size, then by BLAKE3 content digest within each size group, and
// reports groups with two or more members. It is the only place in the
// system that reads file content.
//
// byteBudget caps total bytes hashed across the whole pass, largest size
// groups first, so a caller can bound the cost on a huge tree; files
// skipped once the budget is exhausted are simply left out of any group.
func DuplicateGroups(root *model.TreeNode, byteBudget int64) []model.DuplicateGroup {
	if root == nil {
		return nil
	}

	bySize := make(map[int64][]*model.TreeNode)
	var walk func(node *model.TreeNode)
	walk = func(node *model.TreeNode) {
		for _, child := range node.Children {
			if child.IsDirectory {
				walk(child)
				continue
			}
			if child.SizeBytes <= 0 {
				continue
			}
			bySize[child.SizeBytes] = append(bySize[child.SizeBytes], child)
		}
	}
	walk(root)

	sizes := make([]int64, 0, len(bySize))
	for size, nodes := range bySize {
		if len(nodes) >= 2 {
			sizes = append(sizes, size)
		}
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })

	var groups []model.DuplicateGroup
	remaining := byteBudget

	for _, size := range sizes {
		nodes := bySize[size]
		byHash := make(map[string][]string)
		for _, n := range nodes {
			if byteBudget > 0 {
				if remaining < size {
					continue
				}
				remaining -= size
			}
			digest, err := hashFile(n.FullPath)
			if err != nil {
				continue
			}
			byHash[digest] = append(byHash[digest], n.FullPath)
		}
		for digest, paths := range byHash {
			if len(paths) < 2 {
				continue
			}
			sort.Strings(paths)
			groups = append(groups, model.DuplicateGroup{
				ContentHash: digest,
				SizeBytes:   size,
				Paths:       paths,
			})
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].SizeBytes*int64(len(groups[i].Paths)) > groups[j].SizeBytes*int64(len(groups[j].Paths))
	})
	return groups
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
