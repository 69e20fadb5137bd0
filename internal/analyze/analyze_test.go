package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrel-tools/volscan/internal/model"
)

func file(name string, size int64) *model.TreeNode {
	return &model.TreeNode{Name: name, SizeBytes: size}
}

func dir(name string, size int64, children ...*model.TreeNode) *model.TreeNode {
	return &model.TreeNode{Name: name, IsDirectory: true, SizeBytes: size, Children: children}
}

func TestTopFiles_ExcludesDirectoriesAndSortsDescending(t *testing.T) {
	root := dir("", 3072,
		dir("sub", 3072,
			file("small.txt", 1024),
			file("big.bin", 2048),
		),
	)

	top := TopFiles(root, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "big.bin", top[0].Name)
	assert.Equal(t, "small.txt", top[1].Name)
}

func TestTopFiles_RespectsN(t *testing.T) {
	root := dir("", 30, file("a", 10), file("b", 10), file("c", 10))

	top := TopFiles(root, 1)

	assert.Len(t, top, 1)
}

func TestExtensionGroups_BucketsAndSortsBySize(t *testing.T) {
	root := dir("", 0,
		file("a.txt", 100),
		file("b.txt", 200),
		file("c.jpg", 50),
		file("noext", 999),
		file(".hidden", 1),
	)

	groups := ExtensionGroups(root)

	assert.Len(t, groups, 2)
	assert.Equal(t, "txt", groups[0].Extension)
	assert.Equal(t, int64(300), groups[0].TotalSize)
	assert.Equal(t, int64(2), groups[0].FileCount)
	assert.Equal(t, "jpg", groups[1].Extension)
}

func TestExtensionGroups_EmptyTree(t *testing.T) {
	root := dir("", 0)
	assert.Empty(t, ExtensionGroups(root))
}
