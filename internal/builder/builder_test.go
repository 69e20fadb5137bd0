package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-tools/volscan/internal/model"
)

func fid(n byte) model.FileID {
	var id model.FileID
	id[15] = n
	return id
}

func dirEntry(id, parent byte, name string) model.Entry {
	return model.Entry{FileID: fid(id), ParentFileID: fid(parent), Name: name, Attributes: model.AttrDirectory}
}

func fileEntry(id, parent byte, name string, size int64) model.Entry {
	return model.Entry{FileID: fid(id), ParentFileID: fid(parent), Name: name, Size: size}
}

func childNamed(children []*model.TreeNode, name string) *model.TreeNode {
	for _, c := range children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// S1: an empty volume, only the root observed.
func TestBuildTree_S1_EmptyVolume(t *testing.T) {
	b := New("/vol", nil)
	b.OnEntry(dirEntry(1, 1, ""))

	root := b.BuildTree()

	assert.Equal(t, "", root.Name)
	assert.Equal(t, int64(0), root.SizeBytes)
	assert.Empty(t, root.Children)
}

// S2: root plus a single file.
func TestBuildTree_S2_SingleFile(t *testing.T) {
	b := New("/vol", nil)
	b.OnEntry(dirEntry(1, 1, ""))
	b.OnEntry(fileEntry(2, 1, "a.txt", 1024))

	root := b.BuildTree()

	require.Len(t, root.Children, 1)
	assert.Equal(t, int64(1024), root.SizeBytes)
	assert.Equal(t, "a.txt", root.Children[0].Name)
	assert.Equal(t, int64(1024), root.Children[0].SizeBytes)
}

// S3: nested directories, children sorted by size descending.
func TestBuildTree_S3_NestedAndSorted(t *testing.T) {
	b := New("/vol", nil)
	b.OnEntry(dirEntry(1, 1, ""))
	b.OnEntry(dirEntry(2, 1, "folder1"))
	b.OnEntry(dirEntry(3, 2, "folder2"))
	b.OnEntry(fileEntry(4, 3, "deep.txt", 2048))
	b.OnEntry(fileEntry(5, 2, "another.txt", 1024))

	root := b.BuildTree()

	require.Len(t, root.Children, 1)
	folder1 := root.Children[0]
	assert.Equal(t, "folder1", folder1.Name)
	assert.Equal(t, int64(3072), folder1.SizeBytes)
	assert.Equal(t, int64(3072), root.SizeBytes)

	require.Len(t, folder1.Children, 2)
	assert.Equal(t, "folder2", folder1.Children[0].Name) // 2048 > 1024
	assert.Equal(t, "another.txt", folder1.Children[1].Name)
}

// S4: a duplicated file_id (hard link / repeated observation) is absorbed
// once, never double-counted.
func TestBuildTree_S4_DuplicateIDIgnored(t *testing.T) {
	b := New("/vol", nil)
	b.OnEntry(dirEntry(1, 1, ""))
	b.OnEntry(fileEntry(2, 1, "t.txt", 1024))
	b.OnEntry(fileEntry(2, 1, "dup.txt", 2048)) // same id 2, dropped

	root := b.BuildTree()

	require.Len(t, root.Children, 1)
	assert.Equal(t, int64(1024), root.SizeBytes)
	assert.Equal(t, "t.txt", root.Children[0].Name)
}

// S5: an entry whose parent never arrives is attached under the root, not lost.
func TestBuildTree_S5_OrphanAttachedUnderRoot(t *testing.T) {
	b := New("/vol", nil)
	b.OnEntry(dirEntry(1, 1, ""))
	b.OnEntry(dirEntry(3, 2, "orphan_child")) // parent id 2 never arrives

	root := b.BuildTree()

	require.Len(t, root.Children, 1)
	assert.Equal(t, "orphan_child", root.Children[0].Name)
}

// S6: 10,000 flat files, each present exactly once.
func TestBuildTree_S6_FlatManyFiles(t *testing.T) {
	b := New("/vol", nil)
	b.OnEntry(model.Entry{FileID: model.FileID{0: 1}, ParentFileID: model.FileID{0: 1}, Name: "", Attributes: model.AttrDirectory})

	const n = 10000
	rootID := model.FileID{0: 1}
	for i := 0; i < n; i++ {
		var id model.FileID
		id[0] = 2
		id[8] = byte(i >> 8)
		id[9] = byte(i)
		b.OnEntry(model.Entry{
			FileID:       id,
			ParentFileID: rootID,
			Name:         "file",
			Size:         1024,
		})
	}

	root := b.BuildTree()

	assert.Equal(t, int64(n*1024), root.SizeBytes)
	assert.Len(t, root.Children, n)
}

func TestBuildTree_NoRootObserved_Synthesized(t *testing.T) {
	b := New("/vol/data", nil)
	b.OnEntry(model.Entry{FileID: fid(9), ParentFileID: fid(2), Name: "loose.txt", Size: 512})

	root := b.BuildTree()

	assert.Equal(t, "data", root.Name)
	assert.True(t, root.IsDirectory)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "loose.txt", root.Children[0].Name)
}

func TestBuildTree_SizeInvariant_Recursive(t *testing.T) {
	b := New("/vol", nil)
	b.OnEntry(dirEntry(1, 1, ""))
	b.OnEntry(dirEntry(2, 1, "a"))
	b.OnEntry(dirEntry(3, 2, "b"))
	b.OnEntry(fileEntry(4, 3, "f1", 10))
	b.OnEntry(fileEntry(5, 3, "f2", 20))
	b.OnEntry(fileEntry(6, 1, "f3", 5))

	root := b.BuildTree()

	var checkInvariant func(n *model.TreeNode) int64
	checkInvariant = func(n *model.TreeNode) int64 {
		own := int64(0)
		if !n.IsDirectory {
			own = n.SizeBytes
		}
		var childSum int64
		for _, c := range n.Children {
			childSum += checkInvariant(c)
		}
		assert.Equal(t, own+childSum, n.SizeBytes, "node %s", n.Name)
		return n.SizeBytes
	}
	checkInvariant(root)
	assert.Equal(t, int64(35), root.SizeBytes)
	assert.Equal(t, int64(30), childNamed(root.Children, "a").SizeBytes)
}
