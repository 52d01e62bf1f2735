package fsnode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "quill/internal/domain/models/fsnode"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func row(id, parent string, nodeType models.NodeType, sortOrder int) models.Node {
	n := models.Node{
		ID:        id,
		ProjectID: "p",
		Name:      id,
		NodeType:  nodeType,
		SortOrder: sortOrder,
		CreatedAt: epoch,
	}
	if parent != "" {
		n.ParentID = &parent
	}
	return n
}

func ids(nodes []models.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestBuildTree_ForwardReferences(t *testing.T) {
	// Children listed before their parents
	flat := []models.Node{
		row("s2", "ch1", models.NodeTypeFile, 2),
		row("s1", "ch1", models.NodeTypeFile, 1),
		row("ch2", "", models.NodeTypeFolder, 2),
		row("ch1", "", models.NodeTypeFolder, 1),
	}

	forest := BuildTree(flat)

	require.Len(t, forest, 2)
	assert.Equal(t, "ch1", forest[0].ID)
	assert.Equal(t, "ch2", forest[1].ID)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "s1", forest[0].Children[0].ID)
	assert.Equal(t, "s2", forest[0].Children[1].ID)
	assert.NotNil(t, forest[1].Children)
	assert.Empty(t, forest[1].Children)
}

func TestBuildTree_SkipsTrashedAndOrphans(t *testing.T) {
	trashed := row("gone", "", models.NodeTypeFolder, 1)
	trashed.IsDeleted = true

	flat := []models.Node{
		trashed,
		row("under-gone", "gone", models.NodeTypeFile, 1),
		row("orphan", "missing", models.NodeTypeFile, 1),
		row("keep", "", models.NodeTypeFile, 2),
		row("keep", "", models.NodeTypeFile, 2),
	}

	forest := BuildTree(flat)
	assert.Equal(t, []string{"keep"}, ids(Flatten(forest)))
}

func TestBuildTree_TieBreak(t *testing.T) {
	early := row("b", "", models.NodeTypeFile, 1)
	late := row("a", "", models.NodeTypeFile, 1)
	late.CreatedAt = epoch.Add(time.Minute)
	sameTime := row("c", "", models.NodeTypeFile, 1)

	forest := BuildTree([]models.Node{late, sameTime, early})

	// sort_order ties fall back to created_at, then id
	assert.Equal(t, []string{"b", "c", "a"}, ids(Flatten(forest)))
}

func TestFlatten_RoundTrip(t *testing.T) {
	flat := []models.Node{
		row("ch1", "", models.NodeTypeFolder, 1),
		row("ch2", "", models.NodeTypeFolder, 2),
		row("s1", "ch1", models.NodeTypeFile, 1),
		row("sub", "ch1", models.NodeTypeFolder, 2),
		row("s3", "ch2", models.NodeTypeFile, 1),
		row("deep", "sub", models.NodeTypeFile, 1),
	}

	out := Flatten(BuildTree(flat))

	assert.Equal(t, []string{"ch1", "s1", "sub", "deep", "ch2", "s3"}, ids(out))
	assert.ElementsMatch(t, ids(flat), ids(out))

	rebuilt := Flatten(BuildTree(out))
	assert.Equal(t, ids(out), ids(rebuilt))
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(BuildTree(nil)))
}

func TestBuildSubtree_PostOrderAndCount(t *testing.T) {
	root := row("f1", "parent-outside", models.NodeTypeFolder, 1)
	trashed := row("t", "f1", models.NodeTypeFile, 3)
	trashed.IsDeleted = true

	descendants := []models.Node{
		row("sub", "f1", models.NodeTypeFolder, 1),
		row("a", "sub", models.NodeTypeFile, 1),
		row("b", "f1", models.NodeTypeFile, 2),
		trashed,
	}

	subtree := BuildSubtree(root, descendants)
	assert.Equal(t, "f1", subtree.ID)
	assert.Equal(t, 4, CountDescendants(subtree))

	order := make([]string, 0)
	for _, n := range PostOrder(subtree) {
		order = append(order, n.ID)
	}
	assert.Equal(t, []string{"a", "sub", "b", "t", "f1"}, order)

	leaf := BuildSubtree(row("x", "", models.NodeTypeFile, 1), nil)
	assert.Zero(t, CountDescendants(leaf))
	assert.Len(t, PostOrder(leaf), 1)
}

func TestHeight(t *testing.T) {
	root := row("root", "", models.NodeTypeFolder, 1)
	assert.Equal(t, 0, Height(BuildSubtree(root, nil)))

	descendants := []models.Node{
		row("a", "root", models.NodeTypeFolder, 1),
		row("b", "root", models.NodeTypeFile, 2),
		row("c", "a", models.NodeTypeFolder, 1),
		row("d", "c", models.NodeTypeFile, 1),
	}
	assert.Equal(t, 3, Height(BuildSubtree(root, descendants)))
}

func TestTrashedWith(t *testing.T) {
	first := epoch.Add(time.Minute)
	second := epoch.Add(time.Hour)
	trashed := func(n models.Node, at time.Time) models.Node {
		n.IsDeleted = true
		n.DeletedAt = &at
		return n
	}

	root := trashed(row("F", "", models.NodeTypeFolder, 1), second)
	descendants := []models.Node{
		trashed(row("a", "F", models.NodeTypeFile, 1), first),
		trashed(row("sub", "F", models.NodeTypeFolder, 2), second),
		trashed(row("s", "sub", models.NodeTypeFile, 1), second),
		trashed(row("old", "sub", models.NodeTypeFolder, 2), first),
		trashed(row("under-old", "old", models.NodeTypeFile, 1), second),
	}

	batch := trashedWith(&root, descendants)
	require.Len(t, batch, 2)
	assert.ElementsMatch(t, []string{"sub", "s"}, ids(batch))
}
