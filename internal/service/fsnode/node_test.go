package fsnode

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	fsnodeSvc "quill/internal/domain/services/fsnode"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateNode_RootFolderDefaults(t *testing.T) {
	f := newFixture(t)

	ch1 := f.folder(t, "Chapter 1", nil)
	ch2 := f.folder(t, "Chapter 2", nil)

	assert.Nil(t, ch1.ParentID)
	assert.Equal(t, "Chapter 1", ch1.Path)
	assert.Equal(t, 0, ch1.Depth)
	assert.Equal(t, 1, ch1.SortOrder)
	assert.Equal(t, 2, ch2.SortOrder)
	assert.Nil(t, ch1.Content)
	assert.Nil(t, ch1.FileExtension)
}

func TestCreateNode_FileUnderFolder(t *testing.T) {
	f := newFixture(t)
	ch1 := f.folder(t, "Chapter 1", nil)

	scene, err := f.svc.CreateNode(context.Background(), &fsnodeSvc.CreateNodeRequest{
		UserID:    f.userID,
		ProjectID: f.projectID,
		ParentID:  &ch1.ID,
		Name:      "  Scene 1  ",
		NodeType:  models.NodeTypeFile,
		Content:   strPtr("# Opening\n\nThe **rain** fell hard."),
	})
	require.NoError(t, err)

	assert.Equal(t, "Scene 1", scene.Name)
	assert.Equal(t, "Chapter 1/Scene 1", scene.Path)
	assert.Equal(t, 1, scene.Depth)
	assert.Equal(t, 1, scene.SortOrder)
	require.NotNil(t, scene.FileExtension)
	assert.Equal(t, "md", *scene.FileExtension)
	assert.Equal(t, 5, scene.WordCount)
	require.NotNil(t, scene.GlobalSequence)
	assert.Equal(t, 1, *scene.GlobalSequence)
}

func TestCreateNode_SortOrderSkipsTrashedSiblings(t *testing.T) {
	f := newFixture(t)
	f.file(t, "a", nil)
	b := f.file(t, "b", nil)

	_, err := f.svc.DeleteNode(context.Background(), f.userID, b.ID, fsnodeSvc.DeleteOptions{})
	require.NoError(t, err)

	c := f.file(t, "c", nil)
	assert.Equal(t, 3, c.SortOrder)

	restored, err := f.svc.RestoreNode(context.Background(), f.userID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.SortOrder)
}

func TestCreateNode_DepthLimit(t *testing.T) {
	f := newFixture(t)

	// The fixture allows 64 levels: depths 0 through 63
	deepest := f.chain(t, 64)
	assert.Equal(t, 63, deepest.Depth)

	_, err := f.svc.CreateNode(context.Background(), &fsnodeSvc.CreateNodeRequest{
		UserID:    f.userID,
		ProjectID: f.projectID,
		ParentID:  &deepest.ID,
		Name:      "too deep",
		NodeType:  models.NodeTypeFile,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
}

func TestCreateNode_EmptyFile(t *testing.T) {
	f := newFixture(t)

	node, err := f.svc.CreateNode(context.Background(), &fsnodeSvc.CreateNodeRequest{
		UserID:        f.userID,
		ProjectID:     f.projectID,
		Name:          "notes",
		NodeType:      models.NodeTypeFile,
		FileExtension: strPtr(".txt"),
		SortOrder:     intPtr(10),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, node.WordCount)
	assert.Equal(t, "txt", *node.FileExtension)
	assert.Equal(t, 10, node.SortOrder)
}

func TestCreateNode_InvalidParent(t *testing.T) {
	f := newFixture(t)
	ch1 := f.folder(t, "Chapter 1", nil)
	scene := f.file(t, "Scene 1", ch1)

	other := newFixture(t)
	foreign := other.folder(t, "Elsewhere", nil)
	// Make the foreign folder visible to this fixture's store under another project
	f.store.nodes[foreign.ID] = clone(foreign)

	tests := []struct {
		name     string
		parentID string
	}{
		{"parent is a file", scene.ID},
		{"parent does not exist", uuid.NewString()},
		{"parent in another project", foreign.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateNode(context.Background(), &fsnodeSvc.CreateNodeRequest{
				UserID:    f.userID,
				ProjectID: f.projectID,
				ParentID:  strPtr(tt.parentID),
				Name:      "child",
				NodeType:  models.NodeTypeFile,
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidParent), "got %v", err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestCreateNode_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  fsnodeSvc.CreateNodeRequest
	}{
		{"empty name", fsnodeSvc.CreateNodeRequest{Name: "", NodeType: models.NodeTypeFile}},
		{"name with slash", fsnodeSvc.CreateNodeRequest{Name: "a/b", NodeType: models.NodeTypeFolder}},
		{"unknown type", fsnodeSvc.CreateNodeRequest{Name: "x", NodeType: "symlink"}},
		{"folder with content", fsnodeSvc.CreateNodeRequest{Name: "x", NodeType: models.NodeTypeFolder, Content: strPtr("words")}},
		{"empty extension", fsnodeSvc.CreateNodeRequest{Name: "x", NodeType: models.NodeTypeFile, FileExtension: strPtr("")}},
		{"malformed parent id", fsnodeSvc.CreateNodeRequest{Name: "x", NodeType: models.NodeTypeFile, ParentID: strPtr("chapter-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.UserID = f.userID
			req.ProjectID = f.projectID
			_, err := f.svc.CreateNode(context.Background(), &req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestCreateNode_ForeignProjectIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateNode(context.Background(), &fsnodeSvc.CreateNodeRequest{
		UserID:    uuid.NewString(),
		ProjectID: f.projectID,
		Name:      "intruder",
		NodeType:  models.NodeTypeFolder,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMoveNode_FolderUnderItsOwnFile(t *testing.T) {
	f := newFixture(t)
	f1 := f.folder(t, "F1", nil)
	n1 := f.file(t, "N1", f1)

	_, err := f.svc.MoveNode(context.Background(), f.userID, f1.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &n1.ID})
	require.Error(t, err)

	var circular *domain.CircularReferenceError
	require.True(t, errors.As(err, &circular), "got %v", err)
	assert.Equal(t, f1.ID, circular.NodeID)
	assert.Equal(t, n1.ID, circular.ParentID)

	// Aborted before any write
	assert.Nil(t, f.store.row(t, f1.ID).ParentID)
}

func TestMoveNode_SelfParent(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", nil)

	_, err := f.svc.MoveNode(context.Background(), f.userID, a.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &a.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCircularReference))
}

func TestMoveNode_UnderDeepDescendant(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", nil)
	b := f.folder(t, "B", a)
	c := f.folder(t, "C", b)

	_, err := f.svc.UpdateNode(context.Background(), f.userID, a.ID, &fsnodeSvc.UpdateNodeRequest{
		ParentID: models.Some(c.ID),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCircularReference))
}

func TestMoveNode_UnderDeepestFolderIsNotCircular(t *testing.T) {
	f := newFixture(t)
	deepest := f.chain(t, 63)
	x := f.file(t, "x", nil)

	moved, err := f.svc.MoveNode(context.Background(), f.userID, x.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &deepest.ID})
	require.NoError(t, err)
	assert.Equal(t, 63, moved.Depth)

	// A folder with one level below it would push that level past the limit
	g := f.folder(t, "G", nil)
	f.file(t, "inside", g)
	_, err = f.svc.MoveNode(context.Background(), f.userID, g.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &deepest.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
	assert.False(t, errors.Is(err, domain.ErrCircularReference))
	assert.Nil(t, f.store.row(t, g.ID).ParentID)
}

func TestMoveNode_UnderRowsDeeperThanLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Rows stored while the limit was higher
	var parent *models.Node
	for i := 0; i < 70; i++ {
		n := &models.Node{ProjectID: f.projectID, Name: "L", NodeType: models.NodeTypeFolder}
		pos := ComputePathAndDepth(n.Name, parent)
		n.Path, n.Depth = pos.Path, pos.Depth
		if parent != nil {
			n.ParentID = &parent.ID
		}
		require.NoError(t, f.store.Create(ctx, n))
		parent = n
	}
	x := f.file(t, "x", nil)

	_, err := f.svc.MoveNode(ctx, f.userID, x.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &parent.ID})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrCircularReference), "got %v", err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	// A real cycle through the deep chain is still caught
	_, err = f.svc.MoveNode(ctx, f.userID, parent.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &parent.ID})
	assert.True(t, errors.Is(err, domain.ErrCircularReference))
}

func TestMoveNode_ToRoot(t *testing.T) {
	f := newFixture(t)
	f1 := f.folder(t, "F1", nil)
	n1 := f.file(t, "N1", f1)

	moved, err := f.svc.MoveNode(context.Background(), f.userID, n1.ID, &fsnodeSvc.MoveNodeRequest{ParentID: nil})
	require.NoError(t, err)

	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 0, moved.Depth)
	assert.Equal(t, "N1", moved.Path)
	// Appended after F1 at root level
	assert.Equal(t, 2, moved.SortOrder)
}

func TestMoveNode_PropagatesDescendantPositions(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", nil)
	b := f.folder(t, "B", a)
	c := f.folder(t, "C", b)
	scene := f.file(t, "scene", c)
	target := f.folder(t, "Target", nil)
	require.Equal(t, "A/B/C/scene", scene.Path)

	moved, err := f.svc.MoveNode(context.Background(), f.userID, b.ID, &fsnodeSvc.MoveNodeRequest{
		ParentID:  &target.ID,
		SortOrder: intPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, "Target/B", moved.Path)
	assert.Equal(t, 1, moved.Depth)
	assert.Equal(t, 5, moved.SortOrder)

	gotC := f.store.row(t, c.ID)
	assert.Equal(t, "Target/B/C", gotC.Path)
	assert.Equal(t, 2, gotC.Depth)

	gotScene := f.store.row(t, scene.ID)
	assert.Equal(t, "Target/B/C/scene", gotScene.Path)
	assert.Equal(t, 3, gotScene.Depth)
}

func TestMoveNode_ToFileIsInvalidParent(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", nil)
	other := f.file(t, "other", nil)

	_, err := f.svc.MoveNode(context.Background(), f.userID, a.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &other.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParent))
	assert.False(t, errors.Is(err, domain.ErrCircularReference))
}

func TestUpdateNode_RenameFolderPropagates(t *testing.T) {
	f := newFixture(t)
	part := f.folder(t, "Part", nil)
	ch := f.folder(t, "Chapter", part)
	scene := f.file(t, "Scene", ch)

	renamed, err := f.svc.UpdateNode(context.Background(), f.userID, ch.ID, &fsnodeSvc.UpdateNodeRequest{
		Name: strPtr("Prologue"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Part/Prologue", renamed.Path)
	assert.Equal(t, "Part/Prologue/Scene", f.store.row(t, scene.ID).Path)
}

func TestUpdateNode_Content(t *testing.T) {
	f := newFixture(t)
	dir := f.folder(t, "Dir", nil)
	scene := f.file(t, "Scene", nil)

	updated, err := f.svc.UpdateNode(context.Background(), f.userID, scene.ID, &fsnodeSvc.UpdateNodeRequest{
		Content: strPtr("one two three four"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.WordCount)
	assert.Equal(t, "one two three four", *updated.Content)

	_, err = f.svc.UpdateNode(context.Background(), f.userID, dir.ID, &fsnodeSvc.UpdateNodeRequest{
		Content: strPtr("folders hold no prose"),
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.UpdateNode(context.Background(), f.userID, scene.ID, &fsnodeSvc.UpdateNodeRequest{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUpdateNode_NoChangeSkipsWrite(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", nil)

	got, err := f.svc.UpdateNode(context.Background(), f.userID, a.ID, &fsnodeSvc.UpdateNodeRequest{
		Name:     strPtr("A"),
		ParentID: models.Null(),
	})
	require.NoError(t, err)
	assert.Equal(t, a.UpdatedAt, got.UpdatedAt)
}

func TestDeleteNode_NonEmptyFolderReportsChildCount(t *testing.T) {
	f := newFixture(t)
	f1 := f.folder(t, "F1", nil)
	sub := f.folder(t, "Sub", f1)
	a := f.file(t, "a", f1)
	b := f.file(t, "b", sub)

	before := map[string]*models.Node{}
	for _, id := range []string{f1.ID, sub.ID, a.ID, b.ID} {
		before[id] = f.store.row(t, id)
	}
	writes := f.store.writeCount()

	for _, hard := range []bool{false, true} {
		_, err := f.svc.DeleteNode(context.Background(), f.userID, f1.ID, fsnodeSvc.DeleteOptions{HardDelete: hard})
		require.Error(t, err)

		var notEmpty *domain.NotEmptyError
		require.True(t, errors.As(err, &notEmpty), "got %v", err)
		assert.Equal(t, 3, notEmpty.ChildCount)
	}

	assert.Equal(t, writes, f.store.writeCount(), "a refused delete must not write")
	for id, want := range before {
		assert.Equal(t, want, f.store.row(t, id))
	}
}

func TestDeleteNode_EmptyFolderNeedsNoCascade(t *testing.T) {
	f := newFixture(t)
	empty := f.folder(t, "Empty", nil)

	result, err := f.svc.DeleteNode(context.Background(), f.userID, empty.ID, fsnodeSvc.DeleteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeletedCount)
	assert.True(t, f.store.row(t, empty.ID).IsDeleted)
}

func TestDeleteNode_CascadeSoftDelete(t *testing.T) {
	f := newFixture(t)
	f1 := f.folder(t, "F1", nil)
	sub := f.folder(t, "Sub", f1)
	a := f.file(t, "a", sub)
	keep := f.file(t, "keep", nil)

	result, err := f.svc.DeleteNode(context.Background(), f.userID, f1.ID, fsnodeSvc.DeleteOptions{CascadeDelete: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.DeletedCount)

	for _, id := range []string{f1.ID, sub.ID, a.ID} {
		assert.True(t, f.store.row(t, id).IsDeleted)
	}

	tree, err := f.svc.GetProjectTree(context.Background(), f.userID, f.projectID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, keep.ID, tree[0].ID)
}

func TestDeleteNode_CascadeHardIsAtomic(t *testing.T) {
	f := newFixture(t)
	f1 := f.folder(t, "F1", nil)
	a := f.file(t, "a", f1)
	b := f.file(t, "b", f1)

	// The folder itself is deleted last, after both children
	f.store.failDelete[f1.ID] = true

	_, err := f.svc.DeleteNode(context.Background(), f.userID, f1.ID, fsnodeSvc.DeleteOptions{HardDelete: true, CascadeDelete: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreFailure))

	for _, id := range []string{f1.ID, a.ID, b.ID} {
		assert.True(t, f.store.has(id), "node %s should survive the rolled back delete", id)
	}
}

func TestDeleteNode_CascadeHardRemovesSubtree(t *testing.T) {
	f := newFixture(t)
	f1 := f.folder(t, "F1", nil)
	sub := f.folder(t, "Sub", f1)
	a := f.file(t, "a", sub)
	b := f.file(t, "b", f1)

	// A trashed descendant must be purged too
	_, err := f.svc.DeleteNode(context.Background(), f.userID, b.ID, fsnodeSvc.DeleteOptions{})
	require.NoError(t, err)

	result, err := f.svc.DeleteNode(context.Background(), f.userID, f1.ID, fsnodeSvc.DeleteOptions{HardDelete: true, CascadeDelete: true})
	require.NoError(t, err)
	assert.Equal(t, 4, result.DeletedCount)

	for _, id := range []string{f1.ID, sub.ID, a.ID, b.ID} {
		assert.False(t, f.store.has(id))
	}
}

func TestDeleteNode_PurgeFromTrash(t *testing.T) {
	f := newFixture(t)
	scene := f.file(t, "scene", nil)

	_, err := f.svc.DeleteNode(context.Background(), f.userID, scene.ID, fsnodeSvc.DeleteOptions{})
	require.NoError(t, err)
	assert.True(t, f.store.row(t, scene.ID).IsDeleted)

	// Soft deleting again finds nothing live
	_, err = f.svc.DeleteNode(context.Background(), f.userID, scene.ID, fsnodeSvc.DeleteOptions{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	result, err := f.svc.DeleteNode(context.Background(), f.userID, scene.ID, fsnodeSvc.DeleteOptions{HardDelete: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeletedCount)
	assert.False(t, f.store.has(scene.ID))
}

func TestDeleteNode_ForeignUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	scene := f.file(t, "scene", nil)

	_, err := f.svc.DeleteNode(context.Background(), uuid.NewString(), scene.ID, fsnodeSvc.DeleteOptions{HardDelete: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, f.store.has(scene.ID))
}

func TestRestoreNode(t *testing.T) {
	f := newFixture(t)
	f1 := f.folder(t, "F1", nil)
	sub := f.folder(t, "Sub", f1)
	a := f.file(t, "a", sub)

	_, err := f.svc.DeleteNode(context.Background(), f.userID, f1.ID, fsnodeSvc.DeleteOptions{CascadeDelete: true})
	require.NoError(t, err)

	// A child cannot come back while its parent is trashed
	_, err = f.svc.RestoreNode(context.Background(), f.userID, a.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParent))

	restored, err := f.svc.RestoreNode(context.Background(), f.userID, f1.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)

	tree, err := f.svc.GetProjectTree(context.Background(), f.userID, f.projectID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, a.ID, tree[0].Children[0].Children[0].ID)
}

func TestRestoreNode_LeavesEarlierTrashBehind(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, "F", nil)
	a := f.file(t, "a", folder)
	b := f.file(t, "b", folder)

	_, err := f.svc.DeleteNode(context.Background(), f.userID, a.ID, fsnodeSvc.DeleteOptions{})
	require.NoError(t, err)
	_, err = f.svc.DeleteNode(context.Background(), f.userID, folder.ID, fsnodeSvc.DeleteOptions{CascadeDelete: true})
	require.NoError(t, err)

	trashedA := f.store.row(t, a.ID)
	trashedB := f.store.row(t, b.ID)
	require.NotNil(t, trashedA.DeletedAt)
	require.NotNil(t, trashedB.DeletedAt)
	assert.False(t, trashedA.DeletedAt.Equal(*trashedB.DeletedAt))

	_, err = f.svc.RestoreNode(context.Background(), f.userID, folder.ID)
	require.NoError(t, err)

	assert.False(t, f.store.row(t, folder.ID).IsDeleted)
	assert.False(t, f.store.row(t, b.ID).IsDeleted)
	assert.Nil(t, f.store.row(t, b.ID).DeletedAt)
	assert.True(t, f.store.row(t, a.ID).IsDeleted, "a was trashed on its own before the folder")

	// It can still be restored separately now that its parent is live
	restored, err := f.svc.RestoreNode(context.Background(), f.userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "F/a", restored.Path)
}

func TestRestoreNode_DepthLimit(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", nil)
	s := f.file(t, "s", a)
	_, err := f.svc.DeleteNode(context.Background(), f.userID, s.ID, fsnodeSvc.DeleteOptions{})
	require.NoError(t, err)

	// A fits at the deepest level while s is in the trash
	deepest := f.chain(t, 63)
	_, err = f.svc.MoveNode(context.Background(), f.userID, a.ID, &fsnodeSvc.MoveNodeRequest{ParentID: &deepest.ID})
	require.NoError(t, err)

	_, err = f.svc.RestoreNode(context.Background(), f.userID, s.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
	assert.True(t, f.store.row(t, s.ID).IsDeleted)
}

func TestGetProjectTree_SiblingOrder(t *testing.T) {
	f := newFixture(t)
	ch1 := f.folder(t, "Chapter 1", nil)
	s2 := f.file(t, "Scene 2", ch1)
	s1 := f.file(t, "Scene 1", ch1)

	_, err := f.svc.MoveNode(context.Background(), f.userID, s1.ID, &fsnodeSvc.MoveNodeRequest{
		ParentID:  &ch1.ID,
		SortOrder: intPtr(0),
	})
	require.NoError(t, err)

	tree, err := f.svc.GetProjectTree(context.Background(), f.userID, f.projectID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, s1.ID, tree[0].Children[0].ID)
	assert.Equal(t, s2.ID, tree[0].Children[1].ID)

	_, err = f.svc.GetProjectTree(context.Background(), uuid.NewString(), f.projectID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetNodeChildren_Transitive(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", nil)
	b := f.folder(t, "B", a)
	x := f.file(t, "x", a)
	y := f.file(t, "y", b)

	children, err := f.svc.GetNodeChildren(context.Background(), f.userID, a.ID, fsnodeSvc.ChildrenOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, x.ID, y.ID}, ids(children))

	direct, err := f.svc.GetNodeChildren(context.Background(), f.userID, a.ID, fsnodeSvc.ChildrenOptions{DirectOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, x.ID}, ids(direct))

	leaf, err := f.svc.GetNodeChildren(context.Background(), f.userID, x.ID, fsnodeSvc.ChildrenOptions{})
	require.NoError(t, err)
	assert.Empty(t, leaf)
}

func TestGetProjectStats(t *testing.T) {
	f := newFixture(t)
	ch1 := f.folder(t, "Chapter 1", nil)
	_, err := f.svc.CreateNode(context.Background(), &fsnodeSvc.CreateNodeRequest{
		UserID: f.userID, ProjectID: f.projectID, ParentID: &ch1.ID,
		Name: "s1", NodeType: models.NodeTypeFile, Content: strPtr("a b c"),
	})
	require.NoError(t, err)
	_, err = f.svc.CreateNode(context.Background(), &fsnodeSvc.CreateNodeRequest{
		UserID: f.userID, ProjectID: f.projectID,
		Name: "loose", NodeType: models.NodeTypeFile, Content: strPtr("d e"),
	})
	require.NoError(t, err)

	stats, err := f.svc.GetProjectStats(context.Background(), f.userID, f.projectID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStats{TotalFiles: 2, TotalFolders: 1, TotalWordCount: 5, RootNodeCount: 2}, *stats)
}

func TestGlobalSequenceFollowsReadingOrder(t *testing.T) {
	f := newFixture(t)
	ch1 := f.folder(t, "Chapter 1", nil)
	ch2 := f.folder(t, "Chapter 2", nil)
	s1 := f.file(t, "s1", ch1)
	s2 := f.file(t, "s2", ch1)
	s3 := f.file(t, "s3", ch2)

	seq := func(id string) int {
		n := f.store.row(t, id)
		require.NotNil(t, n.GlobalSequence)
		return *n.GlobalSequence
	}
	assert.Equal(t, []int{1, 2, 3}, []int{seq(s1.ID), seq(s2.ID), seq(s3.ID)})

	_, err := f.svc.MoveNode(context.Background(), f.userID, s3.ID, &fsnodeSvc.MoveNodeRequest{
		ParentID:  &ch1.ID,
		SortOrder: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{seq(s3.ID), seq(s1.ID), seq(s2.ID)})

	changed, err := f.sequencer.Resequence(context.Background(), f.projectID)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
