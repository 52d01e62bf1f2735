package fsnode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	"quill/internal/domain/repositories"
	fsnodeSvc "quill/internal/domain/services/fsnode"
	"quill/internal/service/auth"
)

// memStore is an in-memory NodeRepository, ProjectRepository and
// TransactionManager. ExecTx snapshots the rows and restores them when fn
// fails, and Delete refuses to orphan children like a foreign key would.
// writes counts every node mutation that reached the store.
type memStore struct {
	mu       sync.Mutex
	nodes    map[string]*models.Node
	projects map[string]*models.Project
	clock    time.Time

	failDelete map[string]bool
	lookups    int
	writes     int
}

func newMemStore() *memStore {
	return &memStore{
		nodes:      make(map[string]*models.Node),
		projects:   make(map[string]*models.Project),
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failDelete: make(map[string]bool),
	}
}

func notFound(kind, id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", kind, id)}
}

func clone(n *models.Node) *models.Node {
	c := *n
	return &c
}

// --- TransactionManager ---

func (m *memStore) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.mu.Lock()
	snapshot := make(map[string]*models.Node, len(m.nodes))
	for id, n := range m.nodes {
		snapshot[id] = clone(n)
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.nodes = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// --- NodeRepository ---

func (m *memStore) Create(ctx context.Context, node *models.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writes++
	m.clock = m.clock.Add(time.Second)
	node.ID = uuid.NewString()
	node.CreatedAt = m.clock
	node.UpdatedAt = m.clock
	m.nodes[node.ID] = clone(node)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id, projectID string) (*models.Node, error) {
	n, err := m.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.ProjectID != projectID {
		return nil, notFound("node", id)
	}
	return n, nil
}

func (m *memStore) GetByIDOnly(ctx context.Context, id string) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok || n.IsDeleted {
		return nil, notFound("node", id)
	}
	return clone(n), nil
}

func (m *memStore) GetTrashedByID(ctx context.Context, id string) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok || !n.IsDeleted {
		return nil, notFound("node", id)
	}
	return clone(n), nil
}

func (m *memStore) GetParentID(ctx context.Context, id string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	n, ok := m.nodes[id]
	if !ok || n.IsDeleted {
		return nil, notFound("node", id)
	}
	return n.ParentID, nil
}

func (m *memStore) MaxSiblingSortOrder(ctx context.Context, projectID string, parentID *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maxOrder := 0
	for _, n := range m.nodes {
		if n.ProjectID == projectID && sameID(n.ParentID, parentID) && n.SortOrder > maxOrder {
			maxOrder = n.SortOrder
		}
	}
	return maxOrder, nil
}

func (m *memStore) Update(ctx context.Context, id string, patch *models.NodePatch) (*models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok || n.IsDeleted {
		return nil, notFound("node", id)
	}
	m.writes++
	if patch.Name != nil {
		n.Name = *patch.Name
	}
	if patch.Description != nil {
		n.Description = patch.Description
	}
	if patch.Content != nil {
		n.Content = patch.Content
	}
	if patch.FileExtension != nil {
		n.FileExtension = patch.FileExtension
	}
	if patch.WordCount != nil {
		n.WordCount = *patch.WordCount
	}
	if patch.SortOrder != nil {
		n.SortOrder = *patch.SortOrder
	}
	if patch.ParentID.Present {
		n.ParentID = patch.ParentID.Value
	}
	if patch.Path != nil {
		n.Path = *patch.Path
	}
	if patch.Depth != nil {
		n.Depth = *patch.Depth
	}
	n.UpdatedAt = patch.UpdatedAt
	return clone(n), nil
}

func (m *memStore) UpdateHierarchy(ctx context.Context, id, path string, depth int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return notFound("node", id)
	}
	m.writes++
	n.Path, n.Depth = path, depth
	return nil
}

func (m *memStore) SetGlobalSequence(ctx context.Context, id string, sequence *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return notFound("node", id)
	}
	m.writes++
	n.GlobalSequence = sequence
	return nil
}

func (m *memStore) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete[id] {
		return &domain.StoreError{Op: "soft delete node", Err: errors.New("injected failure")}
	}
	n, ok := m.nodes[id]
	if !ok || n.IsDeleted {
		return notFound("node", id)
	}
	m.writes++
	n.IsDeleted = true
	n.DeletedAt = &deletedAt
	n.UpdatedAt = deletedAt
	return nil
}

func (m *memStore) Restore(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return notFound("node", id)
	}
	m.writes++
	n.IsDeleted = false
	n.DeletedAt = nil
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete[id] {
		return &domain.StoreError{Op: "delete node", Err: errors.New("injected failure")}
	}
	if _, ok := m.nodes[id]; !ok {
		return notFound("node", id)
	}
	for _, n := range m.nodes {
		if n.ParentID != nil && *n.ParentID == id {
			return &domain.StoreError{Op: "delete node", Err: errors.New("foreign key violation")}
		}
	}
	m.writes++
	delete(m.nodes, id)
	return nil
}

func (m *memStore) ListChildren(ctx context.Context, projectID string, parentID *string) ([]models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Node{}
	for _, n := range m.nodes {
		if n.ProjectID == projectID && !n.IsDeleted && sameID(n.ParentID, parentID) {
			out = append(out, *n)
		}
	}
	sortRows(out)
	return out, nil
}

func (m *memStore) CountChildren(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.nodes {
		if n.ParentID != nil && *n.ParentID == id && !n.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListByProject(ctx context.Context, projectID string) ([]models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Node{}
	for _, n := range m.nodes {
		if n.ProjectID == projectID && !n.IsDeleted {
			out = append(out, *n)
		}
	}
	sortRows(out)
	return out, nil
}

func (m *memStore) ListDescendants(ctx context.Context, id string, includeDeleted bool) ([]models.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Node{}
	frontier := []string{id}
	for len(frontier) > 0 {
		var next []string
		for _, n := range m.nodes {
			if n.ParentID == nil || (n.IsDeleted && !includeDeleted) {
				continue
			}
			for _, p := range frontier {
				if *n.ParentID == p {
					out = append(out, *n)
					next = append(next, n.ID)
				}
			}
		}
		frontier = next
	}
	sortRows(out)
	return out, nil
}

// --- ProjectRepository ---

type memProjects struct{ *memStore }

func (p memProjects) Create(ctx context.Context, project *models.Project) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	project.ID = uuid.NewString()
	c := *project
	p.projects[project.ID] = &c
	return nil
}

func (p memProjects) GetByID(ctx context.Context, id, authorID string) (*models.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	project, ok := p.projects[id]
	if !ok || project.AuthorID != authorID || project.DeletedAt != nil {
		return nil, notFound("project", id)
	}
	c := *project
	return &c, nil
}

func sortRows(rows []models.Node) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Depth != rows[j].Depth {
			return rows[i].Depth < rows[j].Depth
		}
		if rows[i].SortOrder != rows[j].SortOrder {
			return rows[i].SortOrder < rows[j].SortOrder
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
}

// row returns the stored copy of id regardless of trash state
func (m *memStore) row(t *testing.T, id string) *models.Node {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	require.True(t, ok, "node %s not stored", id)
	return clone(n)
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memStore) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[id]
	return ok
}

// --- fixture ---

type fixture struct {
	store     *memStore
	svc       fsnodeSvc.NodeService
	sequencer *Sequencer
	userID    string
	projectID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	projects := memProjects{store}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userID := uuid.NewString()
	project := &models.Project{AuthorID: userID, Title: "Novel"}
	require.NoError(t, projects.Create(context.Background(), project))

	sequencer := NewSequencer(store, logger)
	svc := NewNodeService(
		store,
		store,
		NewContentAnalyzer(),
		NewParentValidator(store),
		auth.NewOwnerBasedAuthorizer(projects, store),
		sequencer,
		Options{DefaultFileExtension: "md", MaxTreeDepth: 64},
		logger,
	)

	return &fixture{
		store:     store,
		svc:       svc,
		sequencer: sequencer,
		userID:    userID,
		projectID: project.ID,
	}
}

func (f *fixture) create(t *testing.T, name string, nodeType models.NodeType, parent *models.Node) *models.Node {
	t.Helper()
	req := &fsnodeSvc.CreateNodeRequest{
		UserID:    f.userID,
		ProjectID: f.projectID,
		Name:      name,
		NodeType:  nodeType,
	}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	node, err := f.svc.CreateNode(context.Background(), req)
	require.NoError(t, err)
	return node
}

func (f *fixture) folder(t *testing.T, name string, parent *models.Node) *models.Node {
	return f.create(t, name, models.NodeTypeFolder, parent)
}

func (f *fixture) file(t *testing.T, name string, parent *models.Node) *models.Node {
	return f.create(t, name, models.NodeTypeFile, parent)
}

// chain creates n nested folders under the project root and returns the deepest
func (f *fixture) chain(t *testing.T, n int) *models.Node {
	t.Helper()
	var parent *models.Node
	for i := 0; i < n; i++ {
		parent = f.folder(t, fmt.Sprintf("L%d", i), parent)
	}
	return parent
}
