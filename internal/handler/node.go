package handler

import (
	"log/slog"
	"net/http"

	models "quill/internal/domain/models/fsnode"
	fsnodeSvc "quill/internal/domain/services/fsnode"
	"quill/internal/httputil"
)

// NodeHandler handles file and folder HTTP requests
type NodeHandler struct {
	nodeService fsnodeSvc.NodeService
	logger      *slog.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(nodeService fsnodeSvc.NodeService, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{
		nodeService: nodeService,
		logger:      logger,
	}
}

// updateNodeBody is the PATCH body. parent_id is tri-state: absent keeps
// the parent, null moves to root, a string moves under that folder.
type updateNodeBody struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Content     *string                 `json:"content"`
	SortOrder   *int                    `json:"sort_order"`
	ParentID    httputil.OptionalString `json:"parent_id"`
}

// moveNodeBody requires parent_id to be sent, null meaning root
type moveNodeBody struct {
	ParentID  httputil.OptionalString `json:"parent_id"`
	SortOrder *int                    `json:"sort_order"`
}

// toOptionalID maps the transport tri-state onto the domain one.
// An empty string is treated like null.
func toOptionalID(o httputil.OptionalString) models.OptionalID {
	if !o.Present {
		return models.OptionalID{}
	}
	if o.Value == nil || *o.Value == "" {
		return models.Null()
	}
	return models.Some(*o.Value)
}

// CreateNode creates a folder or file
// POST /api/nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req fsnodeSvc.CreateNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = httputil.GetUserID(r)

	node, err := h.nodeService.CreateNode(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, node)
}

// GetNode retrieves a live node
// GET /api/nodes/{id}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Node ID")
	if !ok {
		return
	}

	node, err := h.nodeService.GetNode(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// UpdateNode renames, edits or moves a node
// PATCH /api/nodes/{id}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Node ID")
	if !ok {
		return
	}

	var body updateNodeBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &fsnodeSvc.UpdateNodeRequest{
		Name:        body.Name,
		Description: body.Description,
		Content:     body.Content,
		SortOrder:   body.SortOrder,
		ParentID:    toOptionalID(body.ParentID),
	}

	node, err := h.nodeService.UpdateNode(r.Context(), httputil.GetUserID(r), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// MoveNode changes the parent (and optionally the sort order) of a node
// PATCH /api/nodes/{id}/move
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Node ID")
	if !ok {
		return
	}

	var body moveNodeBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !body.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "parent_id is required (null moves to root)")
		return
	}

	req := &fsnodeSvc.MoveNodeRequest{
		ParentID:  toOptionalID(body.ParentID).Value,
		SortOrder: body.SortOrder,
	}

	node, err := h.nodeService.MoveNode(r.Context(), httputil.GetUserID(r), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// DeleteNode trashes or purges a node
// DELETE /api/nodes/{id}?hard=true&cascade=true
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Node ID")
	if !ok {
		return
	}

	hard, err := httputil.QueryBool(r, "hard", false)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cascade, err := httputil.QueryBool(r, "cascade", false)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.nodeService.DeleteNode(r.Context(), httputil.GetUserID(r), id, fsnodeSvc.DeleteOptions{
		HardDelete:    hard,
		CascadeDelete: cascade,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RestoreNode takes a node out of the trash
// POST /api/nodes/{id}/restore
func (h *NodeHandler) RestoreNode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Node ID")
	if !ok {
		return
	}

	node, err := h.nodeService.RestoreNode(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// GetChildren lists every live descendant of a node, shallowest first.
// ?direct=true limits the listing to immediate children.
// GET /api/nodes/{id}/children
func (h *NodeHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Node ID")
	if !ok {
		return
	}

	direct, err := httputil.QueryBool(r, "direct", false)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	children, err := h.nodeService.GetNodeChildren(r.Context(), httputil.GetUserID(r), id,
		fsnodeSvc.ChildrenOptions{DirectOnly: direct})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, children)
}
