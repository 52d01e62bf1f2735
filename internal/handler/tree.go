package handler

import (
	"log/slog"
	"net/http"

	fsnodeSvc "quill/internal/domain/services/fsnode"
	"quill/internal/httputil"
)

// TreeHandler serves read-only views over a whole project
type TreeHandler struct {
	nodeService fsnodeSvc.NodeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(nodeService fsnodeSvc.NodeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		nodeService: nodeService,
		logger:      logger,
	}
}

// GetTree returns the nested folder/file forest for a project
// GET /api/projects/{id}/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id", "Project ID")
	if !ok {
		return
	}

	// Get userID from context (set by auth middleware)
	userID := httputil.GetUserID(r)

	tree, err := h.nodeService.GetProjectTree(r.Context(), userID, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetStats returns file, folder and word totals for a project
// GET /api/projects/{id}/stats
func (h *TreeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id", "Project ID")
	if !ok {
		return
	}

	stats, err := h.nodeService.GetProjectStats(r.Context(), httputil.GetUserID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
