package handler

import (
	"net/http"
)

// RegisterRoutes mounts every endpoint on mux
func RegisterRoutes(mux *http.ServeMux, nodes *NodeHandler, trees *TreeHandler, projects *ProjectHandler) {
	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Project routes
	mux.HandleFunc("POST /api/projects", projects.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projects.GetProject)
	mux.HandleFunc("GET /api/projects/{id}/tree", trees.GetTree)
	mux.HandleFunc("GET /api/projects/{id}/stats", trees.GetStats)

	// Node routes
	mux.HandleFunc("POST /api/nodes", nodes.CreateNode)
	mux.HandleFunc("GET /api/nodes/{id}", nodes.GetNode)
	mux.HandleFunc("PATCH /api/nodes/{id}", nodes.UpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", nodes.DeleteNode)
	mux.HandleFunc("PATCH /api/nodes/{id}/move", nodes.MoveNode)
	mux.HandleFunc("POST /api/nodes/{id}/restore", nodes.RestoreNode)
	mux.HandleFunc("GET /api/nodes/{id}/children", nodes.GetChildren)
}
