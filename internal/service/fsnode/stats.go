package fsnode

import (
	models "quill/internal/domain/models/fsnode"
)

// ComputeStats tallies a flat node list in one pass. Trashed rows are ignored;
// word counts are summed for files only.
func ComputeStats(nodes []models.Node) models.ProjectStats {
	var stats models.ProjectStats
	for i := range nodes {
		n := &nodes[i]
		if n.IsDeleted {
			continue
		}
		switch n.NodeType {
		case models.NodeTypeFile:
			stats.TotalFiles++
			stats.TotalWordCount += n.WordCount
		case models.NodeTypeFolder:
			stats.TotalFolders++
		}
		if n.ParentID == nil {
			stats.RootNodeCount++
		}
	}
	return stats
}
