package fsnode

import (
	"log/slog"

	"quill/internal/config"
	"quill/internal/domain/repositories"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
	fsnodeSvc "quill/internal/domain/services/fsnode"
	"quill/internal/service/auth"
)

// Services holds the node subsystem's services
type Services struct {
	Nodes     fsnodeSvc.NodeService
	Projects  fsnodeSvc.ProjectService
	Sequencer *Sequencer
}

// SetupServices wires the node services on top of a store
func SetupServices(
	nodeRepo fsnodeRepo.NodeRepository,
	projectRepo fsnodeRepo.ProjectRepository,
	txManager repositories.TransactionManager,
	cfg *config.Config,
	logger *slog.Logger,
) *Services {
	sequencer := NewSequencer(nodeRepo, logger)
	nodes := NewNodeService(
		nodeRepo,
		txManager,
		NewContentAnalyzer(),
		NewParentValidator(nodeRepo),
		auth.NewOwnerBasedAuthorizer(projectRepo, nodeRepo),
		sequencer,
		Options{
			DefaultFileExtension: cfg.DefaultFileExtension,
			MaxTreeDepth:         cfg.MaxTreeDepth,
		},
		logger,
	)

	return &Services{
		Nodes:     nodes,
		Projects:  NewProjectService(projectRepo, logger),
		Sequencer: sequencer,
	}
}
