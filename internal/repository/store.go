// Package repository selects and opens the node store named by the config.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quill/internal/config"
	"quill/internal/domain/repositories"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
	"quill/internal/repository/postgres"
	postgresFsnode "quill/internal/repository/postgres/fsnode"
	"quill/internal/repository/sqlite"
)

// Store bundles the repositories of one backing database
type Store struct {
	Nodes     fsnodeRepo.NodeRepository
	Projects  fsnodeRepo.ProjectRepository
	TxManager repositories.TransactionManager
	Driver    string

	close func()
}

// Close releases the underlying pool or database handle. Safe to call twice.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

// Open connects to the configured store and creates the schema when missing
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StoreDriverSQLite:
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres store")
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool, cfg.TablePrefix); err != nil {
		pool.Close()
		return nil, err
	}

	stat := pool.Stat()
	logger.Info("database connected",
		"driver", config.StoreDriverPostgres,
		"max_conns", stat.MaxConns(),
		"table_prefix", cfg.TablePrefix,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	return &Store{
		Nodes:     postgresFsnode.NewNodeRepository(repoConfig),
		Projects:  postgresFsnode.NewProjectRepository(repoConfig),
		TxManager: postgres.NewTransactionManager(pool, logger),
		Driver:    config.StoreDriverPostgres,
		close:     pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := sqlite.EnsureSchema(ctx, db, cfg.TablePrefix); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database connected",
		"driver", config.StoreDriverSQLite,
		"path", cfg.SQLitePath,
		"table_prefix", cfg.TablePrefix,
	)

	sqliteConfig := &sqlite.Config{DB: db, Tables: sqlite.NewTableNames(cfg.TablePrefix)}
	return &Store{
		Nodes:     sqlite.NewNodeRepository(sqliteConfig),
		Projects:  sqlite.NewProjectRepository(sqliteConfig),
		TxManager: sqlite.NewTransactionManager(db),
		Driver:    config.StoreDriverSQLite,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Warn("close sqlite", "error", err)
			}
		},
	}, nil
}
