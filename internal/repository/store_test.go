package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/config"
	models "quill/internal/domain/models/fsnode"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: config.StoreDriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "quill.db"),
		TablePrefix: "test_",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, config.StoreDriverSQLite, store.Driver)

	project := &models.Project{AuthorID: "author", Title: "Novel"}
	require.NoError(t, store.Projects.Create(context.Background(), project))

	// Reopening finds the existing schema and rows
	store.Close()
	reopened, err := Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Projects.GetByID(context.Background(), project.ID, "author")
	require.NoError(t, err)
	assert.Equal(t, "Novel", got.Title)
}

func TestOpen_PostgresRequiresURL(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.StoreDriverPostgres}
	_, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{StoreDriver: "mysql"}
	_, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
