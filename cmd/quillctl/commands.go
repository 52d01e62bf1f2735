package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/config"
	fsnodeSvc "quill/internal/domain/services/fsnode"
	"quill/internal/repository/postgres"
	"quill/internal/repository/sqlite"
	"quill/internal/service/fsnode"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the DDL for the configured store and table prefix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		switch cfg.StoreDriver {
		case config.StoreDriverSQLite:
			fmt.Fprint(cmd.OutOrStdout(), sqlite.SchemaSQL(cfg.TablePrefix))
		default:
			fmt.Fprint(cmd.OutOrStdout(), postgres.SchemaSQL(cfg.TablePrefix))
		}
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectTitle string

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty project owned by --user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, svcs *fsnode.Services) error {
			project, err := svcs.Projects.CreateProject(ctx, &fsnodeSvc.CreateProjectRequest{
				UserID: userID,
				Title:  projectTitle,
			})
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), project, project.ID)
		})
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree PROJECT_ID",
	Short: "Print the live node tree of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, svcs *fsnode.Services) error {
			forest, err := svcs.Nodes.GetProjectTree(ctx, userID, args[0])
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), forest, fsnode.RenderTree(forest))
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats PROJECT_ID",
	Short: "Print file, folder and word totals of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, svcs *fsnode.Services) error {
			stats, err := svcs.Nodes.GetProjectStats(ctx, userID, args[0])
			if err != nil {
				return err
			}
			text := fmt.Sprintf("files: %d\nfolders: %d\nwords: %d\nroot nodes: %d",
				stats.TotalFiles, stats.TotalFolders, stats.TotalWordCount, stats.RootNodeCount)
			return printValue(cmd.OutOrStdout(), stats, text)
		})
	},
}

var resequenceCmd = &cobra.Command{
	Use:   "resequence PROJECT_ID",
	Short: "Renumber the reading order (global_sequence) of a project's files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, svcs *fsnode.Services) error {
			// Ownership check before touching rows
			if _, err := svcs.Projects.GetProject(ctx, userID, args[0]); err != nil {
				return err
			}
			changed, err := svcs.Sequencer.Resequence(ctx, args[0])
			if err != nil {
				return err
			}
			result := map[string]int{"changed": changed}
			return printValue(cmd.OutOrStdout(), result, fmt.Sprintf("%d files renumbered", changed))
		})
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectTitle, "title", "", "Project title")
	_ = projectCreateCmd.MarkFlagRequired("title")
	projectCmd.AddCommand(projectCreateCmd)
}
