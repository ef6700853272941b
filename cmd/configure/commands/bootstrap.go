package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/avancea/ritmo/internal/config"
	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

// bootstrapFile is the YAML shape consumed by the bootstrap command.
type bootstrapFile struct {
	Name           string          `yaml:"name"`
	Timezone       string          `yaml:"timezone"`
	DefaultProject struct {
		Key  string `yaml:"key"`
		Name string `yaml:"name"`
	} `yaml:"default_project"`
	Features map[string]bool `yaml:"features"`
}

// NewBootstrapCmd creates the bootstrap command
func NewBootstrapCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the workspace and default project",
		Long:  "Create the workspace and its default project from a YAML definition. Fails if a workspace already exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}
			var def bootstrapFile
			if err := yaml.Unmarshal(raw, &def); err != nil {
				return fmt.Errorf("failed to parse %s: %w", filePath, err)
			}
			if def.Timezone == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				def.Timezone = cfg.DefaultTimezone
			}
			if def.DefaultProject.Key == "" {
				def.DefaultProject.Key = "personal"
			}
			if def.DefaultProject.Name == "" {
				def.DefaultProject.Name = "Personal"
			}

			ctx := context.Background()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now().UTC()
			var workspace *models.Workspace
			err = store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
				if existing, err := uow.Workspaces().LoadDefault(ctx); err == nil {
					return fmt.Errorf("workspace %q already exists", existing.Name)
				}

				project, err := models.NewProject(uuid.New(), def.DefaultProject.Key, def.DefaultProject.Name, now)
				if err != nil {
					return err
				}
				workspace, err = models.NewWorkspace(def.Name, def.Timezone, project.RefID, now)
				if err != nil {
					return err
				}
				for name, enabled := range def.Features {
					feature := models.Feature(name)
					if _, ok := workspace.FeatureFlags[feature]; !ok {
						return fmt.Errorf("unknown feature %q", name)
					}
					workspace.FeatureFlags[feature] = enabled
				}
				project.WorkspaceRefID = workspace.RefID

				if err := uow.Workspaces().Create(ctx, workspace); err != nil {
					return err
				}
				if err := uow.Projects().Create(ctx, project); err != nil {
					return err
				}
				return uow.EntityEvents().Append(ctx, &models.EntityEvent{
					EntityKind: "workspace",
					EntityID:   workspace.RefID,
					EventName:  "created",
					Source:     models.EventSourceCLI,
					Version:    workspace.Version,
					Timestamp:  workspace.LastModifiedTime,
				})
			})
			if err != nil {
				return err
			}

			fmt.Printf("Workspace %q created (%s)\n", workspace.Name, workspace.RefID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "workspace.yaml", "YAML workspace definition")
	return cmd
}
