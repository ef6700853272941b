package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the workspace configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var workspace *models.Workspace
			var projects []*models.Project
			err = store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
				var err error
				workspace, err = uow.Workspaces().LoadDefault(ctx)
				if err != nil {
					return err
				}
				projects, err = uow.Projects().FindAll(ctx, workspace.RefID, storage.EntityFilter{})
				return err
			})
			if err != nil {
				return err
			}

			fmt.Printf("Workspace: %s (%s)\n", workspace.Name, workspace.RefID)
			fmt.Printf("Timezone:  %s\n", workspace.Timezone)
			fmt.Println("Features:")
			features := make([]string, 0, len(workspace.FeatureFlags))
			for feature := range workspace.FeatureFlags {
				features = append(features, string(feature))
			}
			sort.Strings(features)
			for _, feature := range features {
				state := "disabled"
				if workspace.FeatureFlags[models.Feature(feature)] {
					state = "enabled"
				}
				fmt.Printf("  %-12s %s\n", feature, state)
			}
			fmt.Println("Projects:")
			for _, project := range projects {
				marker := ""
				if project.RefID == workspace.DefaultProjectRefID {
					marker = " (default)"
				}
				fmt.Printf("  %-12s %s%s\n", project.Key, project.Name, marker)
			}
			return nil
		},
	}
}
