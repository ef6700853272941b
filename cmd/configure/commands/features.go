package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

// NewFeaturesCmd creates the features command group
func NewFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Toggle workspace feature flags",
	}
	cmd.AddCommand(newFeatureToggleCmd("enable", true))
	cmd.AddCommand(newFeatureToggleCmd("disable", false))
	return cmd
}

func newFeatureToggleCmd(verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <feature>",
		Short: verb + " a feature for the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feature := models.Feature(args[0])

			ctx := context.Background()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			err = store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
				workspace, err := uow.Workspaces().LoadDefault(ctx)
				if err != nil {
					return err
				}
				if _, ok := workspace.FeatureFlags[feature]; !ok {
					return fmt.Errorf("unknown feature %q", feature)
				}
				workspace.FeatureFlags[feature] = enabled
				workspace.MarkModified(time.Now().UTC())
				if err := uow.Workspaces().Save(ctx, workspace); err != nil {
					return err
				}
				return uow.EntityEvents().Append(ctx, &models.EntityEvent{
					EntityKind: "workspace",
					EntityID:   workspace.RefID,
					EventName:  "updated",
					Source:     models.EventSourceCLI,
					Version:    workspace.Version,
					Timestamp:  workspace.LastModifiedTime,
				})
			})
			if err != nil {
				return err
			}

			fmt.Printf("Feature %s %sd\n", feature, verb)
			return nil
		},
	}
}
