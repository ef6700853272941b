package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/storage"
)

const vacationDateLayout = "2006-01-02"

// NewVacationsCmd creates the vacations command group
func NewVacationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vacations",
		Short: "Manage vacations",
		Long:  "Manage the vacations that pause recurring task generation",
	}
	cmd.AddCommand(newVacationsListCmd())
	cmd.AddCommand(newVacationsAddCmd())
	cmd.AddCommand(newVacationsRemoveCmd())
	return cmd
}

func newVacationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List vacations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var vacations []*models.Vacation
			err = store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
				workspace, err := uow.Workspaces().LoadDefault(ctx)
				if err != nil {
					return err
				}
				vacations, err = uow.Vacations().FindAll(ctx, workspace.RefID, storage.EntityFilter{})
				return err
			})
			if err != nil {
				return err
			}

			if len(vacations) == 0 {
				fmt.Println("No vacations")
				return nil
			}
			for _, vacation := range vacations {
				fmt.Printf("%s  %s to %s  %s\n",
					vacation.RefID,
					vacation.StartDate.Format(vacationDateLayout),
					vacation.EndDate.Format(vacationDateLayout),
					vacation.Name)
			}
			return nil
		},
	}
}

func newVacationsAddCmd() *cobra.Command {
	var name, start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a vacation",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse(vacationDateLayout, start)
			if err != nil {
				return fmt.Errorf("invalid start date %q: %w", start, err)
			}
			endDate, err := time.Parse(vacationDateLayout, end)
			if err != nil {
				return fmt.Errorf("invalid end date %q: %w", end, err)
			}

			ctx := context.Background()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now().UTC()
			var vacation *models.Vacation
			err = store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
				workspace, err := uow.Workspaces().LoadDefault(ctx)
				if err != nil {
					return err
				}
				if !workspace.IsFeatureAvailable(models.FeatureVacations) {
					return &models.FeatureUnavailableError{Feature: string(models.FeatureVacations)}
				}
				vacation, err = models.NewVacation(workspace.RefID, name, startDate, endDate, now)
				if err != nil {
					return err
				}
				if err := uow.Vacations().Create(ctx, vacation); err != nil {
					return err
				}
				return uow.EntityEvents().Append(ctx, &models.EntityEvent{
					EntityKind: "vacation",
					EntityID:   vacation.RefID,
					EventName:  "created",
					Source:     models.EventSourceCLI,
					Version:    vacation.Version,
					Timestamp:  vacation.LastModifiedTime,
				})
			})
			if err != nil {
				return err
			}

			fmt.Printf("Vacation %q added (%s)\n", vacation.Name, vacation.RefID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "vacation name")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newVacationsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <ref-id>",
		Short: "Archive a vacation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid vacation id %q: %w", args[0], err)
			}

			ctx := context.Background()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now().UTC()
			err = store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
				workspace, err := uow.Workspaces().LoadDefault(ctx)
				if err != nil {
					return err
				}
				vacation, err := uow.Vacations().Load(ctx, refID, false)
				if err != nil {
					return err
				}
				if vacation.WorkspaceRefID != workspace.RefID {
					return models.ErrNotFound
				}
				vacation.MarkArchived(now)
				if err := uow.Vacations().Save(ctx, vacation); err != nil {
					return err
				}
				return uow.EntityEvents().Append(ctx, &models.EntityEvent{
					EntityKind: "vacation",
					EntityID:   vacation.RefID,
					EventName:  "removed",
					Source:     models.EventSourceCLI,
					Version:    vacation.Version,
					Timestamp:  vacation.LastModifiedTime,
				})
			})
			if err != nil {
				return err
			}

			fmt.Println("Vacation archived")
			return nil
		},
	}
}
