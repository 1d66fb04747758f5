package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"
)

func (r *runner) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every filed flight plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withStore(cmd, func(ctx context.Context, store repository.FlightPlanStore) error {
				plans, err := store.GetAll(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), plans)
			})
		},
	}
}

func (r *runner) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <flight-plan-id>",
		Short: "Show one flight plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, store repository.FlightPlanStore) error {
				plan, err := lookup(ctx, store, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), plan)
			})
		},
	}
}

func (r *runner) fileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file <json-file|->",
		Short: "File a new flight plan and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := readPlan(cmd, args[0])
			if err != nil {
				return err
			}
			return r.withStore(cmd, func(ctx context.Context, store repository.FlightPlanStore) error {
				id, outcome := store.FileFlightPlan(ctx, plan)
				if outcome != entity.Success {
					return fmt.Errorf("filing failed: %s", outcome)
				}
				return printJSON(cmd.OutOrStdout(), map[string]string{"flight_plan_id": id})
			})
		},
	}
}

func (r *runner) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <json-file|->",
		Short: "Replace a flight plan, keyed on its flight_plan_id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := readPlan(cmd, args[0])
			if err != nil {
				return err
			}
			return r.withStore(cmd, func(ctx context.Context, store repository.FlightPlanStore) error {
				switch outcome := store.UpdateByID(ctx, plan.ID, plan); outcome {
				case entity.Success:
					return printJSON(cmd.OutOrStdout(), map[string]string{"flight_plan_id": plan.ID})
				case entity.NotFound:
					return fmt.Errorf("%w: %s", ErrNotFound, plan.ID)
				default:
					return fmt.Errorf("update failed: %s", outcome)
				}
			})
		},
	}
}

func (r *runner) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <flight-plan-id>",
		Short: "Delete a flight plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, store repository.FlightPlanStore) error {
				deleted, err := store.DeleteByID(ctx, args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("%w: %s", ErrNotFound, args[0])
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"flight_plan_id": args[0], "deleted": true})
			})
		},
	}
}

func (r *runner) enrouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enroute <flight-plan-id>",
		Short: "Show the planned time enroute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withStore(cmd, func(ctx context.Context, store repository.FlightPlanStore) error {
				plan, err := lookup(ctx, store, args[0])
				if err != nil {
					return err
				}
				enroute := plan.TimeEnroute()
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"flight_plan_id": plan.ID,
					"time_enroute":   enroute.String(),
					"minutes":        enroute.Minutes(),
				})
			})
		},
	}
}

func lookup(ctx context.Context, store repository.FlightPlanStore, id string) (entity.FlightPlan, error) {
	plan, found, err := store.GetByID(ctx, id)
	if err != nil {
		return entity.FlightPlan{}, err
	}
	if !found {
		return entity.FlightPlan{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return plan, nil
}
