// Package cli implements flightplanctl, the operator command line for the
// flight plan store.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flightplan-service/internal/app"
	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"
)

// ErrNotFound is returned when the named flight plan does not exist.
var ErrNotFound = errors.New("flight plan not found")

// StoreOpener opens the configured flight plan store.
type StoreOpener func(ctx context.Context) (repository.FlightPlanStore, app.Closers, error)

// UserAdmin creates API users.
type UserAdmin interface {
	CreateUser(ctx context.Context, username, password string) (*entity.User, error)
}

// UserAdminOpener opens the users table.
type UserAdminOpener func(ctx context.Context) (UserAdmin, app.Closers, error)

type Options struct {
	OpenStore StoreOpener
	OpenUsers UserAdminOpener
	Version   string
}

type runner struct {
	opts    Options
	timeout time.Duration
}

// NewRootCommand builds the command tree
func NewRootCommand(opts Options) *cobra.Command {
	r := &runner{opts: opts}

	root := &cobra.Command{
		Use:           "flightplanctl",
		Short:         "Inspect and edit filed flight plans",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&r.timeout, "timeout", 30*time.Second, "Deadline for the whole command")

	root.AddCommand(
		r.listCmd(),
		r.getCmd(),
		r.fileCmd(),
		r.updateCmd(),
		r.deleteCmd(),
		r.enrouteCmd(),
		r.userCmd(),
	)
	return root
}

// Execute runs the root command
func Execute(opts Options) error {
	if err := NewRootCommand(opts).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// withStore opens the store for the duration of fn
func (r *runner) withStore(cmd *cobra.Command, fn func(ctx context.Context, store repository.FlightPlanStore) error) (err error) {
	ctx, cancel := r.context(cmd)
	defer cancel()

	store, closers, err := r.opts.OpenStore(ctx)
	defer func() {
		if cerr := closers.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err != nil {
		return err
	}
	return fn(ctx, store)
}

func (r *runner) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPlan decodes a flight plan from path, or from stdin when path is "-"
func readPlan(cmd *cobra.Command, path string) (entity.FlightPlan, error) {
	var in io.Reader
	if path == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return entity.FlightPlan{}, err
		}
		defer f.Close()
		in = f
	}

	var plan entity.FlightPlan
	if err := json.NewDecoder(in).Decode(&plan); err != nil {
		return entity.FlightPlan{}, fmt.Errorf("failed to decode flight plan: %w", err)
	}
	return plan, nil
}
