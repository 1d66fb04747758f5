package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

func (r *runner) userCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users in the Postgres users table",
	}

	var password string
	addCmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an API user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if password == "" {
				return errors.New("--password is required")
			}
			if r.opts.OpenUsers == nil {
				return errors.New("user management is not available")
			}

			ctx, cancel := r.context(cmd)
			defer cancel()

			users, closers, err := r.opts.OpenUsers(ctx)
			defer func() {
				if cerr := closers.Close(context.Background()); cerr != nil && err == nil {
					err = cerr
				}
			}()
			if err != nil {
				return err
			}

			user, err := users.CreateUser(ctx, args[0], password)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	addCmd.Flags().StringVar(&password, "password", "", "Password for the new user")

	userCmd.AddCommand(addCmd)
	return userCmd
}
