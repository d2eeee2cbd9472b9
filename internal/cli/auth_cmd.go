// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/courtside/internal/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in against the identity service and store the credential",
		Example: `  courtctl login --username admin@unl.edu.ec --password '...'
  COURTCTL_PASSWORD=... courtctl login --username admin@unl.edu.ec`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("COURTCTL_PASSWORD")
			}

			ctx := cmd.Context()
			service := auth.NewService(a.directory)
			result, err := service.Authenticate(ctx, auth.Credentials{Username: username, Password: password})
			if err != nil {
				return err
			}

			store := a.store(ctx)
			state, err := service.Establish(ctx, store, result)
			if err != nil {
				_ = store.Clear(ctx)
				return err
			}

			view := auth.ViewOf(state)
			return a.print(view, func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s (%s)\n", username, view.Role)
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (or COURTCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := auth.NewService(a.directory).Logout(ctx, a.store(ctx)); err != nil {
				return err
			}
			return a.print(map[string]bool{"isAuthenticated": false}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out")
			})
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := auth.ViewOf(a.store(cmd.Context()).Snapshot())
			return a.print(view, func(w io.Writer) {
				if !view.IsAuthenticated {
					fmt.Fprintln(w, "Not logged in")
					return
				}
				email, _ := view.User["email"].(string)
				fmt.Fprintf(w, "%s (%s)\n", email, view.Role)
			})
		},
	}
}
