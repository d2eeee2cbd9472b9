// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements courtctl, the operator command line for the admin
gateway. It logs in against the identity service, keeps the credential in a
file slot under ~/.courtside, and runs the same
reconciliation sagas as the HTTP API.
*/
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/reconcile"
	"github.com/taibuivan/courtside/internal/session"
)

// sessionID is the slot id of the CLI credential. There is one per user.
const sessionID = "courtctl"

// settings are resolved flag > environment > default.
type settings struct {
	IdentityURL     string        `env:"IDENTITY_API_URL"          envDefault:"http://localhost:8096"`
	PrimaryURL      string        `env:"PRIMARY_API_URL"           envDefault:"http://localhost:8000/api/basketball"`
	ServiceEmail    string        `env:"IDENTITY_SERVICE_EMAIL"`
	ServicePassword string        `env:"IDENTITY_SERVICE_PASSWORD"`
	StateDir        string        `env:"COURTCTL_STATE_DIR"`
	Timeout         time.Duration `env:"UPSTREAM_TIMEOUT"          envDefault:"30s"`
	Output          string        `env:"COURTCTL_OUTPUT"           envDefault:"text"`
}

// app holds what the subcommands share. It is built in PersistentPreRunE.
type app struct {
	settings   settings
	out        io.Writer
	slot       session.Slot
	directory  *identity.Client
	reconciler *reconcile.Service
}

// store restores the CLI credential.
func (a *app) store(ctx context.Context) *session.Store {
	return session.Open(ctx, a.slot, session.Key(sessionID))
}

// Execute runs courtctl and returns the process exit code.
func Execute() int {
	root := newRootCmd(os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	cfg := &a.settings
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring environment: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:           "courtctl",
		Short:         "Operator CLI for the Courtside admin gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.IdentityURL, "identity-url", cfg.IdentityURL, "Identity service base URL")
	flags.StringVar(&cfg.PrimaryURL, "primary-url", cfg.PrimaryURL, "Primary API base URL")
	flags.StringVar(&cfg.ServiceEmail, "service-email", cfg.ServiceEmail, "Identity service account email")
	flags.StringVar(&cfg.ServicePassword, "service-password", cfg.ServicePassword, "Identity service account password")
	flags.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "Directory holding the stored session")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Upstream request timeout")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format (text, json)")

	rootCmd.AddCommand(newLoginCmd(a), newLogoutCmd(a), newWhoamiCmd(a))
	rootCmd.AddCommand(newCoachCmd(a), newStudentCmd(a), newPersonCmd(a))
	return rootCmd
}

func (a *app) init() error {
	var err error
	if a.settings.StateDir != "" {
		a.slot, err = session.NewFileSlot(a.settings.StateDir)
	} else {
		a.slot, err = session.DefaultFileSlot()
	}
	if err != nil {
		return fmt.Errorf("courtctl_state_dir_failed: %w", err)
	}

	a.directory = identity.New(identity.Config{
		BaseURL:         a.settings.IdentityURL,
		Timeout:         a.settings.Timeout,
		ServiceEmail:    a.settings.ServiceEmail,
		ServicePassword: a.settings.ServicePassword,
	})
	primary := gateway.New(gateway.Config{
		Service:       "primary",
		BaseURL:       a.settings.PrimaryURL,
		Timeout:       a.settings.Timeout,
		AuthScheme:    "Bearer",
		SendRole:      true,
		TrailingSlash: true,
	})
	a.reconciler = reconcile.NewService(a.directory, reconcile.NewPrimaryProfiles(primary), reconcile.NewMemoryJournal(), nil)
	return nil
}

// print writes v as indented JSON, or through text when the output is text.
func (a *app) print(v any, text func(io.Writer)) error {
	if a.settings.Output == "json" || text == nil {
		encoder := json.NewEncoder(a.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
	text(a.out)
	return nil
}
