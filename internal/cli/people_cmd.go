// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/taibuivan/courtside/internal/reconcile"
	"github.com/taibuivan/courtside/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run `courtctl login` first")

// credentials returns the stored session, failing when it holds no credential.
func (a *app) credentials(ctx context.Context) (*session.Store, error) {
	store := a.store(ctx)
	if !store.IsAuthenticated() {
		return nil, errNotLoggedIn
	}
	return store, nil
}

func personFlags(cmd *cobra.Command, person *reconcile.PersonFields) {
	flags := cmd.Flags()
	flags.StringVar(&person.FirstName, "nombre", "", "First name")
	flags.StringVar(&person.LastName, "apellido", "", "Last name")
	flags.StringVar(&person.Identification, "dni", "", "National identification (cedula)")
	flags.StringVar(&person.Email, "email", "", "Account email")
	flags.StringVar(&person.Password, "clave", "", "Initial account password")
	flags.StringVar(&person.Phone, "telefono", "", "Phone number")
	flags.StringVar(&person.Address, "direccion", "", "Address")
}

// runSaga creates the person and the profile, printing the saga even when it
// failed part way so the operator can see where it stopped.
func (a *app) runSaga(cmd *cobra.Command, person reconcile.PersonFields, profile reconcile.ProfileSpec) error {
	ctx := cmd.Context()
	store, err := a.credentials(ctx)
	if err != nil {
		return err
	}

	saga, err := a.reconciler.CreatePersonThenProfile(ctx, store, person, profile)
	if saga != nil {
		if printErr := a.print(saga, func(w io.Writer) { printSaga(w, saga) }); printErr != nil {
			return printErr
		}
	}
	return err
}

func printSaga(w io.Writer, saga *reconcile.Saga) {
	fmt.Fprintf(w, "saga %s  %s  %s\n", saga.ID, saga.Kind, saga.Outcome())
	if saga.ExternalID != "" {
		fmt.Fprintf(w, "  person   %s\n", saga.ExternalID)
	}
	if saga.ProfileID != "" {
		fmt.Fprintf(w, "  profile  %s\n", saga.ProfileID)
	}
	if saga.Orphaned() {
		fmt.Fprintf(w, "  orphaned person %s (%s) needs manual cleanup\n", saga.Identification, saga.Email)
	}
}

func newCoachCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "coach", Short: "Coach accounts"}

	var (
		person reconcile.PersonFields
		coach  reconcile.CoachProfile
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create the identity person and the coach profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSaga(cmd, person, reconcile.ProfileSpec{Kind: reconcile.KindCoach, Coach: coach})
		},
	}
	personFlags(create, &person)
	create.Flags().StringVar(&coach.Specialty, "especialidad", "", "Coaching specialty")
	create.Flags().StringVar(&coach.Club, "club", "", "Assigned club")

	cmd.AddCommand(create)
	return cmd
}

func newStudentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "student", Short: "Vinculation student accounts"}

	var (
		person  reconcile.PersonFields
		student reconcile.StudentProfile
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create the identity person and the student profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSaga(cmd, person, reconcile.ProfileSpec{Kind: reconcile.KindStudent, Student: student})
		},
	}
	personFlags(create, &person)
	flags := create.Flags()
	flags.StringVar(&student.Career, "carrera", "", "Career")
	flags.StringVar(&student.Semester, "semestre", "", "Semester")
	flags.StringVar(&student.University, "universidad", "", "University")
	flags.StringVar(&student.StartDate, "fecha-inicio", "", "Start date (YYYY-MM-DD)")
	flags.StringVar(&student.EndDate, "fecha-fin", "", "End date (YYYY-MM-DD)")

	cmd.AddCommand(create)
	return cmd
}

func newPersonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "person", Short: "Identity persons"}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <external-id>",
		Short: "Show a person by external id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.credentials(ctx); err != nil {
				return err
			}

			person, err := a.reconciler.ResolveByExternalID(ctx, args[0])
			if err != nil {
				return err
			}
			return a.print(person, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", person.FirstName, person.LastName)
				fmt.Fprintf(w, "  external  %s\n", person.ExternalID)
				fmt.Fprintf(w, "  dni       %s\n", person.Identification)
				fmt.Fprintf(w, "  email     %s\n", person.Email)
				fmt.Fprintf(w, "  role      %s\n", person.Statement)
			})
		},
	})
	return cmd
}
