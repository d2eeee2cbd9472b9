// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements the login flow: credentials are checked by the
// identity service and the returned token is installed into a session.
package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/validate"
	"github.com/taibuivan/courtside/internal/session"
)

// Authenticator checks user credentials. *identity.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (identity.LoginResult, error)
}

// Service implements the login and logout use cases.
type Service struct {
	authenticator Authenticator
}

// NewService constructs a [Service].
func NewService(authenticator Authenticator) *Service {
	return &Service{authenticator: authenticator}
}

// Credentials is the login form. Username is the account email.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionView is the public shape of a session.
type SessionView struct {
	IsAuthenticated bool           `json:"isAuthenticated"`
	Role            string         `json:"role"`
	User            map[string]any `json:"user"`
}

// ViewOf renders a session snapshot.
func ViewOf(state session.State) SessionView {
	user := make(map[string]any, len(state.User))
	for key, value := range state.User {
		if key == "token" {
			continue
		}
		user[key] = value
	}
	return SessionView{
		IsAuthenticated: state.IsAuthenticated,
		Role:            string(state.Role),
		User:            user,
	}
}

/*
Authenticate checks credentials against the identity service.

Returns:
  - identity.LoginResult: token and user payload
  - error: VALIDATION_ERROR, UNAUTHORIZED or TRANSPORT_FAILURE
*/
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (identity.LoginResult, error) {
	creds.Username = strings.TrimSpace(creds.Username)

	v := &validate.Validator{}
	v.Required("username", creds.Username).Required("password", creds.Password)
	if err := v.Err(); err != nil {
		return identity.LoginResult{}, err
	}

	result, err := s.authenticator.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		ctxutil.GetLogger(ctx).Info("login_rejected",
			slog.String("username", creds.Username),
			slog.String("code", codeOf(err)),
		)
		return identity.LoginResult{}, err
	}
	return result, nil
}

/*
Establish installs a login result into store. A credential that does not
yield an authenticated session (empty or undecodable token) is rejected.
*/
func (s *Service) Establish(ctx context.Context, store *session.Store, result identity.LoginResult) (session.State, error) {
	if err := store.SetCredential(ctx, result.Token, result.User); err != nil {
		return session.State{}, apperr.Internal(err)
	}

	state := store.Snapshot()
	if !state.IsAuthenticated {
		return state, apperr.Unauthorized("The identity service returned an unusable credential")
	}

	ctxutil.GetLogger(ctx).Info("login_succeeded", slog.String("role", string(state.Role)))
	return state, nil
}

// Logout clears the session's credential.
func (s *Service) Logout(ctx context.Context, store *session.Store) error {
	if err := store.Clear(ctx); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func codeOf(err error) string {
	if appErr := apperr.As(err); appErr != nil {
		return appErr.Code
	}
	return apperr.CodeInternal
}
