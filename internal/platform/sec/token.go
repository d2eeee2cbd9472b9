// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides credential decoding and role derivation.
//
// # Architecture
//
// Tokens are issued by the identity service and trusted because of the
// transport they arrive on. This package never verifies signatures; it only
// classifies a credential by shape and extracts the claims the rest of the
// application reads (user payload and role).
package sec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a credential cannot be decoded. Callers
// treat it exactly like "no credential".
var ErrInvalidToken = errors.New("sec: invalid token")

// TokenKind tells whether a credential carried its own claims.
type TokenKind int

const (
	// TokenOpaque is a server-issued handle; claims come from the login payload.
	TokenOpaque TokenKind = iota
	// TokenSelfDescribing is a three-segment JWT decoded locally.
	TokenSelfDescribing
)

// Claims is the decoded view of a credential.
type Claims struct {
	// Token is the credential with any scheme prefix removed.
	Token string

	// Kind records how the claims were obtained.
	Kind TokenKind

	// User is the claim set (decoded JWT payload, or the caller's payload).
	User map[string]any

	// Source is the role-bearing input found in User.
	Source RoleSource
}

// Role derives the principal's role. Never empty.
func (c Claims) Role() Role {
	return c.Source.Derive()
}

// Codec decodes raw credentials. The zero value is ready to use.
type Codec struct {
	parser *jwt.Parser
}

// NewCodec creates a [Codec].
func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser()}
}

// StripScheme removes a leading "Bearer " marker (any case) and surrounding space.
func StripScheme(raw string) string {
	token := strings.TrimSpace(raw)
	const scheme = "bearer "
	if len(token) >= len(scheme) && strings.EqualFold(token[:len(scheme)], scheme) {
		token = strings.TrimSpace(token[len(scheme):])
	}
	return token
}

/*
Decode classifies and decodes a credential.

Parameters:
  - raw: string (token as returned by the identity service, optionally "Bearer "-prefixed)
  - payload: map[string]any (user data delivered alongside an opaque token; may be nil)

Returns:
  - Claims: Decoded claims and role source
  - error: [ErrInvalidToken] for empty or undecodable credentials
*/
func (c *Codec) Decode(raw string, payload map[string]any) (Claims, error) {
	token := StripScheme(raw)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	// ── 1. Opaque token ──
	if strings.Count(token, ".") != 2 {
		user := payload
		if user == nil {
			user = map[string]any{}
		}
		return Claims{
			Token:  token,
			Kind:   TokenOpaque,
			User:   user,
			Source: SourceFromClaims(user),
		}, nil
	}

	// ── 2. Self-describing token ──
	parser := c.parser
	if parser == nil {
		parser = jwt.NewParser()
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user := map[string]any(mapClaims)
	return Claims{
		Token:  token,
		Kind:   TokenSelfDescribing,
		User:   user,
		Source: SourceFromClaims(user),
	}, nil
}
