// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package guard decides whether the current principal may enter a subtree.

Evaluation is pure and synchronous: it reads the principal, never the network.
Nested rules compose as AND; the outermost rule is evaluated first and the
first failure wins, so an inner rule can never widen an outer restriction.
*/
package guard

import (
	"slices"

	"github.com/taibuivan/courtside/internal/platform/sec"
)

// Principal is the read-only view of a session the guard needs.
type Principal interface {
	IsAuthenticated() bool
	HasRole(allowed ...sec.Role) bool
}

// Rule associates a subtree with the roles allowed to enter it.
// An empty AllowedRoles means any authenticated principal.
type Rule struct {
	AllowedRoles []sec.Role
}

// Authenticated is the rule for "any logged-in principal".
var Authenticated = Rule{}

// Roles builds a [Rule] for the given roles.
func Roles(roles ...sec.Role) Rule {
	return Rule{AllowedRoles: slices.Clone(roles)}
}

// Decision is the three-way outcome of an evaluation.
type Decision int

const (
	// Allowed means the subtree may be rendered or served.
	Allowed Decision = iota
	// RedirectToLogin means nobody is logged in.
	RedirectToLogin
	// RedirectForbidden means the principal's role is not allowed.
	RedirectForbidden
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Check evaluates a single rule.
func (r Rule) Check(principal Principal) Decision {
	if principal == nil || !principal.IsAuthenticated() {
		return RedirectToLogin
	}
	if len(r.AllowedRoles) > 0 && !principal.HasRole(r.AllowedRoles...) {
		return RedirectForbidden
	}
	return Allowed
}

// Evaluate checks rules from outermost to innermost and returns the first
// non-Allowed decision. Inner rules are not evaluated once one fails.
func Evaluate(principal Principal, rules ...Rule) Decision {
	for _, rule := range rules {
		if decision := rule.Check(principal); decision != Allowed {
			return decision
		}
	}
	if len(rules) == 0 {
		return Authenticated.Check(principal)
	}
	return Allowed
}
