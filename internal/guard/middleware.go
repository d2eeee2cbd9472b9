// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package guard

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/constants"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/respond"
	"github.com/taibuivan/courtside/internal/session"
)

// Options tells the middleware where browser redirects go.
type Options struct {
	LoginPath   string
	LandingPath string
}

// Require returns chi middleware enforcing rule. Stacking Require calls on
// nested routers composes as AND because each layer short-circuits before
// calling the next.
//
// # Browser vs API
//
// Requests that accept HTML are redirected (login page, or the landing page
// when the role is not allowed). Everything else gets a 401 or 403 envelope.
func Require(rule Rule, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			var principal Principal
			if store := session.FromContext(request.Context()); store != nil {
				principal = store
			}

			decision := rule.Check(principal)
			if decision == Allowed {
				next.ServeHTTP(writer, request)
				return
			}

			ctxutil.GetLogger(request.Context()).Debug("guard_denied",
				slog.String("decision", decision.String()),
				slog.Any("allowed_roles", rule.AllowedRoles),
			)

			if wantsHTML(request) {
				target := opts.LoginPath
				if decision == RedirectForbidden {
					target = opts.LandingPath
				}
				http.Redirect(writer, request, target, http.StatusFound)
				return
			}

			if decision == RedirectToLogin {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			respond.Error(writer, request, apperr.Forbidden("Your role cannot access this resource"))
		})
	}
}

// wantsHTML reports whether the request comes from a browser navigation.
func wantsHTML(request *http.Request) bool {
	return request.Method == http.MethodGet &&
		strings.Contains(request.Header.Get(constants.HeaderAccept), constants.ContentTypeHTMLLower)
}
