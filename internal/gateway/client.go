// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package gateway is the outbound HTTP transport to the upstream services.

A [Client] is bound to a credential source with [Client.Bind]; the resulting
[Caller] attaches the credential to every request and classifies responses
into [apperr.AppError] values. Credentials are always injected explicitly,
never read from ambient state.

Classification:

  - 2xx: body decoded into the caller's target
  - 401: credential cleared, UNAUTHORIZED
  - 400/422: VALIDATION_ERROR with upstream field messages
  - 403/404/5xx: logged, FORBIDDEN / NOT_FOUND / UPSTREAM_ERROR
  - no response: TRANSPORT_FAILURE
*/
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/constants"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/metrics"
	"github.com/taibuivan/courtside/internal/platform/sec"
)

// maxResponseBytes caps upstream bodies read into memory.
const maxResponseBytes = 8 << 20

// Credentials is the credential source a [Caller] reads on every request.
// *session.Store satisfies it.
type Credentials interface {
	Token() string
	Role() sec.Role
	Clear(ctx context.Context) error
}

// Config describes one upstream service.
type Config struct {
	// Service labels logs and metrics ("primary", "identity").
	Service string
	BaseURL string
	Timeout time.Duration

	// AuthScheme prefixes the token in the Authorization header. Empty sends
	// the raw token.
	AuthScheme string

	// SendRole adds the X-Role header.
	SendRole bool

	// TrailingSlash appends "/" to every path that lacks one.
	TrailingSlash bool

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// Client is a configured upstream transport. It is safe for concurrent use.
type Client struct {
	config Config
	http   *http.Client
}

// New creates a [Client].
func New(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{config: config, http: httpClient}
}

// Service returns the service label.
func (c *Client) Service() string {
	return c.config.Service
}

// Bind returns a [Caller] that authenticates with creds. A nil creds yields
// an unauthenticated caller.
func (c *Client) Bind(creds Credentials) *Caller {
	return &Caller{client: c, creds: creds}
}

// Caller performs requests with a fixed credential source.
type Caller struct {
	client *Client
	creds  Credentials
}

// Request describes one upstream call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// StatusError carries a non-2xx upstream response. It is attached as the
// Cause of the classified [apperr.AppError].
type StatusError struct {
	Service string
	Status  int
	Body    []byte
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d", e.Service, e.Status)
}

// AsStatusError extracts a [*StatusError] from err's chain.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	ok := errors.As(err, &statusErr)
	return statusErr, ok
}

// Get issues a GET request.
func (c *Caller) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST request.
func (c *Caller) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT request.
func (c *Caller) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues a DELETE request.
func (c *Caller) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

/*
Do performs one request and classifies the response.

Parameters:
  - ctx: context.Context (cancellation and request-scoped logger)
  - req: Request
  - out: any (decode target for 2xx bodies; nil discards)

Returns:
  - error: *apperr.AppError for every failure mode
*/
func (c *Caller) Do(ctx context.Context, req Request, out any) error {
	config := c.client.config
	logger := ctxutil.GetLogger(ctx).With(
		slog.String("service", config.Service),
		slog.String("upstream_method", req.Method),
		slog.String("upstream_path", req.Path),
	)

	// ── 1. Build ──
	httpRequest, err := c.build(ctx, req)
	if err != nil {
		return apperr.Internal(err)
	}

	// ── 2. Send ──
	start := time.Now()
	response, err := c.client.http.Do(httpRequest)
	if err != nil {
		config.Metrics.ObserveUpstream(config.Service, req.Method, 0, time.Since(start))
		if ctx.Err() != nil {
			return apperr.TransportFailure(ctx.Err())
		}
		logger.Warn("upstream_unreachable", slog.Any("error", err))
		return apperr.TransportFailure(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	config.Metrics.ObserveUpstream(config.Service, req.Method, response.StatusCode, time.Since(start))
	if err != nil {
		logger.Warn("upstream_body_read_failed", slog.Any("error", err))
		return apperr.TransportFailure(err)
	}

	// ── 3. Classify ──
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			logger.Error("upstream_decode_failed", slog.Any("error", err))
			return apperr.Upstream("The upstream service returned an unreadable response", err)
		}
		return nil
	}

	return c.classify(ctx, logger, response.StatusCode, body)
}

func (c *Caller) build(ctx context.Context, req Request) (*http.Request, error) {
	config := c.client.config

	target := config.BaseURL + normalizePath(req.Path, config.TrailingSlash)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("gateway_encode_failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("gateway_request_failed: %w", err)
	}

	httpRequest.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	if reader != nil {
		httpRequest.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		httpRequest.Header.Set(constants.HeaderXRequestID, requestID)
	}

	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			value := token
			if config.AuthScheme != "" {
				value = config.AuthScheme + " " + token
			}
			httpRequest.Header.Set(constants.HeaderAuthorization, value)
		}
		if role := c.creds.Role(); config.SendRole && role != "" {
			httpRequest.Header.Set(constants.HeaderXRole, string(role))
		}
	}

	return httpRequest, nil
}

func (c *Caller) classify(ctx context.Context, logger *slog.Logger, status int, body []byte) error {
	cause := &StatusError{Service: c.client.config.Service, Status: status, Body: body}
	message, details := parseErrorBody(body)

	switch {
	case status == http.StatusUnauthorized:
		if c.creds != nil {
			if err := c.creds.Clear(ctx); err != nil {
				logger.Error("upstream_unauthorized_clear_failed", slog.Any("error", err))
			}
		}
		logger.Info("upstream_unauthorized")
		return apperr.Unauthorized("Your session has expired. Please log in again.").WithCause(cause)

	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if message == "" {
			message = "The upstream service rejected the request"
		}
		validation := apperr.ValidationError(message, details...)
		return validation.WithCause(cause)

	case status == http.StatusForbidden:
		logger.Warn("upstream_forbidden", slog.String("message", message))
		if message == "" {
			message = "You do not have permission to perform this action"
		}
		return apperr.Forbidden(message).WithCause(cause)

	case status == http.StatusNotFound:
		logger.Warn("upstream_not_found", slog.String("message", message))
		notFound := apperr.NotFound("Resource").WithCause(cause)
		if message != "" {
			notFound.Message = message
		}
		return notFound

	case status == http.StatusConflict:
		if message == "" {
			message = "The resource already exists"
		}
		return apperr.Conflict(message).WithCause(cause)

	default:
		logger.Error("upstream_failed", slog.Int("status", status), slog.String("message", message))
		return apperr.Upstream(message, cause)
	}
}

// normalizePath ensures a leading slash and, when requested, a trailing one.
func normalizePath(path string, trailing bool) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if trailing && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}
