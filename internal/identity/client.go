// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity is the typed client for the identity (user-module) service.

User logins go out unauthenticated. Every other call runs under a service
account whose token is fetched lazily and sent raw in the Authorization
header. A 401 clears that token, triggers one re-login and replays the
request once; a second 401 is returned to the caller.

Responses arrive in the {status, data, message, errors} envelope. The HTTP
status alone is not trusted: the service answers 200 with status "error"
for lookups that found nothing.
*/
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/metrics"
	"github.com/taibuivan/courtside/internal/platform/sec"
)

// Fixed identity-service endpoints.
const (
	pathLogin                = "/api/person/login"
	pathSaveAccount          = "/api/person/save-account"
	pathSearchIdentification = "/api/person/search_identification/"
	pathSearch               = "/api/person/search/"
	pathUpdate               = "/api/person/update"
	pathAll                  = "/api/person/all"
)

// ServiceName labels identity traffic in logs and metrics.
const ServiceName = "identity"

// Config configures a [Client].
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	ServiceEmail    string
	ServicePassword string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// Client talks to the identity service. It is safe for concurrent use.
type Client struct {
	public  *gateway.Caller
	service *gateway.Caller
	account *serviceAccount
	metrics *metrics.Metrics
}

// New creates a [Client].
func New(config Config) *Client {
	transport := gateway.New(gateway.Config{
		Service:    ServiceName,
		BaseURL:    config.BaseURL,
		Timeout:    config.Timeout,
		HTTPClient: config.HTTPClient,
		Metrics:    config.Metrics,
	})

	public := transport.Bind(nil)
	account := &serviceAccount{
		email:    config.ServiceEmail,
		password: config.ServicePassword,
		login:    public,
	}

	return &Client{
		public:  public,
		service: transport.Bind(account),
		account: account,
		metrics: config.Metrics,
	}
}

// # Service Account

// serviceAccount is the credential source for service calls. It implements
// [gateway.Credentials].
type serviceAccount struct {
	email    string
	password string
	login    *gateway.Caller

	mu    sync.RWMutex
	token string
	group singleflight.Group
}

func (a *serviceAccount) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *serviceAccount) Role() sec.Role { return "" }

func (a *serviceAccount) Clear(context.Context) error {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
	return nil
}

// ensure logs in when no token is cached. Concurrent callers share one login.
func (a *serviceAccount) ensure(ctx context.Context) error {
	if a.Token() != "" {
		return nil
	}

	_, err, _ := a.group.Do("login", func() (any, error) {
		if token := a.Token(); token != "" {
			return token, nil
		}

		result, err := authenticate(ctx, a.login, a.email, a.password)
		if err != nil {
			return nil, err
		}

		a.mu.Lock()
		a.token = result.Token
		a.mu.Unlock()
		return result.Token, nil
	})
	if err != nil {
		ctxutil.GetLogger(ctx).Error("identity_service_login_failed", slog.Any("error", err))
		return apperr.Upstream("Could not authenticate with the identity service", err)
	}
	return nil
}

// # Login

// LoginResult is a successful user login.
type LoginResult struct {
	Token string
	User  map[string]any
}

// Login authenticates a user. Every refusal is reported as UNAUTHORIZED;
// transport failures keep their own code.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	result, err := authenticate(ctx, c.public, email, password)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeTransportFailure) {
			return LoginResult{}, err
		}
		return LoginResult{}, apperr.Unauthorized("Invalid username or password").WithCause(err)
	}
	return result, nil
}

func authenticate(ctx context.Context, caller *gateway.Caller, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var env Envelope
	if err := caller.Post(ctx, pathLogin, body, &env); err != nil {
		return LoginResult{}, err
	}
	if !env.OK() {
		return LoginResult{}, fmt.Errorf("identity_login_rejected: %s", RejectionMessage(env))
	}

	user := map[string]any{}
	if env.HasData() {
		if err := json.Unmarshal(env.Data, &user); err != nil {
			return LoginResult{}, fmt.Errorf("identity_login_decode_failed: %w", err)
		}
	}

	token, _ := user["token"].(string)
	if token == "" {
		token = env.Token
	}
	if token == "" {
		return LoginResult{}, errors.New("identity_login_missing_token")
	}
	// The credential travels separately; the profile never carries it.
	delete(user, "token")

	return LoginResult{Token: token, User: user}, nil
}

// # Service Calls

// call performs a service-account request, replaying it once after a 401.
func (c *Client) call(ctx context.Context, req gateway.Request) (Envelope, error) {
	if err := c.account.ensure(ctx); err != nil {
		return Envelope{}, err
	}

	var env Envelope
	err := c.service.Do(ctx, req, &env)
	if !apperr.HasCode(err, apperr.CodeUnauthorized) {
		return env, err
	}

	ctxutil.GetLogger(ctx).Info("identity_relogin", slog.String("path", req.Path))
	c.metrics.Relogin()
	if err := c.account.ensure(ctx); err != nil {
		return Envelope{}, err
	}

	env = Envelope{}
	err = c.service.Do(ctx, req, &env)
	return env, err
}

// SaveAccount creates a person together with its login credential. Refusals
// are classified as IDENTITY_VALIDATION, DUPLICATE_EMAIL or
// DUPLICATE_IDENTIFICATION.
func (c *Client) SaveAccount(ctx context.Context, account Account) error {
	if account.IdentificationType == "" {
		account.IdentificationType = IdentificationCedula
	}

	env, err := c.call(ctx, gateway.Request{Method: http.MethodPost, Path: pathSaveAccount, Body: account})
	if err != nil || !env.OK() {
		return rejectWrite(env, err, account.Email, account.Identification)
	}
	return nil
}

// Update rewrites the mutable fields of a person and returns the stored record.
func (c *Client) Update(ctx context.Context, update PersonUpdate) (Person, error) {
	if update.IdentificationType == "" {
		update.IdentificationType = IdentificationCedula
	}

	env, err := c.call(ctx, gateway.Request{Method: http.MethodPut, Path: pathUpdate, Body: update})
	if err != nil || !env.OK() {
		return Person{}, rejectWrite(env, err, "", update.Identification)
	}
	if !env.HasData() {
		return Person{ExternalID: update.ExternalID}, nil
	}
	return NormalizePerson(env.Data)
}

// SearchByIdentification looks a person up by national id.
func (c *Client) SearchByIdentification(ctx context.Context, identification string) (Person, error) {
	return c.lookup(ctx, pathSearchIdentification+url.PathEscape(identification))
}

// Search looks a person up by external id.
func (c *Client) Search(ctx context.Context, externalID string) (Person, error) {
	return c.lookup(ctx, pathSearch+url.PathEscape(externalID))
}

func (c *Client) lookup(ctx context.Context, path string) (Person, error) {
	env, err := c.call(ctx, gateway.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return Person{}, err
	}
	if !env.OK() || !env.HasData() {
		notFound := apperr.NotFound("Person")
		if message := RejectionMessage(env); message != "" {
			notFound.Message = message
		}
		return Person{}, notFound
	}
	return NormalizePerson(env.Data)
}

// All lists every person known to the identity service.
func (c *Client) All(ctx context.Context) ([]Person, error) {
	env, err := c.call(ctx, gateway.Request{Method: http.MethodGet, Path: pathAll})
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, apperr.Upstream(RejectionMessage(env), nil)
	}
	if !env.HasData() {
		return []Person{}, nil
	}
	people, err := NormalizePeople(env.Data)
	if err != nil {
		return nil, apperr.Upstream("The identity service returned an unreadable list", err)
	}
	return people, nil
}

// ExistsByIdentification reports whether a national id is already registered.
// A 404 or a non-success envelope means it is free.
func (c *Client) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return false, nil
	}

	env, err := c.call(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   pathSearchIdentification + url.PathEscape(identification),
	})
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return env.OK() && env.HasData(), nil
}
