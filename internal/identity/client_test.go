// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/platform/apperr"
	"github.com/taibuivan/courtside/internal/platform/metrics"
)

// fakeIdentity is an in-process identity service. Handlers are swapped per test.
type fakeIdentity struct {
	logins   atomic.Int32
	tokens   atomic.Int32
	requests atomic.Int32

	mu      sync.Mutex
	headers []string
	handle  http.HandlerFunc
}

func newFake(t *testing.T) (*fakeIdentity, *identity.Client, *metrics.Metrics) {
	t.Helper()
	fake := &fakeIdentity{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/person/login", func(w http.ResponseWriter, r *http.Request) {
		fake.logins.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, `{"status":"error","message":"Credenciales inválidas"}`)
			return
		}
		n := fake.tokens.Add(1)
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"token":"svc-`+string(rune('0'+n))+`","email":"`+body["email"]+`"}}`)
	})
	mux.HandleFunc("/api/person/", func(w http.ResponseWriter, r *http.Request) {
		fake.requests.Add(1)
		fake.mu.Lock()
		fake.headers = append(fake.headers, r.Header.Get("Authorization"))
		handle := fake.handle
		fake.mu.Unlock()
		handle(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	m := metrics.New()
	client := identity.New(identity.Config{
		BaseURL:         server.URL,
		Timeout:         time.Second,
		ServiceEmail:    "svc@courtside.test",
		ServicePassword: "secret",
		Metrics:         m,
	})
	return fake, client, m
}

func (f *fakeIdentity) on(handle http.HandlerFunc) {
	f.mu.Lock()
	f.handle = handle
	f.mu.Unlock()
}

func (f *fakeIdentity) authHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.headers...)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const anaJSON = `{"status":"success","data":{"firts_name":"Ana","last_name":"Loja","external":"ext-1","identification":"1710034065","email":"ana@unl.edu.ec"}}`

/*
TestClient_ReloginOnceAndReplay verifies that one 401 triggers exactly one
re-login followed by one replay.
*/
func TestClient_ReloginOnceAndReplay(t *testing.T) {
	fake, client, m := newFake(t)

	var calls atomic.Int32
	fake.on(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusUnauthorized, `{"message":"token expired"}`)
			return
		}
		writeJSON(w, http.StatusOK, anaJSON)
	})

	person, err := client.Search(context.Background(), "ext-1")
	require.NoError(t, err)

	assert.Equal(t, "Ana", person.FirstName)
	assert.Equal(t, int32(2), fake.logins.Load())
	assert.Equal(t, int32(2), fake.requests.Load())
	assert.Equal(t, []string{"svc-1", "svc-2"}, fake.authHeaders())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityReloginsTotal))
}

/*
TestClient_SecondUnauthorizedFails verifies that a replayed request answered
with 401 again is surfaced without a further replay.
*/
func TestClient_SecondUnauthorizedFails(t *testing.T) {
	fake, client, _ := newFake(t)
	fake.on(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"no"}`)
	})

	_, err := client.Search(context.Background(), "ext-1")
	require.Error(t, err)

	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	assert.Equal(t, int32(2), fake.requests.Load())
	assert.Equal(t, int32(2), fake.logins.Load())
}

func TestClient_TokenReusedAcrossCalls(t *testing.T) {
	fake, client, _ := newFake(t)
	fake.on(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, anaJSON)
	})

	for range 3 {
		_, err := client.Search(context.Background(), "ext-1")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), fake.logins.Load())
	assert.Equal(t, []string{"svc-1", "svc-1", "svc-1"}, fake.authHeaders())
}

func TestClient_ConcurrentCallsShareLogin(t *testing.T) {
	fake, client, _ := newFake(t)
	fake.on(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, anaJSON)
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Search(context.Background(), "ext-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, fake.logins.Load(), int32(8))
	assert.Equal(t, int32(8), fake.requests.Load())
	for _, header := range fake.authHeaders() {
		assert.NotEmpty(t, header)
	}
}

func TestClient_Login(t *testing.T) {
	_, client, _ := newFake(t)

	result, err := client.Login(context.Background(), "coach1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "svc-1", result.Token)
	assert.Equal(t, "coach1", result.User["email"])
	assert.NotContains(t, result.User, "token")

	_, err = client.Login(context.Background(), "coach1", "wrong")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

/*
TestClient_LookupErrorEnvelope covers the service answering 200 with status "error".
*/
func TestClient_LookupErrorEnvelope(t *testing.T) {
	fake, client, _ := newFake(t)
	fake.on(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"error","message":"Persona no encontrada","data":null}`)
	})

	_, err := client.SearchByIdentification(context.Background(), "1710034065")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.Equal(t, "Persona no encontrada", apperr.As(err).Message)
}

func TestClient_SaveAccount(t *testing.T) {
	account := identity.Account{
		FirstName:      "Ana",
		LastName:       "Loja",
		Identification: "1710034065",
		Statement:      "DOCENTES",
		Email:          "ana@unl.edu.ec",
		Password:       "pw",
	}

	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"success", http.StatusOK, `{"status":"success","data":{"external":"ext-1"}}`, ""},
		{"duplicate_email_envelope", http.StatusOK, `{"status":"error","message":"El correo ya está registrado"}`, apperr.CodeDuplicateEmail},
		{"duplicate_registrada", http.StatusBadRequest, `{"message":"Cuenta registrada previamente"}`, apperr.CodeDuplicateEmail},
		{"duplicate_identification", http.StatusBadRequest, `{"status":"error","message":"La identificación ya existe"}`, apperr.CodeDuplicateNationID},
		{"duplicate_dni", http.StatusConflict, `{"message":"DNI duplicado"}`, apperr.CodeDuplicateNationID},
		{"validation", http.StatusBadRequest, `{"message":"Datos inválidos","errors":{"phono":"requerido"}}`, apperr.CodeIdentityValidation},
		{"server_error", http.StatusInternalServerError, `{"message":"boom"}`, apperr.CodeIdentityValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, client, _ := newFake(t)

			var received map[string]any
			fake.on(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&received)
				writeJSON(w, tt.status, tt.body)
			})

			err := client.SaveAccount(context.Background(), account)
			assert.Equal(t, "CEDULA", received["type_identification"])
			assert.Equal(t, "DOCENTES", received["type_stament"])

			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, apperr.As(err).Code)
		})
	}
}

func TestClient_SaveAccount_ValidationMessage(t *testing.T) {
	fake, client, _ := newFake(t)
	fake.on(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"error","message":"Datos inválidos","errors":{"phono":"requerido","last_name":"vacío"}}`)
	})

	err := client.SaveAccount(context.Background(), identity.Account{Email: "x@y.z"})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeIdentityValidation, appErr.Code)
	assert.Equal(t, "Datos inválidos - last_name: vacío, phono: requerido", appErr.Message)
	assert.Len(t, appErr.Details, 2)
}

func TestClient_ExistsByIdentification(t *testing.T) {
	fake, client, _ := newFake(t)
	ctx := context.Background()

	fake.on(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/person/search_identification/1710034065":
			writeJSON(w, http.StatusOK, anaJSON)
		case "/api/person/search_identification/1104680135":
			writeJSON(w, http.StatusNotFound, `{"message":"no existe"}`)
		default:
			writeJSON(w, http.StatusOK, `{"status":"error","data":null}`)
		}
	})

	exists, err := client.ExistsByIdentification(ctx, "1710034065")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.ExistsByIdentification(ctx, "1104680135")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = client.ExistsByIdentification(ctx, "0000000000")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = client.ExistsByIdentification(ctx, " ")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_AllAndUpdate(t *testing.T) {
	fake, client, _ := newFake(t)

	var updateBody map[string]any
	fake.on(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&updateBody)
			writeJSON(w, http.StatusOK, `{"status":"success","data":{"first_name":"Ana María","external":"ext-1"}}`)
		default:
			writeJSON(w, http.StatusOK, `{"status":"success","data":[{"firts_name":"Ana","external":"ext-1"},{"first_name":"Luis","id":3}]}`)
		}
	})

	people, err := client.All(context.Background())
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Ana", people[0].FirstName)
	assert.Equal(t, "3", people[1].ExternalID)

	person, err := client.Update(context.Background(), identity.PersonUpdate{ExternalID: "ext-1", FirstName: "Ana María"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", person.FirstName)
	assert.Equal(t, "ext-1", updateBody["external"])
	assert.Equal(t, "CEDULA", updateBody["type_identification"])
	assert.NotContains(t, updateBody, "password")
}

func TestClient_Unreachable(t *testing.T) {
	client := identity.New(identity.Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond, ServicePassword: "secret"})

	_, err := client.Login(context.Background(), "a", "b")
	assert.True(t, apperr.HasCode(err, apperr.CodeTransportFailure))

	_, err = client.Search(context.Background(), "x")
	assert.Error(t, err)
}
