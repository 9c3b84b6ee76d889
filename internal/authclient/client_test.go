// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package authclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/dailygrind/web/internal/apiclient"
	"codeberg.org/dailygrind/web/internal/authclient"
	"codeberg.org/dailygrind/web/internal/config"
	"codeberg.org/dailygrind/web/internal/credential"
	"codeberg.org/dailygrind/web/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, sub any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

type env struct {
	client    *authclient.Client
	api       *apiclient.Client
	store     *credential.Store
	persister *credential.MemoryPersister
	calls     *atomic.Int32
}

func newEnv(t *testing.T, token string, handler http.HandlerFunc) *env {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	api := apiclient.New(&config.APIConfig{BaseURL: srv.URL, Timeout: time.Second})
	persister := credential.NewMemoryPersister(token)
	store := credential.NewStore(context.Background(), persister, api)

	return &env{
		client:    authclient.New(api, store),
		api:       api,
		store:     store,
		persister: persister,
		calls:     calls,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRegister(t *testing.T) {
	var body map[string]string
	e := newEnv(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/register", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, map[string]any{
			"user":  map[string]any{"id": "u1", "email": "a@b.com", "displayName": "Alice"},
			"token": "T1",
		})
	})

	user, err := e.client.Register(context.Background(), "a@b.com", "secret", "Alice")

	require.NoError(t, err)
	assert.Equal(t, models.ID("u1"), user.ID)
	assert.Equal(t, map[string]string{"email": "a@b.com", "password": "secret", "displayName": "Alice"}, body)
	assert.Equal(t, "T1", e.store.Read(context.Background()))
	assert.Equal(t, "Bearer T1", e.api.Header(apiclient.HeaderAuthorization))
}

func TestRegister_Duplicate(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already in use"})
	})

	user, err := e.client.Register(context.Background(), "a@b.com", "secret", "Alice")

	assert.Nil(t, user)
	var authErr *authclient.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Email already in use", authErr.Message)
	assert.Equal(t, "register", authErr.Op)
	assert.Empty(t, e.store.Read(context.Background()))
}

func TestRegister_FallbackMessage(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := e.client.Register(context.Background(), "a@b.com", "secret", "Alice")

	assert.Equal(t, "Registration failed", authclient.ErrorMessage(err))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login", r.URL.Path)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})

	_, err := e.client.Login(context.Background(), "a@b.com", "bad")

	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.True(t, apiclient.IsUnauthorized(errors.Unwrap(err)))
}

func TestLogin_FallbackMessage(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{})
	})

	_, err := e.client.Login(context.Background(), "a@b.com", "bad")

	assert.Equal(t, "Login failed", authclient.ErrorMessage(err))
}

func TestLogin_MissingToken(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u1"}})
	})

	_, err := e.client.Login(context.Background(), "a@b.com", "pw")

	assert.Equal(t, "Login failed", authclient.ErrorMessage(err))
	assert.Empty(t, e.store.Read(context.Background()))
}

func TestStartGoogleLogin(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	url := e.client.StartGoogleLogin()

	assert.True(t, strings.HasSuffix(url, "/users/auth/google"))
	assert.Equal(t, int32(0), e.calls.Load())
	assert.Empty(t, e.store.Read(context.Background()))
}

func TestCompleteOAuthCallback(t *testing.T) {
	token := signToken(t, "u1")
	e := newEnv(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/u1", r.URL.Path)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "a@b.com"})
	})

	user, err := e.client.CompleteOAuthCallback(context.Background(), token)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, token, e.store.Read(context.Background()))
}

func TestCompleteOAuthCallback_EmptyToken(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	user, err := e.client.CompleteOAuthCallback(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, int32(0), e.calls.Load())
}

func TestResolveCurrentUser_NoCredential(t *testing.T) {
	e := newEnv(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	res := e.client.ResolveCurrentUser(context.Background())

	assert.Equal(t, authclient.OutcomeNoSession, res.Outcome)
	assert.Nil(t, res.User)
	assert.NoError(t, res.Err)
	assert.Equal(t, int32(0), e.calls.Load())
}

func TestResolveCurrentUser_Authenticated(t *testing.T) {
	e := newEnv(t, signToken(t, "u1"), func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "a@b.com", "displayName": "Alice"})
	})

	res := e.client.ResolveCurrentUser(context.Background())

	assert.Equal(t, authclient.OutcomeAuthenticated, res.Outcome)
	require.NotNil(t, res.User)
	assert.Equal(t, "Alice", res.User.DisplayName)
}

func TestResolveCurrentUser_NumericSubject(t *testing.T) {
	var path string
	e := newEnv(t, signToken(t, 42), func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"id": 42})
	})

	res := e.client.ResolveCurrentUser(context.Background())

	assert.Equal(t, authclient.OutcomeAuthenticated, res.Outcome)
	assert.Equal(t, "/users/42", path)
}

func TestResolveCurrentUser_UnauthorizedClearsCredential(t *testing.T) {
	e := newEnv(t, signToken(t, "u1"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/u1", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})

	res := e.client.ResolveCurrentUser(context.Background())

	assert.Equal(t, authclient.OutcomeRejected, res.Outcome)
	assert.Nil(t, res.User)
	assert.Empty(t, e.store.Read(context.Background()))
	assert.Empty(t, e.api.Header(apiclient.HeaderAuthorization))
}

func TestResolveCurrentUser_ServerErrorKeepsCredential(t *testing.T) {
	token := signToken(t, "u1")
	e := newEnv(t, token, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res := e.client.ResolveCurrentUser(context.Background())

	assert.Equal(t, authclient.OutcomeFailed, res.Outcome)
	assert.Nil(t, res.User)
	assert.Error(t, res.Err)
	assert.Equal(t, token, e.store.Read(context.Background()))
}

func TestResolveCurrentUser_MalformedToken(t *testing.T) {
	e := newEnv(t, "not-a-jwt", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	res := e.client.ResolveCurrentUser(context.Background())

	assert.Equal(t, authclient.OutcomeFailed, res.Outcome)
	assert.Nil(t, res.User)
	assert.Equal(t, int32(0), e.calls.Load())
}

func TestLogout(t *testing.T) {
	e := newEnv(t, "T1", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	e.client.Logout(context.Background())

	assert.Empty(t, e.store.Read(context.Background()))
	assert.Empty(t, e.api.Header(apiclient.HeaderAuthorization))
}

func TestUpdateProfile(t *testing.T) {
	var body map[string]any
	e := newEnv(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/u1", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"displayName": "Bob"})
	})
	name := "Bob"

	delta, err := e.client.UpdateProfile(context.Background(), "u1", &models.UserPatch{DisplayName: &name})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"displayName": "Bob"}, body)
	require.NotNil(t, delta.DisplayName)
	assert.Equal(t, "Bob", *delta.DisplayName)
	assert.Nil(t, delta.Email)
}

func TestUpdateProfile_Rejected(t *testing.T) {
	e := newEnv(t, "T1", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := e.client.UpdateProfile(context.Background(), "u1", &models.UserPatch{})

	assert.Equal(t, "Failed to update profile", authclient.ErrorMessage(err))
}

func TestUploadProfilePicture(t *testing.T) {
	e := newEnv(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/u1/profile-picture", r.URL.Path)
		file, _, err := r.FormFile("profilePicture")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		assert.Equal(t, "img", string(data))
		writeJSON(w, http.StatusOK, map[string]any{"profilePicture": "/p/u1.png"})
	})

	delta, err := e.client.UploadProfilePicture(context.Background(), "u1", models.Upload{
		Body:     strings.NewReader("img"),
		Filename: "u1.png",
	})

	require.NoError(t, err)
	require.NotNil(t, delta.ProfilePicture)
	assert.Equal(t, "/p/u1.png", *delta.ProfilePicture)
}

func TestUploadProfilePicture_Rejected(t *testing.T) {
	e := newEnv(t, "T1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
	})

	_, err := e.client.UploadProfilePicture(context.Background(), "u1", models.Upload{Body: strings.NewReader("x")})

	assert.Equal(t, "File too large", authclient.ErrorMessage(err))
}
