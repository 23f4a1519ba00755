// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/admin"
	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/internal/platform/middleware"
	"github.com/taibuivan/kinora/internal/platform/sec"
)

const testPassword = "correct horse battery staple"

func newTestService(t *testing.T, account admin.Account) (*admin.Service, *sec.TokenService) {
	t.Helper()

	tokens, err := sec.NewEphemeralTokenService(constants.AuthIssuer)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return admin.NewService(account, tokens, time.Hour, logger), tokens
}

func configuredAccount(t *testing.T) admin.Account {
	t.Helper()
	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)
	return admin.Account{Username: "admin", PasswordHash: hash}
}

/*
TestService_Login verifies a successful login yields a verifiable admin
token.
*/
func TestService_Login(t *testing.T) {
	service, tokens := newTestService(t, configuredAccount(t))

	session, err := service.Login(context.Background(), admin.LoginInput{Username: "admin", Password: testPassword})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, "admin", session.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	claims, err := tokens.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(sec.RoleAdmin), claims.Role)
	assert.Equal(t, "admin", claims.Username)
}

/*
TestService_LoginRejections covers bad credentials and a disabled account.
*/
func TestService_LoginRejections(t *testing.T) {
	account := configuredAccount(t)

	tests := []struct {
		name    string
		account admin.Account
		input   admin.LoginInput
		code    string
	}{
		{"wrong password", account, admin.LoginInput{Username: "admin", Password: "nope"}, apperr.CodeUnauthorized},
		{"wrong username", account, admin.LoginInput{Username: "root", Password: testPassword}, apperr.CodeUnauthorized},
		{"no hash configured", admin.Account{Username: "admin"}, admin.LoginInput{Username: "admin", Password: testPassword}, apperr.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService(t, tt.account)

			session, err := service.Login(context.Background(), tt.input)
			assert.Nil(t, session)
			assert.True(t, apperr.HasCode(err, tt.code))
		})
	}
}

/*
TestHandler_LoginAndMe runs the login endpoint and presents the token to
the claims endpoint.
*/
func TestHandler_LoginAndMe(t *testing.T) {
	service, tokens := newTestService(t, configuredAccount(t))

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/auth", admin.NewHandler(service).Routes())

	// 1. Login
	body := `{"username":"admin","password":"` + testPassword + `"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, recorder.Code)

	var login struct {
		Data admin.LoginSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.AccessToken)

	// 2. Me
	request := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+login.Data.AccessToken)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"role":"admin"`)

	// 3. Me without a token
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHandler_LoginValidation verifies missing credentials are rejected
before the service is reached.
*/
func TestHandler_LoginValidation(t *testing.T) {
	service, _ := newTestService(t, configuredAccount(t))
	router := admin.NewHandler(service).Routes()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"username":`, http.StatusBadRequest},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}
