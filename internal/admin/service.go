// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package admin implements sign-in for the single configured catalog
// administrator.
//
// # Architecture
//
// There is no user store. The account is read from configuration and the
// issued JWT carries [sec.RoleAdmin]; the catalog routes only ever see the
// verified claims.
package admin

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/sec"
)

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Account is the configured administrator.
type Account struct {
	Username     string
	PasswordHash string
}

// Enabled reports whether the account can sign in at all.
func (account Account) Enabled() bool {
	return account.Username != "" && account.PasswordHash != ""
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginSession represents a successfully established admin session.
type LoginSession struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
}

// Service implements the admin login use case.
type Service struct {
	account       Account
	tokenProvider TokenProvider
	timeToLive    time.Duration
	logger        *slog.Logger
	clock         func() time.Time
}

// NewService constructs a new [Service].
func NewService(account Account, tokenProvider TokenProvider, timeToLive time.Duration, logger *slog.Logger) *Service {
	return &Service{
		account:       account,
		tokenProvider: tokenProvider,
		timeToLive:    timeToLive,
		logger:        logger,
		clock:         time.Now,
	}
}

// Login verifies the credentials against the configured account and issues
// an access token.
//
// # Returns
//   - [apperr.ServiceUnavailable] when no password hash is configured.
//   - [apperr.Unauthorized] for any credential mismatch, without saying which.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	if !service.account.Enabled() {
		return nil, apperr.ServiceUnavailable("Admin login is not configured")
	}

	// Both checks always run so the response time does not reveal which failed.
	usernameOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(service.account.Username)) == 1
	passwordOK := sec.CheckPasswordHash(input.Password, service.account.PasswordHash)

	if !usernameOK || !passwordOK {
		service.logger.WarnContext(ctx, "admin_login_failed", slog.String("username", input.Username))
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	issuedAt := service.clock()
	accessToken, err := service.tokenProvider.GenerateAccessToken(
		service.account.Username,
		service.account.Username,
		string(sec.RoleAdmin),
		service.timeToLive,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("admin: token generation failed: %w", err))
	}

	service.logger.InfoContext(ctx, "admin_login_succeeded", slog.String("username", input.Username))

	return &LoginSession{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   issuedAt.Add(service.timeToLive).UTC(),
		Username:    service.account.Username,
	}, nil
}
