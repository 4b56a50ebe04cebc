package service

import (
	"context"
	"time"

	"github.com/softserv/softserv/common/apperr"
	"github.com/softserv/softserv/common/auth"
	"github.com/softserv/softserv/common/logger"
	"github.com/softserv/softserv/common/models"
)

// AccountService handles registration, login and logout
type AccountService struct {
	users   UserStore
	issuer  *auth.Issuer
	revoker auth.Revoker
	log     *logger.Logger
}

// NewAccountService creates a new account service
func NewAccountService(users UserStore, issuer *auth.Issuer, revoker auth.Revoker, log *logger.Logger) *AccountService {
	return &AccountService{
		users:   users,
		issuer:  issuer,
		revoker: revoker,
		log:     log,
	}
}

// Register creates a new account with a hashed password
func (s *AccountService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" {
		return nil, apperr.Validationf("missing field: username")
	}
	if password == "" {
		return nil, apperr.Validationf("missing field: password")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if apperr.Is(err, apperr.CodeConflict) {
			return nil, apperr.Conflictf("username already taken")
		}
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues a signed token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return "", apperr.Unauthorized("wrong username or password")
	}

	token, claims, err := s.issuer.Issue(user.ID, user.Moderator)
	if err != nil {
		return "", apperr.Internal("issue token", err)
	}

	s.log.Info("user logged in", "user_id", user.ID, "tkid", claims.TokenID)
	return token, nil
}

// Logout revokes the caller's token id until the token expires
func (s *AccountService) Logout(ctx context.Context, ident auth.Identity) error {
	ttl := time.Until(ident.ExpiresAt)
	if err := s.revoker.Revoke(ctx, ident.TokenID, ttl); err != nil {
		return apperr.Internal("revoke token", err)
	}

	s.log.Info("user logged out", "user_id", ident.UserID, "tkid", ident.TokenID)
	return nil
}
