// Package biz implements the business logic between the HTTP handlers and
// the stores.
package biz

import (
	"context"
	stderrors "errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/apiserver/store"
	"github.com/agentic-hq/agentic/internal/model"
	"github.com/agentic-hq/agentic/pkg/auth"
	"github.com/agentic-hq/agentic/pkg/errors"
)

// AuthService handles account registration and login.
type AuthService struct {
	store  store.Factory
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(factory store.Factory, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: factory, tokens: tokens}
}

// Register creates an account with an encrypted password and returns a
// signed session token.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (string, *model.User, error) {
	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return "", nil, errors.ErrEmailTaken
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, errors.ErrDatabase.WithCause(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: string(hashed),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return "", nil, errors.ErrDatabase.WithCause(err)
	}

	token, err := s.sign(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login checks credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, errors.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, errors.ErrDatabase.WithCause(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.sign(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Verify resolves the account behind a set of session claims.
func (s *AuthService) Verify(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	id, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	user, err := s.store.Users().Get(ctx, id)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrLoginRequired
	}
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return user, nil
}

func (s *AuthService) sign(user *model.User) (string, error) {
	return s.tokens.Sign(strconv.FormatUint(user.ID, 10), user.Email, user.Name, user.IsAdmin)
}
