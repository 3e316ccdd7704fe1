package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"skillgap/internal/pkg/jwt"
	"skillgap/internal/repository"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (repository.User, TokenPair, error)
	Login(ctx context.Context, in LoginInput) (repository.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

type Auth struct {
	users repository.UserRepository
	jwt   jwt.Service
}

func NewAuthUsecase(users repository.UserRepository, jwtSvc jwt.Service) *Auth {
	return &Auth{users: users, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in RegisterInput) (repository.User, TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(strings.TrimSpace(in.Password)) < minPasswordLength {
		return repository.User{}, TokenPair{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return repository.User{}, TokenPair{}, ErrInternal
	}

	usr := repository.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
	}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return repository.User{}, TokenPair{}, ErrEmailTaken
		}
		return repository.User{}, TokenPair{}, ErrInternal
	}

	pair, err := u.issueTokens(usr)
	if err != nil {
		return repository.User{}, TokenPair{}, ErrInternal
	}
	return sanitizeUser(usr), pair, nil
}

func (u *Auth) Login(ctx context.Context, in LoginInput) (repository.User, TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return repository.User{}, TokenPair{}, ErrInvalidCredentials
	}

	usr, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return repository.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return repository.User{}, TokenPair{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)); err != nil {
		return repository.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := u.issueTokens(usr)
	if err != nil {
		return repository.User{}, TokenPair{}, ErrInternal
	}
	return sanitizeUser(usr), pair, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil || !u.jwt.IsRefreshToken(claims) {
		return TokenPair{}, ErrUnauthorized
	}

	usr, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, ErrInternal
	}

	return u.issueTokens(usr)
}

func (u *Auth) issueTokens(usr repository.User) (TokenPair, error) {
	access, err := u.jwt.GenerateAccessToken(usr.ID, usr.Email)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(usr.ID)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(usr repository.User) repository.User {
	usr.PasswordHash = ""
	return usr
}
