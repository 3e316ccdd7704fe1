package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"skillgap/internal/pkg/jwt"

	"github.com/google/uuid"
)

// fakeJWT issues transparent tokens of the form "<type>:<user id>".
type fakeJWT struct {
	generateErr error
}

func (f *fakeJWT) GenerateAccessToken(userID uuid.UUID, _ string) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return "access:" + userID.String(), nil
}

func (f *fakeJWT) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return "refresh:" + userID.String(), nil
}

func (f *fakeJWT) ValidateToken(tokenString string) (jwt.Claims, error) {
	parts := strings.SplitN(tokenString, ":", 2)
	if len(parts) != 2 {
		return jwt.Claims{}, jwt.ErrTokenInvalid
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return jwt.Claims{}, jwt.ErrTokenInvalid
	}
	return jwt.Claims{UserID: id, TokenType: parts[0]}, nil
}

func (f *fakeJWT) IsRefreshToken(claims jwt.Claims) bool {
	return claims.TokenType == "refresh"
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthUsecase(users, &fakeJWT{})

	usr, pair, err := auth.Register(context.Background(), RegisterInput{
		Email:    "  Jordan@Example.COM ",
		Password: "sup3r-secret",
		FullName: " Jordan Alam ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if usr.Email != "jordan@example.com" {
		t.Errorf("email = %q, want normalized lowercase", usr.Email)
	}
	if usr.FullName != "Jordan Alam" {
		t.Errorf("full name = %q", usr.FullName)
	}
	if usr.PasswordHash != "" {
		t.Error("password hash leaked out of the usecase")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("registration issued no tokens")
	}

	got, _, err := auth.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != usr.ID {
		t.Errorf("login returned user %s, want %s", got.ID, usr.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := NewAuthUsecase(newFakeUserRepo(), &fakeJWT{})

	cases := []RegisterInput{
		{Email: "", Password: "sup3r-secret"},
		{Email: "a@b.co", Password: "short"},
	}
	for _, in := range cases {
		if _, _, err := auth.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%+v) err = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthUsecase(users, &fakeJWT{})

	in := RegisterInput{Email: "a@b.co", Password: "sup3r-secret"}
	if _, _, err := auth.Register(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if _, _, err := auth.Register(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthUsecase(users, &fakeJWT{})

	if _, _, err := auth.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: "sup3r-secret"}); err != nil {
		t.Fatal(err)
	}

	_, _, err := auth.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	_, _, err = auth.Login(context.Background(), LoginInput{Email: "nobody@b.co", Password: "whatever123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefresh(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthUsecase(users, &fakeJWT{})

	usr, pair, err := auth.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: "sup3r-secret"})
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := auth.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.AccessToken != "access:"+usr.ID.String() {
		t.Errorf("access token = %q", fresh.AccessToken)
	}

	if _, err := auth.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("access token accepted for refresh, err = %v", err)
	}
	if _, err := auth.Refresh(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("empty token err = %v, want ErrUnauthorized", err)
	}
	if _, err := auth.Refresh(context.Background(), "refresh:"+uuid.NewString()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown user err = %v, want ErrUnauthorized", err)
	}
}
