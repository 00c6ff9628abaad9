package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/repository/ports"
	"github.com/viralacademy/academy-api/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService struct {
	users     ports.UserRepository
	jwt       *util.JWTManager
	googleAud string
}

func NewAuthService(users ports.UserRepository, jwt *util.JWTManager, googleAud string) *AuthService {
	return &AuthService{users: users, jwt: jwt, googleAud: googleAud}
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.CreateEmailUser(ctx, email, hash, salt, domain.RoleStudent)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	payload, err := idtoken.Validate(ctx, idToken, s.googleAud)
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidToken
	}
	var fullName, imageURL *string
	if name, _ := payload.Claims["name"].(string); name != "" {
		fullName = &name
	}
	if picture, _ := payload.Claims["picture"].(string); picture != "" {
		imageURL = &picture
	}

	user, err := s.users.UpsertGoogleUser(ctx, normalizeEmail(email), fullName, imageURL)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// Authenticate resolves a bearer token to its user. Tokens carry the role
// claim, but role checks always go through the stored user so revocations
// take effect immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
