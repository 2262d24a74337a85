package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ecoviewer/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = time.Hour

	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 6
	// bcrypt input limit
	maxPasswordBytes = 72

	msgUsernameLength = "Username must be 3 to 64 characters."
	msgPasswordLength = "Password must be 6 characters to 72 bytes long."
)

// AuthConfig holds the JWT settings.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Domain errors for auth flows.
var (
	ErrUsernameTaken      = repository.ErrUsernameTaken
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService registers dashboard owners and issues the tokens that scope every dashboard,
// sample and log entry to one of them.
type AuthService struct {
	authRepo repository.Authorization
	key      []byte
	ttl      time.Duration
}

func NewAuthService(repo repository.Authorization, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &AuthService{authRepo: repo, key: []byte(cfg.SigningKey), ttl: cfg.TokenTTL}
}

// SignUp validates the credentials, hashes the password and creates the user. Errors are
// *ValidationError, ErrUsernameTaken or a storage failure.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (int, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return 0, &ValidationError{Field: "username", Message: msgUsernameLength}
	}
	if utf8.RuneCountInString(strings.TrimSpace(password)) < minPasswordLen || len(password) > maxPasswordBytes {
		return 0, &ValidationError{Field: "password", Message: msgPasswordLength}
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}
	id, err := s.authRepo.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("sign up %q: %w", username, err)
	}
	return id, nil
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// GenerateToken checks the credentials and returns a JWT. An unknown user and a wrong
// password are both ErrInvalidCredentials.
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", fmt.Errorf("sign in %q: %w", username, err)
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(u.ID)
}

// ParseToken parses JWT and returns userID
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (any, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// issueToken signs a JWT for userID.
func (s *AuthService) issueToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(s.key)
}
