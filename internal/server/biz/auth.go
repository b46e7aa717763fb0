package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
	"github.com/bookhaven/bookhaven/internal/pkg/xtime"
)

// AuthConfig carries the JWT signing settings.
type AuthConfig struct {
	// SecretKey signs session tokens. When empty a random key is
	// generated at startup, which invalidates sessions across restarts.
	SecretKey string        `conf:"secret_key" yaml:"secret_key" json:"secret_key"`
	TokenTTL  time.Duration `conf:"token_ttl"  yaml:"token_ttl"  json:"token_ttl"`
}

type AuthServiceParams struct {
	fx.In

	Store  storage.Store
	Index  *tenant.Index
	Config AuthConfig
}

func NewAuthService(params AuthServiceParams) (*AuthService, error) {
	cfg := params.Config
	if cfg.SecretKey == "" {
		key, err := GenerateSecretKey()
		if err != nil {
			return nil, err
		}

		cfg.SecretKey = key
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour * 24 * 7
	}

	return &AuthService{
		AbstractService: &AbstractService{store: params.Store, index: params.Index},
		config:          cfg,
	}, nil
}

type AuthService struct {
	*AbstractService

	config AuthConfig
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hex.EncodeToString(hashedPassword), nil
}

// VerifyPassword verifies a password against a hash.
func VerifyPassword(hashedPassword, password string) error {
	decodedHashedPassword, err := hex.DecodeString(hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to decode hashed password: %w", err)
	}

	return bcrypt.CompareHashAndPassword(decodedHashedPassword, []byte(password))
}

// GenerateSecretKey generates a random secret key for JWT.
func GenerateSecretKey() (string, error) {
	bytes := make([]byte, 32) // 256 bits

	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

// GenerateJWTToken generates a session token for a user.
func (s *AuthService) GenerateJWTToken(ctx context.Context, user *storage.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     xtime.Now().Add(s.config.TokenTTL).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// SignUp registers a new account. The lookup and insert run under a
// system bypass: there is no authenticated actor yet.
func (s *AuthService) SignUp(ctx context.Context, email, password, firstName, lastName string) (*storage.User, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return authz.RunWithSystemBypass(ctx, "auth-signup", func(bypassCtx context.Context) (*storage.User, error) {
		if _, err := s.store.GetUserByEmail(bypassCtx, email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, storage.ErrNotFound) {
			log.Error(ctx, "failed to check email", log.Cause(err))
			return nil, ErrInternal
		}

		user := &storage.User{
			Email:     email,
			Password:  hashed,
			FirstName: firstName,
			LastName:  lastName,
			Status:    storage.UserStatusActive,
		}

		if err := s.store.CreateUser(bypassCtx, user); err != nil {
			log.Error(ctx, "failed to create user", log.Cause(err))
			return nil, ErrInternal
		}

		return user, nil
	})
}

// AuthenticateUser authenticates a user with email and password.
func (s *AuthService) AuthenticateUser(ctx context.Context, email, password string) (*storage.User, error) {
	u, err := authz.RunWithSystemBypass(ctx, "auth-lookup", func(bypassCtx context.Context) (*storage.User, error) {
		return s.store.GetUserByEmail(bypassCtx, email)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrInvalidPassword)
		}

		log.Error(ctx, "failed to get user", log.Cause(err))

		return nil, ErrInternal
	}

	if u.Status != storage.UserStatusActive {
		return nil, ErrUserDisabled
	}

	err = VerifyPassword(u.Password, password)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", ErrInvalidPassword)
	}

	log.Debug(ctx, "user authenticated", log.Int("user_id", u.ID))

	return u, nil
}

// AuthenticateJWTToken validates a session token and returns the user.
func (s *AuthService) AuthenticateJWTToken(ctx context.Context, tokenString string) (*storage.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrInvalidJWT, token.Header["alg"])
		}

		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse jwt token: %w", ErrInvalidJWT, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrInvalidJWT)
	}

	rawUserID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidJWT)
	}

	userID := int(rawUserID)

	u, err := authz.RunWithSystemBypass(ctx, "auth-token-lookup", func(bypassCtx context.Context) (*storage.User, error) {
		return s.store.GetUser(bypassCtx, userID)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrInvalidJWT)
		}

		log.Error(ctx, "failed to get user", log.Cause(err), log.Int("user_id", userID))

		return nil, ErrInternal
	}

	if u.Status != storage.UserStatusActive {
		return nil, ErrUserDisabled
	}

	return u, nil
}
