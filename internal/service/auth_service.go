package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
	"github.com/noah-isme/edubuild-api/internal/repository"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
	AdminSecret string
	BcryptCost  int
}

// AuthService provides signup, signin and token validation.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 7 * 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: time.Now}
}

// Signup registers an account and issues a session token. Admin accounts
// require the configured admin secret.
func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	req.Email = normaliseEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid signup payload")
	}

	role := models.RoleStudent
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}
	if role == models.RoleAdmin && !s.adminSecretMatches(req.AdminSecret) {
		s.logger.Warn("admin signup rejected", zap.String("email", req.Email), zap.String("ip", req.IP))
		return nil, appErrors.ErrInvalidAdminSecret
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		School:       strings.TrimSpace(req.School),
		State:        strings.TrimSpace(req.State),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.ErrEmailTaken
		}
		return nil, appErrors.Internal(err, "failed to create account")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &dto.AuthResponse{Token: token, User: user}, nil
}

// Signin verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, req dto.SigninRequest) (*dto.AuthResponse, error) {
	req.Email = normaliseEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid signin payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Internal(err, "failed to fetch account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("signin rejected", zap.String("user_id", user.ID), zap.String("ip", req.IP))
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: user}, nil
}

// Profile returns the account identified by userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to fetch profile")
	}
	return user, nil
}

// EnsureAdmin creates an admin account unless the email is already taken.
// It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	email = normaliseEmail(email)
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Internal(err, "failed to check email")
	}

	if err := s.validator.Var(password, "required,min=6"); err != nil {
		return nil, false, appErrors.Validation(err, "password must be at least 6 characters")
	}
	if err := s.validator.Var(email, "required,email"); err != nil {
		return nil, false, appErrors.Validation(err, "invalid email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to hash password")
	}
	user := &models.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: string(hash), Role: models.RoleAdmin}
	if user.Name == "" {
		user.Name = "Admin"
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			existing, findErr := s.repo.FindByEmail(ctx, email)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, appErrors.Internal(err, "failed to create admin")
	}
	return user, true, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	issuedAt := s.now().UTC()
	claims := models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", appErrors.Internal(err, "failed to sign token")
	}
	return signed, nil
}

// adminSecretMatches rejects every attempt when no secret is configured.
func (s *AuthService) adminSecretMatches(provided string) bool {
	if s.config.AdminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.config.AdminSecret)) == 1
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
