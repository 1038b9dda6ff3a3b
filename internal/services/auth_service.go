package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	mobileNoLength    = 11
	resetTokenBytes   = 32
)

// AuthConfig holds the token settings of AuthService.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetURLBase  string
	ResetTokenTTL time.Duration
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo     repositories.UserRepository
	events       EventPublisher
	jwtSecret    []byte
	tokenTTL     time.Duration
	resetURLBase string
	resetTTL     time.Duration
	now          func() time.Time
}

// NewAuthService creates a new AuthService. events may be nil, in which
// case reset links are not delivered.
func NewAuthService(userRepo repositories.UserRepository, events EventPublisher, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:     userRepo,
		events:       events,
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenTTL:     cfg.TokenTTL,
		resetURLBase: strings.TrimRight(cfg.ResetURLBase, "/"),
		resetTTL:     cfg.ResetTokenTTL,
		now:          time.Now,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	MobileNo  string
	Password  string
}

// RegisterUser validates the input, hashes the password and stores a
// regular (non-admin) user.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !strings.Contains(in.Email, "@") {
		return nil, apperr.Validation("Invalid email format")
	}
	if len(in.MobileNo) != mobileNoLength {
		return nil, apperr.Validation("Mobile number is invalid")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 8 characters long")
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Internal(err, "check email")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		MobileNo:  in.MobileNo,
		Password:  hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, apperr.Internal(err, "register user")
	}
	return user, nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	if !strings.Contains(email, "@") {
		return "", apperr.Validation("Invalid Email")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.Unauthenticated("Email and password do not match")
		}
		return "", apperr.Internal(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperr.Unauthenticated("Email and password do not match")
	}
	return s.IssueToken(user)
}

// IssueToken signs a bearer token carrying the user's id and admin flag.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.Internal(err, "sign token")
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT token and returns the identity
// it carries.
func (s *AuthService) ValidateToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Identity{}, errors.New("invalid token: missing subject")
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return Identity{UserID: userID, IsAdmin: isAdmin}, nil
}

// ForgotPassword stores a fresh reset token for the account of email and
// publishes the reset link for out-of-band delivery. It reports success
// whether or not the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("Email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			zap.L().Error("forgot password lookup failed", zap.Error(err))
		}
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		zap.L().Error("failed to generate reset token", zap.Error(err))
		return nil
	}
	expires := s.now().Add(s.resetTTL)
	digest := HashResetToken(token)
	user.ResetPasswordToken = &digest
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		zap.L().Error("failed to store reset token", zap.String("user_id", user.ID), zap.Error(err))
		return nil
	}

	_ = publishEvent(s.events, EventPasswordResetRequested, PasswordResetRequestedEvent{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		ResetURL:  s.resetURLBase + "/" + token,
		ExpiresAt: expires,
	})
	return nil
}

// ResetPassword sets a new password for the holder of a valid, unexpired
// reset token and clears the token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	if len(newPassword) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 8 characters long")
	}
	invalid := apperr.Validation("Invalid or expired reset token")
	if token == "" {
		return nil, invalid
	}

	digest := HashResetToken(token)
	user, err := s.userRepo.GetByResetToken(ctx, digest)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, apperr.Internal(err, "load reset token")
	}
	if !user.ResetTokenValid(digest, s.now()) {
		return nil, invalid
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.ConsumeResetToken(ctx, user.ID, digest, hashed); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, apperr.Internal(err, "reset password")
	}
	user.Password = hashed
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	return user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Internal(err, "hash password")
	}
	return string(hashed), nil
}

// HashResetToken returns the hex SHA-256 of a reset token. Only the digest
// is stored; the raw token exists in the reset link alone.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
