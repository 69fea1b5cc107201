package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"storedir/internal/mailer"
	"storedir/internal/models"
	"storedir/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoAccount          = errors.New("no account with that email")
	ErrInvalidResetToken  = errors.New("reset token is invalid or has expired")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

const (
	resetTokenBytes = 20
	resetTokenTTL   = time.Hour
)

// AuthService handles business logic for authentication and accounts.
type AuthService struct {
	userRepo   repositories.UserRepository
	mail       mailer.Sender
	jwtSecret  []byte
	tokenDurat time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mail mailer.Sender, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		mail:       mail,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RegisterUser hashes the password and saves a new user.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s': %w", email, ErrEmailTaken)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email '%s': %w", email, ErrEmailTaken)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser authenticates by email and password and returns a signed token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(user)
}

// IssueToken signs a token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenDurat
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// CurrentUser resolves the user a token was issued to.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	return s.userRepo.GetByID(ctx, id)
}

// Forgot stores a one hour reset token on the account and mails the reset link.
func (s *AuthService) Forgot(ctx context.Context, email, host string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNoAccount
		}
		return fmt.Errorf("failed to look up %s: %w", email, err)
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(resetTokenTTL)
	user.ResetPasswordToken = token
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("http://%s/account/reset/%s", host, token)
	err = s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Name:     user.Name,
		Subject:  "Password Reset",
		Template: mailer.PasswordResetTemplate,
		Data:     map[string]any{"ResetURL": resetURL},
	})
	if err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	s.logger.Info("password reset requested", zap.String("user_id", user.ID))
	return nil
}

// UserForResetToken returns the user holding an unexpired reset token.
func (s *AuthService) UserForResetToken(ctx context.Context, token string) (*models.User, error) {
	user, err := s.userRepo.GetByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}
	return user, nil
}

// ResetPassword sets a new password through a reset token and clears the token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error) {
	if password == "" || password != confirm {
		return nil, ErrPasswordMismatch
	}
	user, err := s.UserForResetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	return user, nil
}

// UpdateAccount changes the user's name and email.
func (s *AuthService) UpdateAccount(ctx context.Context, user *models.User, name, email string) (*models.User, error) {
	updated := *user
	updated.Name = strings.TrimSpace(name)
	updated.Email = normalizeEmail(email)
	if err := s.userRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email '%s': %w", updated.Email, ErrEmailTaken)
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &updated, nil
}

// HashPassword returns the bcrypt hash stored for password.
func HashPassword(password string) (string, error) {
	return hashPassword(password)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
