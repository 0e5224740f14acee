package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"burger-order-api/apperr"
	"burger-order-api/logger"
	"burger-order-api/models"
	"burger-order-api/notify"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      *slog.Logger
}

func NewAuthService(db *gorm.DB, notifier notify.Notifier, log *slog.Logger) *AuthService {
	return &AuthService{db: db, notifier: notifier, log: logger.Component(log, "auth_service")}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// Register creates a customer account and queues the welcome email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err, "check email")
	}
	if count > 0 {
		return nil, apperr.Conflict("user already exists with this email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	user := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Phone:        in.Phone,
		Address:      in.Address,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("user already exists with this email")
		}
		return nil, apperr.Internal(err, "create user")
	}

	s.log.Info("User registered", "user_id", user.ID)
	s.notifier.Notify(notify.Message{
		To:   user.Email,
		Kind: notify.KindRegistration,
		Data: map[string]any{"name": user.Name},
	})
	return &user, nil
}

// Authenticate checks credentials. Unknown email and wrong password give
// the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("account is deactivated")
	}
	return &user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	return &user, nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes the
// existing account with that email.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin {
			return nil
		}
		if err := db.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
			return apperr.Internal(err, "promote admin")
		}
		s.log.Info("Promoted existing user to admin", "user_id", user.ID)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Internal(err, "load admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}
	user = models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		return apperr.Internal(err, "create admin")
	}
	s.log.Info("Created admin account", "user_id", user.ID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
