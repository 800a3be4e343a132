package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civic-issues-be/models"
	"civic-issues-be/repository"
	"civic-issues-be/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong
// password. Callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Session struct {
	Token string
	Admin models.AdminProfile
}

type Registration struct {
	Name       string
	Email      string
	Password   string
	Department string
}

// AuthService manages administrator accounts and staff sessions.
type AuthService struct {
	admins repository.AdminStore
	tokens *utils.TokenIssuer
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(admins repository.AdminStore, tokens *utils.TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{admins: admins, tokens: tokens, log: log, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.ComparePassword(password) {
		return nil, ErrInvalidCredentials
	}

	s.log.Info("admin logged in", zap.String("admin_id", admin.ID.Hex()))
	return s.session(admin)
}

// Register creates an administrator and opens a session for it.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*Session, error) {
	department := strings.TrimSpace(reg.Department)
	if department == "" {
		department = models.DefaultDepartment
	}

	admin := &models.Admin{
		Name:       strings.TrimSpace(reg.Name),
		Email:      normalizeEmail(reg.Email),
		Password:   reg.Password,
		Role:       models.RoleAdmin,
		Department: department,
		CreatedAt:  s.now(),
	}
	if err := s.create(ctx, admin); err != nil {
		return nil, err
	}

	s.log.Info("admin registered",
		zap.String("admin_id", admin.ID.Hex()),
		zap.String("role", admin.Role),
	)
	return s.session(admin)
}

// Me returns the profile of the administrator with the given hex id.
func (s *AuthService) Me(ctx context.Context, id string) (*models.AdminProfile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	admin, err := s.admins.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	profile := admin.Profile()
	return &profile, nil
}

// Bootstrap creates the initial super administrator unless an account
// with that email already exists. It reports whether one was created.
func (s *AuthService) Bootstrap(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	_, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	admin := &models.Admin{
		Name:       name,
		Email:      email,
		Password:   password,
		Role:       models.RoleSuperAdmin,
		Department: models.DefaultDepartment,
		CreatedAt:  s.now(),
	}
	if err := s.create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	s.log.Info("bootstrap admin created", zap.String("email", email))
	return true, nil
}

func (s *AuthService) create(ctx context.Context, admin *models.Admin) error {
	if err := admin.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.admins.Create(ctx, admin)
}

func (s *AuthService) session(admin *models.Admin) (*Session, error) {
	token, err := s.tokens.Issue(utils.AdminIdentity{
		ID:    admin.ID.Hex(),
		Email: admin.Email,
		Role:  admin.Role,
	})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Admin: admin.Profile()}, nil
}
