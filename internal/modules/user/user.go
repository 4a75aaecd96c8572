// Package user manages dashboard accounts.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/embracingthegirlchild/site/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

type CreateUserDTO struct {
	Username string
	Password string
	Name     string
	Email    string
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	return s.first(ctx, "username = ?", strings.TrimSpace(username))
}

func (s *Service) first(ctx context.Context, query string, args ...interface{}) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create adds an author with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, dto *CreateUserDTO) (*models.UserModel, error) {
	username := strings.TrimSpace(dto.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(dto.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	existing, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.UserModel{
		Username: username,
		Password: string(hash),
		Name:     strings.TrimSpace(dto.Name),
		Email:    strings.TrimSpace(dto.Email),
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate checks the password and records the login.
func (s *Service) Authenticate(ctx context.Context, username, password, ip string) (*models.UserModel, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// keep timing close to the wrong-password path
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(u).Updates(map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   ip,
	}).Error; err != nil {
		return nil, err
	}
	u.LastLoginTime = &now
	u.LastLoginIP = ip
	return u, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)
