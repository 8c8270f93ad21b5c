package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	DB  *gorm.DB
	JWT *JWT
}

// Register creates an account and returns a signed token for it.
func (s *Service) Register(ctx context.Context, email, password string) (Principal, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := HashPassword(password)
	if err != nil {
		return Principal{}, "", err
	}
	acc := Account{ID: uuid.NewString(), Email: email, PasswordHash: hash}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&acc).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Principal{}, "", ErrEmailTaken
		}
		return Principal{}, "", err
	}
	return s.issue(acc)
}

func (s *Service) Login(ctx context.Context, email, password string) (Principal, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var acc Account
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, "", ErrInvalidCredentials
		}
		return Principal{}, "", err
	}
	if !ComparePassword(acc.PasswordHash, password) {
		return Principal{}, "", ErrInvalidCredentials
	}
	return s.issue(acc)
}

func (s *Service) issue(acc Account) (Principal, string, error) {
	p := Principal{UID: acc.ID, Email: acc.Email}
	tok, err := s.JWT.Sign(p)
	if err != nil {
		return Principal{}, "", err
	}
	return p, tok, nil
}
