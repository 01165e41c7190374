package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/blogapi/models"
	"github.com/cppla/blogapi/utils"
)

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=150,username"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput is the payload of a login request.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AccountService registers users and exchanges credentials for tokens.
type AccountService struct {
	db     *gorm.DB
	tokens *TokenService
	logger *zap.Logger
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(db *gorm.DB, tokens *TokenService, logger *zap.Logger) *AccountService {
	return &AccountService{db: db, tokens: tokens, logger: logger}
}

// Register creates a user and its first token in one transaction.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (string, error) {
	if err := validateStruct(in); err != nil {
		return "", err
	}
	if len(in.Password) > utils.PasswordMaxBytes {
		return "", fieldError("password", fmt.Sprintf("ensure this field has no more than %d bytes", utils.PasswordMaxBytes))
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	var (
		user  models.User
		token string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{Username: in.Username, PasswordHash: hash}
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		var err error
		token, err = issueWith(tx, user.ID)
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return token, nil
}

// Login verifies the credentials and rotates the user's token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := validateStruct(in); err != nil {
		return "", err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", in.Username).Take(&user).Error
	if isNotFound(err) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", err
	}
	s.logger.Debug("user logged in", zap.Uint("user_id", user.ID))
	return token, nil
}

// Logout revokes the caller's token.
func (s *AccountService) Logout(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	return s.tokens.Revoke(ctx, user.ID)
}
