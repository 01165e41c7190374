package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blogapi/models"
)

const (
	// TokenLength is the number of characters in an issued token.
	TokenLength   = 256
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// TokenService issues, validates and revokes opaque bearer tokens. Each user holds at most one.
type TokenService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTokenService creates a new TokenService instance.
func NewTokenService(db *gorm.DB, logger *zap.Logger) *TokenService {
	return &TokenService{db: db, logger: logger}
}

// Issue replaces any existing token of userID with a fresh one and returns it.
func (s *TokenService) Issue(ctx context.Context, userID uint) (string, error) {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		key, err = issueWith(tx, userID)
		return err
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// issueWith upserts the token row keyed on user_id so concurrent logins never leave two live tokens.
func issueWith(tx *gorm.DB, userID uint) (string, error) {
	key, err := generateTokenKey()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := models.AuthToken{UserID: userID, Key: key, CreatedAt: time.Now()}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"key", "created_at"}),
	}).Create(&token).Error
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return key, nil
}

// Authenticate resolves a presented token to its user. Unknown tokens yield (nil, nil);
// only store failures produce an error.
func (s *TokenService) Authenticate(ctx context.Context, presented string) (*models.User, error) {
	if presented == "" || len(presented) > TokenLength {
		return nil, nil
	}

	var token models.AuthToken
	err := s.db.WithContext(ctx).Where(map[string]interface{}{"key": presented}).Take(&token).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	// case-insensitive collations may match a differently cased key
	if subtle.ConstantTimeCompare([]byte(token.Key), []byte(presented)) != 1 {
		return nil, nil
	}

	var user models.User
	err = s.db.WithContext(ctx).Take(&user, token.UserID).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token owner: %w", err)
	}
	return &user, nil
}

// Revoke deletes the token of userID, if any.
func (s *TokenService) Revoke(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuthToken{}).Error
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Debug("token revoked", zap.Uint("user_id", userID))
	return nil
}

// generateTokenKey draws TokenLength characters uniformly from tokenAlphabet.
func generateTokenKey() (string, error) {
	const limit = 256 - 256%len(tokenAlphabet)
	out := make([]byte, 0, TokenLength)
	buf := make([]byte, TokenLength)
	for len(out) < TokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLength {
				break
			}
		}
	}
	return string(out), nil
}
