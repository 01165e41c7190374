package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/blogapi/config"
	"github.com/cppla/blogapi/models"
)

const testPassword = "s3cret-pass"

type fixture struct {
	db         *gorm.DB
	tokens     *TokenService
	accounts   *AccountService
	categories *CategoryService
	articles   *ArticleService
	comments   *CommentService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := config.OpenDatabase(config.AppConfig{DBDriver: "sqlite", DatabaseURI: dsn, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	logger := zap.NewNop()
	policy := NewPolicy([]string{"admin"})
	tokens := NewTokenService(db, logger)
	return &fixture{
		db:         db,
		tokens:     tokens,
		accounts:   NewAccountService(db, tokens, logger),
		categories: NewCategoryService(db, policy, logger),
		articles:   NewArticleService(db, policy, logger),
		comments:   NewCommentService(db, policy, logger),
	}
}

// register creates a user and returns it with its token.
func (f *fixture) register(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	token, err := f.accounts.Register(ctx, RegisterInput{Username: username, Password: testPassword})
	require.NoError(t, err)
	user, err := f.tokens.Authenticate(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user, token
}

func (f *fixture) article(t *testing.T, author *models.User, title string) *models.Article {
	t.Helper()
	a, err := f.articles.Create(context.Background(), author, ArticleInput{
		Title:   title,
		Content: "Some article body text",
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	admin := &models.User{ID: 0, Username: "admin"}
	c, err := f.categories.Create(context.Background(), admin, CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }
