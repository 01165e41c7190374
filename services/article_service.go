package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blogapi/models"
	"github.com/cppla/blogapi/utils"
)

// ArticleInput is the payload for creating an article.
type ArticleInput struct {
	Title      string `json:"title" validate:"required,min=5,max=200"`
	Content    string `json:"content" validate:"required,min=10"`
	CategoryID *uint  `json:"category_id"`
}

// ArticlePatch is a partial update; nil fields are left untouched.
type ArticlePatch struct {
	Title      *string    `json:"title"`
	Content    *string    `json:"content"`
	CategoryID OptionalID `json:"category_id"`
}

// Empty reports whether the patch changes nothing.
func (p ArticlePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && !p.CategoryID.Set
}

// OptionalID distinguishes an absent JSON field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *uint
}

// UnmarshalJSON records that the field was present and decodes a number or null.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// ArticleService implements article CRUD with author-only mutation.
type ArticleService struct {
	db     *gorm.DB
	policy *Policy
	logger *zap.Logger
}

// NewArticleService creates a new ArticleService instance.
func NewArticleService(db *gorm.DB, policy *Policy, logger *zap.Logger) *ArticleService {
	return &ArticleService{db: db, policy: policy, logger: logger}
}

// Create stores a new article authored by caller.
func (s *ArticleService) Create(ctx context.Context, caller *models.User, in ArticleInput) (*models.Article, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	in.Content = utils.SanitizeContent(in.Content)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	article := models.Article{
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   caller.ID,
		CategoryID: in.CategoryID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CategoryID != nil {
			if err := categoryExists(tx, *in.CategoryID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(&article).Error; err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("article created", zap.Uint("article_id", article.ID), zap.Uint("author_id", caller.ID))
	return s.Get(ctx, article.ID)
}

// List returns one page of articles, newest first.
func (s *ArticleService) List(ctx context.Context, req PageRequest) (Page[models.Article], error) {
	req = req.normalize()
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Article{}).Count(&total).Error; err != nil {
		return Page[models.Article]{}, fmt.Errorf("count articles: %w", err)
	}

	var articles []models.Article
	err := db.Preload("Author").Preload("Category").
		Order("created_at DESC").Order("id DESC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&articles).Error
	if err != nil {
		return Page[models.Article]{}, fmt.Errorf("list articles: %w", err)
	}
	return newPage(articles, total, req), nil
}

// Get returns one article with its author and category.
func (s *ArticleService) Get(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := s.db.WithContext(ctx).Preload("Author").Preload("Category").Take(&article, id).Error
	if isNotFound(err) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	return &article, nil
}

// Update applies the fields present in patch. Only the author may update.
func (s *ArticleService) Update(ctx context.Context, id uint, caller *models.User, patch ArticlePatch) (*models.Article, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if patch.Content != nil {
		sanitized := utils.SanitizeContent(*patch.Content)
		patch.Content = &sanitized
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.Take(&article, id).Error; err != nil {
			if isNotFound(err) {
				return ErrArticleNotFound
			}
			return fmt.Errorf("load article: %w", err)
		}
		if err := s.policy.CanModify(caller, article.AuthorID); err != nil {
			return err
		}
		if err := validatePatch(patch); err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}

		updates := map[string]interface{}{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Content != nil {
			updates["content"] = *patch.Content
		}
		if patch.CategoryID.Set {
			if patch.CategoryID.Value == nil {
				updates["category_id"] = nil
			} else {
				if err := categoryExists(tx, *patch.CategoryID.Value); err != nil {
					return err
				}
				updates["category_id"] = *patch.CategoryID.Value
			}
		}
		if err := tx.Model(&article).Updates(updates).Error; err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an article and its comments. Only the author may delete.
func (s *ArticleService) Delete(ctx context.Context, id uint, caller *models.User) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.Take(&article, id).Error; err != nil {
			if isNotFound(err) {
				return ErrArticleNotFound
			}
			return fmt.Errorf("load article: %w", err)
		}
		if err := s.policy.CanModify(caller, article.AuthorID); err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Delete(&article).Error; err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("article deleted", zap.Uint("article_id", id), zap.Uint("by", caller.ID))
	return nil
}

func validatePatch(patch ArticlePatch) error {
	var (
		candidate ArticleInput
		fields    []string
	)
	if patch.Title != nil {
		candidate.Title = *patch.Title
		fields = append(fields, "Title")
	}
	if patch.Content != nil {
		candidate.Content = *patch.Content
		fields = append(fields, "Content")
	}
	if len(fields) == 0 {
		return nil
	}
	return validateStruct(candidate, fields...)
}

func categoryExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
