package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/blogapi/models"
	"github.com/cppla/blogapi/utils"
)

// CommentInput is the payload for creating a comment.
type CommentInput struct {
	Content string `json:"content" validate:"required,min=1"`
}

// CommentPatch is a partial update; a nil or empty Content leaves the comment unchanged.
type CommentPatch struct {
	Content *string `json:"content"`
}

// CommentService implements comment CRUD with author-only mutation.
type CommentService struct {
	db     *gorm.DB
	policy *Policy
	logger *zap.Logger
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(db *gorm.DB, policy *Policy, logger *zap.Logger) *CommentService {
	return &CommentService{db: db, policy: policy, logger: logger}
}

// Create adds a comment by caller to an existing article.
func (s *CommentService) Create(ctx context.Context, articleID uint, caller *models.User, in CommentInput) (*models.Comment, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	comment := models.Comment{ArticleID: articleID, AuthorID: caller.ID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := articleExists(tx, articleID); err != nil {
			return err
		}
		in.Content = utils.SanitizeContent(in.Content)
		if err := validateStruct(in); err != nil {
			return err
		}
		comment.Content = in.Content
		if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("article_id", articleID),
		zap.Uint("author_id", caller.ID))
	return s.Get(ctx, comment.ID)
}

// ListForArticle returns one page of an article's comments, oldest first.
func (s *CommentService) ListForArticle(ctx context.Context, articleID uint, req PageRequest) (Page[models.Comment], error) {
	req = req.normalize()
	db := s.db.WithContext(ctx)
	if err := articleExists(db, articleID); err != nil {
		return Page[models.Comment]{}, err
	}

	var total int64
	if err := db.Model(&models.Comment{}).Where("article_id = ?", articleID).Count(&total).Error; err != nil {
		return Page[models.Comment]{}, fmt.Errorf("count comments: %w", err)
	}

	var comments []models.Comment
	err := db.Preload("Author").
		Where("article_id = ?", articleID).
		Order("created_at ASC").Order("id ASC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&comments).Error
	if err != nil {
		return Page[models.Comment]{}, fmt.Errorf("list comments: %w", err)
	}
	return newPage(comments, total, req), nil
}

// Get returns one comment with its author.
func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Preload("Author").Take(&comment, id).Error
	if isNotFound(err) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	return &comment, nil
}

// Update replaces the content when a non-empty one is given. Only the author may update.
func (s *CommentService) Update(ctx context.Context, id uint, caller *models.User, patch CommentPatch) (*models.Comment, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Take(&comment, id).Error; err != nil {
			if isNotFound(err) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("load comment: %w", err)
		}
		if err := s.policy.CanModify(caller, comment.AuthorID); err != nil {
			return err
		}
		if patch.Content == nil {
			return nil
		}
		content := utils.SanitizeContent(*patch.Content)
		if content == "" {
			return nil
		}
		if err := tx.Model(&comment).Update("content", content).Error; err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, id uint, caller *models.User) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Take(&comment, id).Error; err != nil {
			if isNotFound(err) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("load comment: %w", err)
		}
		if err := s.policy.CanModify(caller, comment.AuthorID); err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("comment deleted", zap.Uint("comment_id", id), zap.Uint("by", caller.ID))
	return nil
}

func articleExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Article{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check article: %w", err)
	}
	if count == 0 {
		return ErrArticleNotFound
	}
	return nil
}
