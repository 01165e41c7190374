package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/blogapi/models"
	"github.com/cppla/blogapi/utils"
)

const (
	fallbackSlug = "category"
	slugBaseMax  = 110
)

// CategoryInput is the payload for creating a category. Slug is derived from Name when empty.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"omitempty,max=120,slug"`
}

// CategoryService manages the category catalogue.
type CategoryService struct {
	db     *gorm.DB
	policy *Policy
	logger *zap.Logger
}

// NewCategoryService creates a new CategoryService instance.
func NewCategoryService(db *gorm.DB, policy *Policy, logger *zap.Logger) *CategoryService {
	return &CategoryService{db: db, policy: policy, logger: logger}
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Take(&category, id).Error
	if isNotFound(err) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	return &category, nil
}

// Create adds a category on behalf of an administrator.
func (s *CategoryService) Create(ctx context.Context, caller *models.User, in CategoryInput) (*models.Category, error) {
	if err := s.policy.CanManageCategories(caller); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = createCategory(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("category created",
		zap.Uint("category_id", category.ID),
		zap.String("slug", category.Slug),
		zap.String("by", caller.Username))
	return &category, nil
}

// Delete removes a category; its articles stay, with their category cleared.
func (s *CategoryService) Delete(ctx context.Context, caller *models.User, id uint) error {
	if err := s.policy.CanManageCategories(caller); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Take(&category, id).Error; err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("load category: %w", err)
		}
		if err := tx.Model(&models.Article{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach articles: %w", err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.Uint("category_id", id), zap.String("by", caller.Username))
	return nil
}

// EnsureSeeded creates each named category that does not exist yet.
func (s *CategoryService) EnsureSeeded(ctx context.Context, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("check seed category %q: %w", name, err)
		}
		if count > 0 {
			continue
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := createCategory(tx, CategoryInput{Name: name})
			return err
		})
		if err != nil && !isConflict(err) {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
		s.logger.Debug("seed category ensured", zap.String("name", name))
	}
	return nil
}

func createCategory(tx *gorm.DB, in CategoryInput) (models.Category, error) {
	slug := in.Slug
	if slug == "" {
		var err error
		if slug, err = uniqueSlug(tx, in.Name); err != nil {
			return models.Category{}, err
		}
	}
	category := models.Category{Name: in.Name, Slug: slug}
	if err := tx.Omit("Articles").Create(&category).Error; err != nil {
		if isDuplicateKey(err) {
			return models.Category{}, ErrCategoryTaken
		}
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// uniqueSlug slugifies name and appends -2, -3, ... until no category uses it.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = fallbackSlug
	}
	if len(base) > slugBaseMax {
		base = strings.TrimRight(base[:slugBaseMax], "-_")
	}
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.Category{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
