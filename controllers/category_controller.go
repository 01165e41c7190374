package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogapi/middleware"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

// CategoryController exposes the category catalogue.
type CategoryController struct {
	categories *services.CategoryService
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// ListCategories returns all categories ordered by name.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	categories, err := c.categories.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, 50040, "failed to load categories")
		return
	}
	out := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		out = append(out, categoryResponse(category))
	}
	utils.Success(ctx, out)
}

// GetCategory returns a single category.
func (c *CategoryController) GetCategory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrCategoryNotFound, 0, "")
		return
	}
	category, err := c.categories.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, 50041, "failed to load category")
		return
	}
	utils.Success(ctx, categoryResponse(*category))
}

// CreateCategory adds a category; administrators only.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req services.CategoryInput
	if !bindJSON(ctx, &req) {
		return
	}
	category, err := c.categories.Create(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err, 50042, "failed to create category")
		return
	}
	utils.Created(ctx, categoryResponse(*category))
}

// DeleteCategory removes a category and detaches its articles; administrators only.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrCategoryNotFound, 0, "")
		return
	}
	if err := c.categories.Delete(ctx.Request.Context(), middleware.CurrentUser(ctx), id); err != nil {
		respondError(ctx, err, 50043, "failed to delete category")
		return
	}
	utils.NoContent(ctx)
}
