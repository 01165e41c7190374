package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogapi/models"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

func parsePagination(pageStr, sizeStr string) services.PageRequest {
	page := 1
	pageSize := services.DefaultPageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= services.MaxPageSize {
		pageSize = s
	}
	return services.PageRequest{Page: page, PageSize: pageSize}
}

// parseID reads a numeric path parameter. Anything else names no resource.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into out, answering 422 for mistyped fields
// and 400 for bodies that are not JSON at all.
func bindJSON(ctx *gin.Context, out interface{}) bool {
	return bindError(ctx, ctx.ShouldBindJSON(out))
}

// bindPatchJSON is bindJSON for partial updates, where an empty body is an empty patch.
func bindPatchJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)
	if errors.Is(err, io.EOF) {
		return true
	}
	return bindError(ctx, err)
}

func bindError(ctx *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		utils.ValidationFailed(ctx, map[string]string{field: "invalid type, expected " + typeErr.Type.String()})
		return false
	}
	utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
	return false
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
	}
}

func categoryResponse(category models.Category) gin.H {
	return gin.H{
		"id":   category.ID,
		"name": category.Name,
		"slug": category.Slug,
	}
}

func articleResponse(article models.Article) gin.H {
	var category interface{}
	if article.Category != nil {
		category = categoryResponse(*article.Category)
	}
	return gin.H{
		"id":         article.ID,
		"title":      article.Title,
		"content":    article.Content,
		"author":     userResponse(article.Author),
		"category":   category,
		"created_at": article.CreatedAt,
		"updated_at": article.UpdatedAt,
	}
}

func commentResponse(comment models.Comment) gin.H {
	return gin.H{
		"id":         comment.ID,
		"article_id": comment.ArticleID,
		"author":     userResponse(comment.Author),
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
		"updated_at": comment.UpdatedAt,
	}
}

func pageResponse[T any](page services.Page[T], render func(T) gin.H) gin.H {
	items := make([]gin.H, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, render(item))
	}
	return gin.H{
		"items":       items,
		"count":       page.Count,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total_pages": page.TotalPages,
	}
}
