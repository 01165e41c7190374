package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogapi/middleware"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

// ArticleController manages CRUD operations for articles.
type ArticleController struct {
	articles *services.ArticleService
}

// NewArticleController creates a new ArticleController instance.
func NewArticleController(articles *services.ArticleService) *ArticleController {
	return &ArticleController{articles: articles}
}

// CreateArticle stores an article authored by the caller.
func (a *ArticleController) CreateArticle(ctx *gin.Context) {
	var req services.ArticleInput
	if !bindJSON(ctx, &req) {
		return
	}
	article, err := a.articles.Create(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err, 50020, "failed to create article")
		return
	}
	utils.Created(ctx, articleResponse(*article))
}

// ListArticles returns paginated articles, newest first.
func (a *ArticleController) ListArticles(ctx *gin.Context) {
	page, err := a.articles.List(ctx.Request.Context(), parsePagination(ctx.Query("page"), ctx.Query("page_size")))
	if err != nil {
		respondError(ctx, err, 50021, "failed to load articles")
		return
	}
	utils.Success(ctx, pageResponse(page, articleResponse))
}

// GetArticle returns a single article.
func (a *ArticleController) GetArticle(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrArticleNotFound, 0, "")
		return
	}
	article, err := a.articles.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, 50022, "failed to load article")
		return
	}
	utils.Success(ctx, articleResponse(*article))
}

// UpdateArticle applies a partial update; only the author may do so.
func (a *ArticleController) UpdateArticle(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrArticleNotFound, 0, "")
		return
	}
	var req services.ArticlePatch
	if !bindPatchJSON(ctx, &req) {
		return
	}
	article, err := a.articles.Update(ctx.Request.Context(), id, middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err, 50023, "failed to update article")
		return
	}
	utils.Success(ctx, articleResponse(*article))
}

// DeleteArticle allows the author to delete their article and its comments.
func (a *ArticleController) DeleteArticle(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrArticleNotFound, 0, "")
		return
	}
	if err := a.articles.Delete(ctx.Request.Context(), id, middleware.CurrentUser(ctx)); err != nil {
		respondError(ctx, err, 50024, "failed to delete article")
		return
	}
	utils.NoContent(ctx)
}
