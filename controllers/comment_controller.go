package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogapi/middleware"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

// CommentController manages comments on articles.
type CommentController struct {
	comments *services.CommentService
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

// CreateComment adds a comment to an article.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	articleID, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrArticleNotFound, 0, "")
		return
	}
	var req services.CommentInput
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.comments.Create(ctx.Request.Context(), articleID, middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err, 50030, "failed to create comment")
		return
	}
	utils.Created(ctx, commentResponse(*comment))
}

// ListComments returns an article's comments, oldest first.
func (c *CommentController) ListComments(ctx *gin.Context) {
	articleID, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrArticleNotFound, 0, "")
		return
	}
	page, err := c.comments.ListForArticle(ctx.Request.Context(), articleID, parsePagination(ctx.Query("page"), ctx.Query("page_size")))
	if err != nil {
		respondError(ctx, err, 50031, "failed to load comments")
		return
	}
	utils.Success(ctx, pageResponse(page, commentResponse))
}

// GetComment returns a single comment.
func (c *CommentController) GetComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrCommentNotFound, 0, "")
		return
	}
	comment, err := c.comments.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, 50032, "failed to load comment")
		return
	}
	utils.Success(ctx, commentResponse(*comment))
}

// UpdateComment edits a comment; only its author may do so.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrCommentNotFound, 0, "")
		return
	}
	var req services.CommentPatch
	if !bindPatchJSON(ctx, &req) {
		return
	}
	comment, err := c.comments.Update(ctx.Request.Context(), id, middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err, 50033, "failed to update comment")
		return
	}
	utils.Success(ctx, commentResponse(*comment))
}

// DeleteComment allows the author to delete their comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrCommentNotFound, 0, "")
		return
	}
	if err := c.comments.Delete(ctx.Request.Context(), id, middleware.CurrentUser(ctx)); err != nil {
		respondError(ctx, err, 50034, "failed to delete comment")
		return
	}
	utils.NoContent(ctx)
}
