package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/blogapi/models"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

// StatsController provides blog statistics and the health probe.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate counts for the blog.
func (s *StatsController) GetStats(ctx *gin.Context) {
	db := s.db.WithContext(ctx.Request.Context())
	var userCount, articleCount, commentCount, categoryCount int64

	// a failing count degrades to 0 instead of failing the whole endpoint
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		utils.Logger.Warn("count users failed", zap.Error(err))
	}
	if err := db.Model(&models.Article{}).Count(&articleCount).Error; err != nil {
		utils.Logger.Warn("count articles failed", zap.Error(err))
	}
	if err := db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		utils.Logger.Warn("count comments failed", zap.Error(err))
	}
	if err := db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		utils.Logger.Warn("count categories failed", zap.Error(err))
	}

	utils.Success(ctx, gin.H{
		"user_count":     userCount,
		"article_count":  articleCount,
		"comment_count":  commentCount,
		"category_count": categoryCount,
	})
}

// GetArticleStats returns the number of comments on one article.
func (s *StatsController) GetArticleStats(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		respondError(ctx, services.ErrArticleNotFound, 0, "")
		return
	}
	db := s.db.WithContext(ctx.Request.Context())

	var exists int64
	if err := db.Model(&models.Article{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		respondError(ctx, err, 50050, "failed to load article")
		return
	}
	if exists == 0 {
		respondError(ctx, services.ErrArticleNotFound, 0, "")
		return
	}

	var commentsCount int64
	if err := db.Model(&models.Comment{}).Where("article_id = ?", id).Count(&commentsCount).Error; err != nil {
		respondError(ctx, err, 50051, "failed to count comments")
		return
	}
	utils.Success(ctx, gin.H{
		"article_id":     id,
		"comments_count": commentsCount,
	})
}

// Health reports whether the database answers.
func (s *StatsController) Health(ctx *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		utils.Logger.Error("health check failed", zap.Error(err))
		utils.Error(ctx, http.StatusServiceUnavailable, 50300, "database unavailable")
		return
	}
	utils.Success(ctx, gin.H{"status": "ok"})
}
