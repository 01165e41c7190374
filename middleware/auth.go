package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogapi/models"
	"github.com/cppla/blogapi/utils"
)

const (
	// ContextUserKey stores the authenticated *models.User inside Gin context.
	ContextUserKey = "current_user"
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
)

// Authenticator resolves a bearer token to its user; (nil, nil) means the token is unknown.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired ensures the request carries a valid bearer token.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(ctx, 40101, "authentication credentials were not provided")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(ctx, 40102, "invalid authorization header format")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			unauthorized(ctx, 40103, "empty bearer token")
			return
		}

		user, err := auth.Authenticate(ctx.Request.Context(), token)
		if err != nil {
			utils.Logger.Error("token lookup failed",
				zap.Error(err),
				zap.String(utils.ContextRequestIDKey, utils.RequestID(ctx)))
			utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to verify token")
			ctx.Abort()
			return
		}
		if user == nil {
			unauthorized(ctx, 40104, "invalid token")
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUsernameKey, user.Username)
		ctx.Next()
	}
}

// CurrentUser returns the user set by AuthRequired, or nil on anonymous requests.
func CurrentUser(ctx *gin.Context) *models.User {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func unauthorized(ctx *gin.Context, code int, message string) {
	ctx.Header("WWW-Authenticate", "Bearer")
	utils.Error(ctx, http.StatusUnauthorized, code, message)
	ctx.Abort()
}
