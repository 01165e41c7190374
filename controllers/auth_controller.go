package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogapi/middleware"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

// AuthController handles registration, login and the caller's identity.
type AuthController struct {
	accounts *services.AccountService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(accounts *services.AccountService) *AuthController {
	return &AuthController{accounts: accounts}
}

// Register creates an account and returns its first token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(ctx, &req) {
		return
	}
	token, err := a.accounts.Register(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, 50010, "failed to create user")
		return
	}
	utils.Created(ctx, gin.H{"token": token})
}

// Login exchanges credentials for a fresh token, invalidating the previous one.
func (a *AuthController) Login(ctx *gin.Context) {
	var req services.LoginInput
	if !bindJSON(ctx, &req) {
		return
	}
	token, err := a.accounts.Login(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, 50011, "failed to log in")
		return
	}
	utils.Success(ctx, gin.H{"token": token})
}

// Logout revokes the token used for this request.
func (a *AuthController) Logout(ctx *gin.Context) {
	if err := a.accounts.Logout(ctx.Request.Context(), middleware.CurrentUser(ctx)); err != nil {
		respondError(ctx, err, 50012, "failed to log out")
		return
	}
	utils.NoContent(ctx)
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		respondError(ctx, services.ErrUnauthenticated, 0, "")
		return
	}
	utils.Success(ctx, userResponse(*user))
}
