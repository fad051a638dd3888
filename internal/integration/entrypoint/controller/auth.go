// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashbook/cashbook/internal/application/usecase/auth"
	domainerror "github.com/cashbook/cashbook/internal/domain/error"
	"github.com/cashbook/cashbook/internal/integration/entrypoint/dto"
)

// AuthController handles authentication endpoints.
type AuthController struct {
	registerUseCase *auth.RegisterUserUseCase
	loginUseCase    *auth.LoginUserUseCase
}

// NewAuthController creates a new auth controller instance.
func NewAuthController(
	registerUseCase *auth.RegisterUserUseCase,
	loginUseCase *auth.LoginUserUseCase,
) *AuthController {
	return &AuthController{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
	}
}

// Register handles POST /api/register requests.
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.AuthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Msg:  "Please provide username and password",
			Code: string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	output, err := c.registerUseCase.Execute(ctx.Request.Context(), auth.RegisterUserInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.TokenResponse{Token: output.Token})
}

// Login handles POST /api/login requests.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.AuthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Msg:  "Please provide username and password",
			Code: string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	output, err := c.loginUseCase.Execute(ctx.Request.Context(), auth.LoginUserInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.TokenResponse{Token: output.Token})
}

// handleAuthError maps authentication errors to HTTP responses. Everything in
// the auth taxonomy is a 400; unexpected failures are logged and masked.
func handleAuthError(ctx *gin.Context, err error) {
	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Msg:  authErr.Message,
			Code: string(authErr.Code),
		})
		return
	}

	slog.Error("Unexpected auth error", "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Msg: "Server error",
	})
}
