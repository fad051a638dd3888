package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/cashbook/cashbook/internal/application/adapter"
	"github.com/cashbook/cashbook/internal/domain/entity"
	domainerror "github.com/cashbook/cashbook/internal/domain/error"
)

// LoginUserInput represents the input for user login.
type LoginUserInput struct {
	Username string
	Password string
}

// LoginUserOutput represents the output of user login.
type LoginUserOutput struct {
	Token string
	User  *entity.User
}

// LoginUserUseCase handles user login logic.
type LoginUserUseCase struct {
	userRepo        adapter.UserRepository
	passwordService adapter.PasswordService
	tokenService    adapter.TokenService
}

// NewLoginUserUseCase creates a new LoginUserUseCase instance.
func NewLoginUserUseCase(
	userRepo adapter.UserRepository,
	passwordService adapter.PasswordService,
	tokenService adapter.TokenService,
) *LoginUserUseCase {
	return &LoginUserUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
	}
}

// Execute performs the user login.
func (uc *LoginUserUseCase) Execute(ctx context.Context, input LoginUserInput) (*LoginUserOutput, error) {
	username := entity.NormalizeUsername(input.Username)
	if username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, invalidCredentials()
	}

	// Unknown username and wrong password produce the same error so the
	// response carries no user-enumeration signal.
	user, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, invalidCredentials()
	}

	if err := uc.passwordService.VerifyPassword(user.PasswordHash, input.Password); err != nil {
		return nil, invalidCredentials()
	}

	token, err := uc.tokenService.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginUserOutput{
		Token: token,
		User:  user,
	}, nil
}

func invalidCredentials() *domainerror.AuthError {
	return domainerror.NewAuthError(
		domainerror.ErrCodeInvalidCredentials,
		"Invalid Credentials",
		domainerror.ErrInvalidCredentials,
	)
}
