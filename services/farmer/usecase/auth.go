package usecase

import (
	"context"
	"farmreg/domain"
	"farmreg/middleware"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type authUC struct {
	userRepo domain.UserRepo
	TimeOut  time.Duration
}

func NewAuthUseCase(userRepo domain.UserRepo, to time.Duration) domain.AuthUseCase {
	return &authUC{
		userRepo: userRepo,
		TimeOut:  to,
	}
}

func (auc *authUC) Login(ctx context.Context, data *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, auc.TimeOut)
	defer cancel()

	user, err := auc.userRepo.FindUserByUsername(ctx, data.Username)
	if err != nil {
		return nil, fmt.Errorf("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(data.Password)); err != nil {
		return nil, fmt.Errorf("invalid username or password")
	}

	token, err := middleware.GenerateJWT(user.UserID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %v", err)
	}

	return &domain.LoginResponse{
		Token: token,
		Role:  user.Role,
	}, nil
}
