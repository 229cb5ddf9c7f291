package usecase

import (
	"context"
	"errors"
	"strings"

	"learnpath-backend/internal/domain"
	"learnpath-backend/pkg/utils"
)

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   *utils.TokenManager
}

func NewAuthUsecase(ur domain.UserRepository, tokens *utils.TokenManager) domain.AuthUsecase {
	return &authUsecase{userRepo: ur, tokens: tokens}
}

func (uc *authUsecase) Register(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	existing, err := uc.userRepo.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if existing != nil && existing.ID != 0 {
		return domain.ErrEmailTaken
	}

	if user.Role == "" {
		user.Role = domain.RoleStudent
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed

	return uc.userRepo.Create(ctx, user)
}

func (uc *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || user.ID == 0 {
		return "", domain.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", domain.ErrInvalidCredentials
	}

	return uc.tokens.Generate(user.ID, string(user.Role))
}
