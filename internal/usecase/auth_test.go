package usecase

import (
	"context"
	"testing"
	"time"

	"learnpath-backend/internal/domain"
	"learnpath-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	users := new(MockUserRepo)
	tokens := utils.NewTokenManager("secret", time.Hour)
	uc := NewAuthUsecase(users, tokens)

	var stored *domain.User
	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, domain.ErrUserNotFound).Once()
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.User)
			stored.ID = 3
		}).Return(nil)

	err := uc.Register(context.Background(), &domain.User{Name: "Ana", Email: " Ana@Example.com ", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, stored.Role)
	assert.NotEqual(t, "pw123456", stored.Password)

	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(stored, nil)

	token, err := uc.Login(context.Background(), "ana@example.com", "pw123456")
	require.NoError(t, err)
	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)

	_, err = uc.Login(context.Background(), "ana@example.com", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = uc.Register(context.Background(), &domain.User{Email: "ana@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}
