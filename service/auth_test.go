package service

import (
	"testing"

	"burger-order-api/apperr"
	"burger-order-api/models"
	"burger-order-api/notify"
	"burger-order-api/notify/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(notify.Message{
		To:   "neha@example.com",
		Kind: notify.KindRegistration,
		Data: map[string]any{"name": "Neha"},
	})
	f := newFixtureWith(t, notifier, OrderOptions{})

	user, err := f.auth.Register(f.ctx, RegisterInput{
		Name: "Neha", Email: " Neha@Example.com ", Password: "Str0ng!Pass", Phone: "9123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "neha@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Str0ng!Pass")))

	_, err = f.auth.Register(f.ctx, RegisterInput{Name: "Again", Email: "NEHA@example.com", Password: "Str0ng!Pass"})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	_, err := f.auth.Register(f.ctx, RegisterInput{Name: "Neha", Email: "neha@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	user, err := f.auth.Authenticate(f.ctx, "NEHA@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "Neha", user.Name)

	_, err = f.auth.Authenticate(f.ctx, "neha@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	_, err = f.auth.Authenticate(f.ctx, "nobody@example.com", "Str0ng!Pass")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = f.auth.Authenticate(f.ctx, "neha@example.com", "Str0ng!Pass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestProfile(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	user, err := f.auth.Profile(f.ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, f.customer.Email, user.Email)

	_, err = f.auth.Profile(f.ctx, 9999)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	require.NoError(t, f.auth.EnsureAdmin(f.ctx, "boss@example.com", "Adm1n!pass"))
	boss, err := f.auth.Authenticate(f.ctx, "boss@example.com", "Adm1n!pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, boss.Role)

	require.NoError(t, f.auth.EnsureAdmin(f.ctx, "boss@example.com", "ignored"))

	require.NoError(t, f.auth.EnsureAdmin(f.ctx, f.customer.Email, "ignored"))
	promoted, err := f.auth.Profile(f.ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}
