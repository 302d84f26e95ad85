package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/models"
)

func newUserService(t *testing.T) (UserService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	auth := NewAuthService(users, "secret", 15*time.Minute, 24*time.Hour)
	return NewUserService(users, auth), users
}

func TestUserCreateDefaults(t *testing.T) {
	svc, _ := newUserService(t)
	u := &models.User{Email: "Worker@Example.com", Role: "warehouse-wizard"}
	require.NoError(t, svc.Create(u, ""))

	assert.Equal(t, "worker@example.com", u.Email)
	assert.Equal(t, "worker", u.Username)
	assert.Equal(t, "staff", u.Role) // unknown roles collapse to staff
	assert.True(t, u.IsActive)
	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.PasswordHash)
}

func TestUserCreateHashesPassword(t *testing.T) {
	svc, _ := newUserService(t)
	u := &models.User{Email: "a@example.com"}
	require.NoError(t, svc.Create(u, "hunter2"))

	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "hunter2", u.PasswordHash)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	require.NoError(t, svc.Create(&models.User{Email: "a@example.com"}, ""))

	err := svc.Create(&models.User{Email: "A@EXAMPLE.COM"}, "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserBulkImportMixedRows(t *testing.T) {
	svc, users := newUserService(t)
	require.NoError(t, svc.Create(&models.User{Email: "taken@example.com"}, ""))

	res := svc.BulkImport([]UserImportRow{
		{Email: "one@example.com", Username: "one", Role: "admin"},
		{Email: ""},
		{Email: "taken@example.com"},
		{Email: "two@example.com", Password: "secret"},
	})

	assert.Equal(t, 2, res.CreatedCount)
	assert.Len(t, res.Failed, 2)

	n, _ := users.GetCount()
	assert.Equal(t, 3, n)
}
