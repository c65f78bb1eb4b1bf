package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelflog/models"
)

func TestRegisterStartsPending(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	user, err := svc.Register("Alice", "Alice@Example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.UserStatusPending, user.Status)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.Register("", "a@example.com")
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Register("Alice", " ")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register("Alice", "a@example.com")
	require.NoError(t, err)
	_, err = svc.Register("Another Alice", "A@Example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestApproveAndReject(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	alice, err := svc.Register("Alice", "alice@example.com")
	require.NoError(t, err)
	bob, err := svc.Register("Bob", "bob@example.com")
	require.NoError(t, err)

	approved, err := svc.Approve(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusApproved, approved.Status)

	rejected, err := svc.Reject(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusRejected, rejected.Status)

	_, err = svc.Approve("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	pending, err := svc.List(models.UserStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUsersPersistAcrossReload(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	require.NoError(t, err)

	alice, err := svc.Register("Alice", "alice@example.com")
	require.NoError(t, err)
	_, err = svc.Approve(alice.ID)
	require.NoError(t, err)

	reloaded, err := NewService(dir)
	require.NoError(t, err)

	user, err := reloaded.Get(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusApproved, user.Status)
}
