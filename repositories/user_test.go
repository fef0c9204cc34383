package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "codraft/errors"
)

func Test_User_CreateAndFetch(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewUserRepository(db)
	id, err := repository.CreateUser("alice@example.com", "argon2id-hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("alice@example.com", user.Email)
	req.Equal("argon2id-hash", user.PasswordHash)
	req.Equal([]string{"editor"}, user.Roles)
}

func Test_User_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewUserRepository(db)
	_, err := repository.CreateUser("alice@example.com", "hash-1")
	req.NoError(err)

	_, err = repository.CreateUser("alice@example.com", "hash-2")
	req.ErrorIs(err, apperrors.ErrUserAlreadyExists)
}

func Test_User_UnknownEmail(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewUserRepository(db)
	_, err := repository.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, apperrors.ErrInvalidCredentials)
}
