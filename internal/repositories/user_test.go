package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserReadRepository_GetByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	userID := uuid.New()
	now := time.Now()
	username := "alice"

	mock.ExpectQuery(`SELECT user_id, username, email, password_hash, created_at, updated_at FROM users`).
		WithArgs(&username, nil).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(userID.String(), "alice", "alice@example.com", "hash", now, now))

	user, err := repo.GetByUsernameOrEmail(context.Background(), &username, nil)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.UserID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_GetByUsernameOrEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	email := "ghost@example.com"
	mock.ExpectQuery(`FROM users`).
		WithArgs(nil, &email).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	user, err := repo.GetByUsernameOrEmail(context.Background(), nil, &email)
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserReadRepository_GetByUsernameOrEmail_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db)

	username := "alice"
	mock.ExpectQuery(`FROM users`).WillReturnError(errors.New("connection reset"))

	user, err := repo.GetByUsernameOrEmail(context.Background(), &username, nil)
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), "alice", "hash", "alice@example.com")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Save_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnError(errors.New(`duplicate key value violates unique constraint "users_username_key"`))

	err := repo.Save(context.Background(), "alice", "hash", "alice@example.com")
	assert.Error(t, err)
}
