package user

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceVerificationCode(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresUserRepo(mockPool, slog.Default())
	ctx := context.Background()

	email := "reset@example.com"
	code := "482913"
	expiresAt := time.Now().Add(10 * time.Minute)

	t.Run("DeletesPriorCodesThenInserts", func(t *testing.T) {
		mockPool.ExpectBegin()
		mockPool.ExpectExec("DELETE FROM password_resets").
			WithArgs(email).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mockPool.ExpectExec("INSERT INTO password_resets").
			WithArgs(email, code, expiresAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()

		err := repo.ReplaceVerificationCode(ctx, email, code, expiresAt)

		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RollsBackWhenDeleteFails", func(t *testing.T) {
		mockPool.ExpectBegin()
		mockPool.ExpectExec("DELETE FROM password_resets").
			WithArgs(email).
			WillReturnError(errors.New("connection reset"))
		mockPool.ExpectRollback()

		err := repo.ReplaceVerificationCode(ctx, email, code, expiresAt)

		assert.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
