package recruit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockers-dev/stockers-api/internal/api"
)

func TestGetOrCreateStack(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresRecruitRepo(mockPool, slog.Default())
	ctx := context.Background()

	t.Run("UpsertReturnsID", func(t *testing.T) {
		hashID := StackHash("Go")
		mockPool.ExpectQuery("INSERT INTO stacks").
			WithArgs("Go", hashID).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("stack-1"))

		id, err := repo.GetOrCreateStack(ctx, "Go", hashID)

		assert.NoError(t, err)
		assert.Equal(t, "stack-1", id)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRecruitStackAssociations(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresRecruitRepo(mockPool, slog.Default())
	ctx := context.Background()

	t.Run("ListIDs", func(t *testing.T) {
		mockPool.ExpectQuery("SELECT stack_id FROM recruit_stacks").
			WithArgs("recruit-1").
			WillReturnRows(pgxmock.NewRows([]string{"stack_id"}).AddRow("stack-1").AddRow("stack-2"))

		ids, err := repo.ListRecruitStackIDs(ctx, "recruit-1")

		assert.NoError(t, err)
		assert.Equal(t, []string{"stack-1", "stack-2"}, ids)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("AddAndRemove", func(t *testing.T) {
		mockPool.ExpectExec("INSERT INTO recruit_stacks").
			WithArgs("recruit-1", "stack-1").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectExec("DELETE FROM recruit_stacks").
			WithArgs("recruit-1", "stack-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.AddRecruitStack(ctx, "recruit-1", "stack-1"))
		assert.NoError(t, repo.RemoveRecruitStack(ctx, "recruit-1", "stack-1"))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestDeleteRecruit(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresRecruitRepo(mockPool, slog.Default())
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		mockPool.ExpectExec("DELETE FROM recruits").
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteRecruit(ctx, "missing")

		assert.ErrorIs(t, err, api.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestUpdateRecruitBuildsPartialSet(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresRecruitRepo(mockPool, slog.Default())
	ctx := context.Background()

	position := "Platform Engineer"
	deadline, _ := time.Parse("2006-01-02", "2027-01-31")

	mockPool.ExpectExec("UPDATE recruits SET").
		WithArgs("recruit-1", position, deadline).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateRecruit(ctx, "recruit-1", UpdateRecruitParams{
		Position: &position,
		Deadline: &deadline,
	})

	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
