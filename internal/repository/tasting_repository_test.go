package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbmitchh/Logmypour2/internal/tasting"
)

func TestTastingRepo_SQLiteCRUD(t *testing.T) {
	db := newSQLite(t)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	repo := NewTastingRepo(db)
	ctx := context.Background()

	older := sampleTasting(owner.ID, "2024-03-01", "14:00")
	newer := sampleTasting(owner.ID, "2024-03-08", "09:30")
	sameDayLater := sampleTasting(owner.ID, "2024-03-08", "16:15")
	foreign := sampleTasting(other.ID, "2024-03-09", "10:00")
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))
	require.NoError(t, repo.Create(ctx, &sameDayLater))
	require.NoError(t, repo.Create(ctx, &foreign))

	list, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint64{sameDayLater.ID, newer.ID, older.ID}, []uint64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, older.Products, list[2].Products, "product order survives storage")

	got, err := repo.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.UserID)
	assert.InDelta(t, 50.0, got.PouredToSoldPercent, 1e-9)

	edit := got
	edit.StoreName = "Meijer"
	assert.ErrorIs(t, repo.UpdateByIDAndOwner(ctx, &edit, owner.ID), ErrForbidden)
	assert.ErrorIs(t, repo.DeleteByIDAndOwner(ctx, foreign.ID, owner.ID), ErrForbidden)

	edit = older
	edit.StoreName = "Meijer"
	edit.Products = append(edit.Products, tasting.NewLine("Secret Gin", 2, 1))
	require.NoError(t, repo.UpdateByIDAndOwner(ctx, &edit, owner.ID))
	got, err = repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meijer", got.StoreName)
	require.Len(t, got.Products, 3)
	assert.Equal(t, "Secret Gin", got.Products[2].Name)

	require.NoError(t, repo.DeleteByIDAndOwner(ctx, older.ID, owner.ID))
	_, err = repo.GetByID(ctx, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByIDAndOwner(ctx, older.ID, owner.ID), ErrNotFound)

	list, err = repo.ListByOwner(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTastingRepo_DeleteForbiddenRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM tastings WHERE id = ?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(2))
	mock.ExpectRollback()

	err = NewTastingRepo(db).DeleteByIDAndOwner(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTastingRepo_DeleteCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM tastings WHERE id = ?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM tastings WHERE id = ?").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewTastingRepo(db).DeleteByIDAndOwner(context.Background(), 7, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTastingRepo_UpdateDBErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM tastings").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectExec("UPDATE tastings SET").WillReturnError(boom)
	mock.ExpectRollback()

	tg := sampleTasting(1, "2024-01-01", "10:00")
	tg.ID = 3
	assert.ErrorIs(t, NewTastingRepo(db).UpdateByIDAndOwner(context.Background(), &tg, 1), boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
