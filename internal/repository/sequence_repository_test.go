package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSequenceRepositoryNext(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSequenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO id_sequences (name, value) VALUES ($1, 1)")).
		WithArgs("teacher_code").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1)))

	value, err := repo.Next(context.Background(), "teacher_code")
	require.NoError(t, err)
	require.Equal(t, int64(1), value)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO id_sequences (name, value) VALUES ($1, 1)")).
		WithArgs("teacher_code").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(2)))

	value, err = repo.Next(context.Background(), "teacher_code")
	require.NoError(t, err)
	require.Equal(t, int64(2), value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepositoryNextError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSequenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO id_sequences")).
		WithArgs("student_code_2024").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Next(context.Background(), "student_code_2024")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
