package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*PostgresDatabase, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPostgresDatabaseWithQuerier(mock), mock
}

func TestPostgres_CreateMural(t *testing.T) {
	db, mock := newMockPostgres(t)
	year := 2023

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO murals (id,title,description,latitude,longitude,media,year,is_active,created_at)")).
		WithArgs(pgxmock.AnyArg(), "Aquatic Center", "", 27.70, -97.30, []string{"a.jpg"}, pgxmock.AnyArg(), true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := db.CreateMural(context.Background(), &Mural{
		Title:     "Aquatic Center",
		Latitude:  27.70,
		Longitude: -97.30,
		Media:     []string{"a.jpg"},
		Year:      &year,
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMurals_ActiveOnly(t *testing.T) {
	db, mock := newMockPostgres(t)
	year := int32(2022)
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(muralColumns).
		AddRow("m-1", "Aquatic Center", "turtles", 27.70, -97.30, []string{"a.jpg"}, &year, true, created).
		AddRow("m-2", "Marlin", "", 27.80, -97.10, []string{}, nil, true, created.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM murals WHERE is_active = \$1 ORDER BY created_at DESC`).
		WithArgs(true).
		WillReturnRows(rows)

	murals, err := db.GetMurals(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, murals, 2)

	assert.Equal(t, "Aquatic Center", murals[0].Title)
	assert.Equal(t, []string{"a.jpg"}, murals[0].Media)
	require.NotNil(t, murals[0].Year)
	assert.Equal(t, 2022, *murals[0].Year)
	assert.Nil(t, murals[1].Year)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMurals_All(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT .* FROM murals ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows(muralColumns))

	murals, err := db.GetMurals(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, murals)
	assert.NotNil(t, murals)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateSubmission_MapsUniqueViolation(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO mural_submissions")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := db.CreateSubmission(context.Background(), &Submission{ID: "dup", Type: "spring"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateContactMessage(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contact_submissions (id,name,email,project_type,message,created_at)")).
		WithArgs(pgxmock.AnyArg(), "Sam", "sam@example.com", "mural", "Hello", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := db.CreateContactMessage(context.Background(), &ContactMessage{
		Name: "Sam", Email: "sam@example.com", ProjectType: "mural", Message: "Hello",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateDatabaseWithoutPool(t *testing.T) {
	db, _ := newMockPostgres(t)
	assert.Error(t, db.CreateDatabase(context.Background()))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "x"))
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23514"}, "x"), ErrInvalid)
	assert.ErrorIs(t, mapError(context.Canceled, "x"), context.Canceled)

	plain := errors.New("boom")
	assert.ErrorIs(t, mapError(plain, "x"), plain)
}
