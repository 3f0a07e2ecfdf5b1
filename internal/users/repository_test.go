package users

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestFindOrCreateGuest_NewEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "password", "role", "is_guest"}).
			AddRow(id.String(), "Asha Rao", "asha@example.com", "9800000000", nil, "USER", true))

	user, err := repo.FindOrCreateGuest(context.Background(), GuestProfile{
		Name:  "Asha Rao",
		Email: "  Asha@Example.com ",
		Phone: "9800000000",
	})

	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.True(t, user.IsGuest)
	assert.Nil(t, user.Password)
	assert.False(t, user.HasCredential())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoles(t *testing.T) {
	assert.True(t, IsValidRole("VENUE_MANAGER"))
	assert.False(t, IsValidRole("SUPERUSER"))
	assert.True(t, IsStaff("COORDINATOR"))
	assert.False(t, IsStaff("USER"))
	assert.Equal(t, "asha@example.com", NormalizeEmail(" ASHA@example.COM"))
}
