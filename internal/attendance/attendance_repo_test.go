package attendance

import (
	"context"
	"regexp"
	"testing"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/auth"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var attendanceColumns = []string{"id", "user_id", "date", "check_in_time", "check_out_time", "status", "total_hours", "created_at", "updated_at"}

func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock
}

func newMockMySQLDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock
}

func TestRepository_OpenDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.Local)

	t.Run("open day rejects second check-in", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "attendances" WHERE user_id = \$1 AND date = \$2`).
			WillReturnRows(sqlmock.NewRows(attendanceColumns).
				AddRow("a-1", "u-1", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), now, nil, StatusPresent, 0, now, now))
		mock.ExpectRollback()

		_, err := repo.OpenDay(ctx, "u-1", DayOf(now), now, StatusPresent)

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to already checked in", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "attendances" WHERE user_id = \$1 AND date = \$2`).
			WillReturnRows(sqlmock.NewRows(attendanceColumns))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "attendances"`)).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_user_date"})
		mock.ExpectRollback()

		_, err := repo.OpenDay(ctx, "u-1", DayOf(now), now, StatusPresent)

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
	})

	mysqlCases := []struct {
		name string
		err  error
	}{
		{name: "mysql deadlock on concurrent first check-in", err: &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock; try restarting transaction"}},
		{name: "mysql duplicate entry", err: &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'u-1-2024-03-04' for key 'uq_attendance_user_date'"}},
	}
	for _, tc := range mysqlCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockMySQLDB(t)
			repo := NewRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT \\* FROM `attendances` WHERE user_id = \\? AND date = \\?").
				WillReturnRows(sqlmock.NewRows(attendanceColumns))
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `attendances`")).
				WillReturnError(tc.err)
			mock.ExpectRollback()

			_, err := repo.OpenDay(ctx, "u-1", DayOf(now), now, StatusPresent)

			assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_CloseDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 4, 17, 30, 0, 0, time.Local)

	t.Run("already closed", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "attendances" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.CloseDay(ctx, "a-1", now, 8.5)

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("closes and reloads", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewRepository(db)
		checkIn := now.Add(-8*time.Hour - 30*time.Minute)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "attendances" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "attendances" WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows(attendanceColumns).
				AddRow("a-1", "u-1", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), checkIn, now, StatusPresent, 8.5, checkIn, now))

		rec, err := repo.CloseDay(ctx, "a-1", now, 8.5)

		require.NoError(t, err)
		assert.Equal(t, 8.5, rec.TotalHours)
		assert.True(t, rec.Date.Equal(DayOf(now)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FindByUserAndDate_NotFound(t *testing.T) {
	db, mock := newMockGormDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "attendances" WHERE user_id = \$1 AND date = \$2`).
		WillReturnRows(sqlmock.NewRows(attendanceColumns))

	_, err := repo.FindByUserAndDate(context.Background(), "u-1", day(4))

	assert.ErrorIs(t, err, attendanceerrors.ErrAttendanceNotFound)
}

func TestRepository_FindScopesAndOrders(t *testing.T) {
	db, mock := newMockGormDB(t)
	repo := NewRepository(db)
	r := MonthRange(2024, time.March)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "attendances" WHERE attendances.user_id = $1 AND (attendances.date BETWEEN $2 AND $3) ORDER BY attendances.date DESC,attendances.check_in_time DESC`)).
		WithArgs("u-1", "2024-03-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows(attendanceColumns).
			AddRow("a-2", "u-1", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), nil, nil, StatusPresent, 0, time.Now(), time.Now()).
			AddRow("a-1", "u-1", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), nil, nil, StatusPresent, 0, time.Now(), time.Now()))

	rows, err := repo.Find(context.Background(), Query{UserID: "u-1", Range: &r})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Date.Equal(day(5)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindWrapsRangeWithOtherFilters(t *testing.T) {
	db, mock := newMockGormDB(t)
	repo := NewRepository(db)
	r := DayRange(day(4))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "attendances" WHERE (attendances.date BETWEEN $1 AND $2) AND attendances.status = $3 ORDER BY attendances.date DESC,attendances.check_in_time DESC`)).
		WithArgs("2024-03-04", "2024-03-04", StatusLate).
		WillReturnRows(sqlmock.NewRows(attendanceColumns))

	rows, err := repo.Find(context.Background(), Query{Range: &r, Status: StatusLate})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository_FindJoinedDropsOrphans(t *testing.T) {
	ctx := context.Background()
	users := auth.NewMemoryRepository()
	require.NoError(t, users.Create(ctx, &auth.User{ID: "u-1", Email: "u1@example.com", Name: "One"}))
	repo := NewMemoryRepository(users)

	now := *clock(4, 9, 0)
	_, err := repo.OpenDay(ctx, "u-1", day(4), now, StatusPresent)
	require.NoError(t, err)
	_, err = repo.OpenDay(ctx, "ghost", day(4), now, StatusPresent)
	require.NoError(t, err)

	rows, err := repo.FindJoined(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "One", rows[0].User.Name)

	all, err := repo.Find(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
