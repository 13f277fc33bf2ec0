package attendance

import (
	"errors"
	"strings"

	attendanceerrors "go-attendance/internal/attendance/errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return attendanceerrors.ErrAttendanceNotFound
	}

	// a second insert for the same (user, date) lost the race
	if isDuplicateDay(err) {
		return attendanceerrors.ErrAlreadyCheckedIn
	}

	return err
}

func isDuplicateDay(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || mongo.IsDuplicateKeyError(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") && strings.Contains(errMsg, "uq_attendance_user_date")
}

// isLockConflict reports a deadlock between two first check-ins for the same
// day. InnoDB gap locks from SELECT ... FOR UPDATE on a missing row make both
// inserts wait on each other; the surviving transaction holds the check-in.
func isLockConflict(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01"
	}
	return false
}
