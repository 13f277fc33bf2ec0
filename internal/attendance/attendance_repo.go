package attendance

import (
	"context"
	"errors"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	// OpenDay atomically records a check-in for (userID, date): it inserts
	// the day or fills a blank one. ErrAlreadyCheckedIn if the day already
	// has a check-in.
	OpenDay(ctx context.Context, userID string, date, at time.Time, status string) (*Attendance, error)
	// CloseDay sets the check-out once. ErrAlreadyCheckedOut if it is set.
	CloseDay(ctx context.Context, id string, at time.Time, totalHours float64) (*Attendance, error)
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)
	// Find returns matches newest first.
	Find(ctx context.Context, q Query) ([]Attendance, error)
	// FindJoined is Find with User populated; records whose user no longer
	// exists are dropped.
	FindJoined(ctx context.Context, q Query) ([]Attendance, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// sqlDate is the DATE literal for a day key.
func sqlDate(day time.Time) string {
	return day.Format(dateLayout)
}

// storeDate hands the driver UTC midnight so the DATE column keeps the
// local calendar day regardless of session time zone.
func storeDate(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *repository) OpenDay(ctx context.Context, userID string, date, at time.Time, status string) (*Attendance, error) {
	var out Attendance

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Attendance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND date = ?", userID, sqlDate(date)).
			Take(&existing).Error

		switch {
		case err == nil:
			if existing.CheckedIn() {
				return attendanceerrors.ErrAlreadyCheckedIn
			}
			res := tx.Model(&Attendance{}).
				Where("id = ? AND check_in_time IS NULL", existing.ID).
				Updates(map[string]any{"check_in_time": at, "status": status, "updated_at": at})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return attendanceerrors.ErrAlreadyCheckedIn
			}
			existing.CheckInTime = &at
			existing.Status = status
			existing.UpdatedAt = at
			out = existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			row := Attendance{
				ID:          uuid.NewString(),
				UserID:      userID,
				Date:        storeDate(date),
				CheckInTime: &at,
				Status:      status,
				TotalHours:  0,
				CreatedAt:   at,
				UpdatedAt:   at,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			out = row
			return nil

		default:
			return err
		}
	})
	if isLockConflict(err) {
		return nil, attendanceerrors.ErrAlreadyCheckedIn
	}
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	out.Date = civilDay(out.Date)
	return &out, nil
}

func (r *repository) CloseDay(ctx context.Context, id string, at time.Time, totalHours float64) (*Attendance, error) {
	res := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("id = ? AND check_out_time IS NULL", id).
		Updates(map[string]any{"check_out_time": at, "total_hours": totalHours, "updated_at": at})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, attendanceerrors.ErrAlreadyCheckedOut
	}

	var a Attendance
	if err := r.db.WithContext(ctx).Take(&a, "id = ?", id).Error; err != nil {
		return nil, mapRepositoryError(err)
	}
	a.Date = civilDay(a.Date)
	return &a, nil
}

func (r *repository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, sqlDate(date)).
		Take(&a).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	a.Date = civilDay(a.Date)
	return &a, nil
}

func (r *repository) Find(ctx context.Context, q Query) ([]Attendance, error) {
	var rows []Attendance
	if err := r.scoped(ctx, q).Find(&rows).Error; err != nil {
		return nil, err
	}
	normalizeDates(rows)
	return rows, nil
}

func (r *repository) FindJoined(ctx context.Context, q Query) ([]Attendance, error) {
	var rows []Attendance
	if err := r.scoped(ctx, q).InnerJoins("User").Find(&rows).Error; err != nil {
		return nil, err
	}
	normalizeDates(rows)
	return rows, nil
}

func (r *repository) scoped(ctx context.Context, q Query) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&Attendance{})
	if q.UserID != "" {
		db = db.Where("attendances.user_id = ?", q.UserID)
	}
	if q.Range != nil {
		db = db.Where("attendances.date BETWEEN ? AND ?", sqlDate(q.Range.From), sqlDate(q.Range.To))
	}
	if q.Status != "" {
		db = db.Where("attendances.status = ?", q.Status)
	}
	return db.Order("attendances.date DESC").Order("attendances.check_in_time DESC")
}

func normalizeDates(rows []Attendance) {
	for i := range rows {
		rows[i].Date = civilDay(rows[i].Date)
	}
}
