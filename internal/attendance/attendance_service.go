package attendance

import (
	"bytes"
	"context"
	"errors"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/auth"
	autherrors "go-attendance/internal/auth/errors"
	"go-attendance/internal/events"
	"go-attendance/internal/shared/contextutil"

	"go.uber.org/zap"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, userID string) (CheckInResponse, error)
	CheckOut(ctx context.Context, userID string) (CheckOutResponse, error)
	MyHistory(ctx context.Context, userID string, period PeriodQuery) ([]AttendanceResponse, error)
	MySummary(ctx context.Context, userID string, period PeriodQuery) (MySummaryResponse, error)
	Today(ctx context.Context, userID string) (*AttendanceResponse, error)
	GetAll(ctx context.Context, q AllQuery) ([]AttendanceResponse, error)
	GetEmployeeHistory(ctx context.Context, employeeID string, period PeriodQuery) ([]AttendanceResponse, error)
	TeamSummary(ctx context.Context, period PeriodQuery) (SummaryCounts, error)
	TodayStatus(ctx context.Context) (TodayStatusResponse, error)
	// Export renders the matched records as CSV and returns the row count.
	Export(ctx context.Context, q ExportQuery) ([]byte, int, error)
}

type ServiceConfig struct {
	Now       func() time.Time
	Policy    StatusPolicy
	Publisher EventPublisher
}

type service struct {
	repo      Repository
	users     auth.Repository
	now       func() time.Time
	policy    StatusPolicy
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(repo Repository, users auth.Repository, cfg ServiceConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}

	s := &service{
		repo:      repo,
		users:     users,
		now:       cfg.Now,
		policy:    cfg.Policy,
		publisher: cfg.Publisher,
		logger:    l,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.policy == nil {
		s.policy = alwaysPresentPolicy{}
	}
	if s.publisher == nil {
		s.publisher = noopEventPublisher{}
	}
	return s
}

func (s *service) CheckIn(ctx context.Context, userID string) (CheckInResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	now := s.now()
	today := DayOf(now)

	rec, err := s.repo.OpenDay(ctx, userID, today, now, s.policy.StatusFor(now))
	if err != nil {
		if errors.Is(err, attendanceerrors.ErrAlreadyCheckedIn) {
			log.Debug("duplicate check-in", zap.String("user_id", userID))
		}
		return CheckInResponse{}, err
	}

	log.Info("checked in",
		zap.String("user_id", userID),
		zap.String("attendance_id", rec.ID),
		zap.String("status", rec.Status),
	)
	s.publish(ctx, events.AttendanceCheckedIn, rec, now)

	return CheckInResponse{
		Message:     "Checked in successfully",
		CheckInTime: now,
		Attendance:  ToResponse(*rec),
	}, nil
}

func (s *service) CheckOut(ctx context.Context, userID string) (CheckOutResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	now := s.now()
	today := DayOf(now)

	rec, err := s.repo.FindByUserAndDate(ctx, userID, today)
	if err != nil {
		if errors.Is(err, attendanceerrors.ErrAttendanceNotFound) {
			return CheckOutResponse{}, attendanceerrors.ErrNoCheckInFound
		}
		return CheckOutResponse{}, err
	}
	if !rec.CheckedIn() {
		return CheckOutResponse{}, attendanceerrors.ErrNoCheckInFound
	}
	if rec.CheckedOut() {
		return CheckOutResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	hours := HoursBetween(*rec.CheckInTime, now)
	closed, err := s.repo.CloseDay(ctx, rec.ID, now, hours)
	if err != nil {
		return CheckOutResponse{}, err
	}

	log.Info("checked out",
		zap.String("user_id", userID),
		zap.String("attendance_id", closed.ID),
		zap.Float64("total_hours", closed.TotalHours),
	)
	s.publish(ctx, events.AttendanceCheckedOut, closed, now)

	return CheckOutResponse{
		Message:      "Checked out successfully",
		CheckOutTime: now,
		TotalHours:   closed.TotalHours,
		Attendance:   ToResponse(*closed),
	}, nil
}

func (s *service) MyHistory(ctx context.Context, userID string, period PeriodQuery) ([]AttendanceResponse, error) {
	q := Query{UserID: userID}
	// hanya difilter kalau month dan year dua-duanya ada
	if period.Month > 0 && period.Year > 0 {
		r := MonthRange(period.Year, time.Month(period.Month))
		q.Range = &r
	}

	rows, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return ToResponses(rows), nil
}

func (s *service) MySummary(ctx context.Context, userID string, period PeriodQuery) (MySummaryResponse, error) {
	r := s.monthOrCurrent(period)
	rows, err := s.repo.Find(ctx, Query{UserID: userID, Range: &r})
	if err != nil {
		return MySummaryResponse{}, err
	}

	return MySummaryResponse{
		SummaryCounts: CountByStatus(rows),
		TotalHours:    TotalHours(rows),
	}, nil
}

func (s *service) Today(ctx context.Context, userID string) (*AttendanceResponse, error) {
	rec, err := s.repo.FindByUserAndDate(ctx, userID, DayOf(s.now()))
	if err != nil {
		if errors.Is(err, attendanceerrors.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, err
	}

	res := ToResponse(*rec)
	return &res, nil
}

func (s *service) GetAll(ctx context.Context, in AllQuery) ([]AttendanceResponse, error) {
	q := Query{Status: in.Status}
	if q.Status != "" && !ValidStatus(q.Status) {
		return nil, attendanceerrors.ErrInvalidStatus
	}
	if in.Date != "" {
		day, err := ParseDate(in.Date)
		if err != nil {
			return nil, err
		}
		r := DayRange(day)
		q.Range = &r
	}

	rows, err := s.repo.FindJoined(ctx, q)
	if err != nil {
		return nil, err
	}
	return ToResponses(rows), nil
}

func (s *service) GetEmployeeHistory(ctx context.Context, employeeID string, period PeriodQuery) ([]AttendanceResponse, error) {
	if _, err := s.users.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return nil, attendanceerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return s.MyHistory(ctx, employeeID, period)
}

func (s *service) TeamSummary(ctx context.Context, period PeriodQuery) (SummaryCounts, error) {
	r := s.monthOrCurrent(period)
	rows, err := s.repo.Find(ctx, Query{Range: &r})
	if err != nil {
		return SummaryCounts{}, err
	}
	return CountByStatus(rows), nil
}

func (s *service) TodayStatus(ctx context.Context) (TodayStatusResponse, error) {
	r := DayRange(s.now())
	rows, err := s.repo.FindJoined(ctx, Query{Range: &r})
	if err != nil {
		return TodayStatusResponse{}, err
	}

	return TodayStatusResponse{
		TodayCounts: ClassifyToday(rows),
		Data:        ToResponses(rows),
	}, nil
}

func (s *service) Export(ctx context.Context, in ExportQuery) ([]byte, int, error) {
	q, err := exportQuery(in)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.repo.FindJoined(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, 0, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("attendance exported", zap.Int("rows", len(rows)))
	return buf.Bytes(), len(rows), nil
}

// exportQuery applies the date range only when both bounds are given.
func exportQuery(in ExportQuery) (Query, error) {
	q := Query{UserID: in.EmployeeID}
	if in.StartDate == "" || in.EndDate == "" {
		return q, nil
	}

	from, err := ParseDate(in.StartDate)
	if err != nil {
		return Query{}, err
	}
	to, err := ParseDate(in.EndDate)
	if err != nil {
		return Query{}, err
	}
	if from.After(to) {
		return Query{}, attendanceerrors.ErrInvalidDateRange
	}

	q.Range = &DateRange{From: from, To: to}
	return q, nil
}

func (s *service) monthOrCurrent(period PeriodQuery) DateRange {
	now := s.now().In(time.Local)
	year, month := now.Year(), now.Month()
	if period.Year > 0 {
		year = period.Year
	}
	if period.Month > 0 {
		month = time.Month(period.Month)
	}
	return MonthRange(year, month)
}

func (s *service) publish(ctx context.Context, eventType string, rec *Attendance, at time.Time) {
	event := events.AttendanceEvent{
		EventType:    eventType,
		AttendanceID: rec.ID,
		UserID:       rec.UserID,
		Date:         rec.Date.Format(dateLayout),
		Status:       rec.Status,
		TotalHours:   rec.TotalHours,
		OccurredAt:   at.UTC(),
	}
	if err := s.publisher.PublishAttendanceEvent(ctx, event); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("publish attendance event failed",
			zap.String("event_type", eventType),
			zap.String("attendance_id", rec.ID),
			zap.Error(err),
		)
	}
}
