package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go-attendance/internal/attendance"
	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/auth"
	"go-attendance/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL = 30 * time.Second
	buildTimeout    = 10 * time.Second
)

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	Employee(ctx context.Context, userID string) (EmployeeDashboard, error)
	Manager(ctx context.Context) (ManagerDashboard, error)
}

type Config struct {
	Now      func() time.Time
	CacheTTL time.Duration
}

type service struct {
	repo   attendance.Repository
	users  auth.Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	now    func() time.Time
	ttl    time.Duration
	logger *zap.Logger
}

// NewService builds the dashboard views. rdb may be nil, which disables
// caching of the manager view.
func NewService(repo attendance.Repository, users auth.Repository, rdb *redis.Client, cfg Config, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}

	s := &service{
		repo:   repo,
		users:  users,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		now:    cfg.Now,
		ttl:    cfg.CacheTTL,
		logger: l,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCacheTTL
	}
	return s
}

func (s *service) Employee(ctx context.Context, userID string) (EmployeeDashboard, error) {
	today := attendance.DayOf(s.now())

	var todayStatus *attendance.AttendanceResponse
	rec, err := s.repo.FindByUserAndDate(ctx, userID, today)
	switch {
	case err == nil:
		res := attendance.ToResponse(*rec)
		todayStatus = &res
	case !errors.Is(err, attendanceerrors.ErrAttendanceNotFound):
		return EmployeeDashboard{}, err
	}

	month := attendance.MonthRange(today.Year(), today.Month())
	monthly, err := s.repo.Find(ctx, attendance.Query{UserID: userID, Range: &month})
	if err != nil {
		return EmployeeDashboard{}, err
	}

	recentRange := attendance.DateRange{From: today.AddDate(0, 0, -7), To: today}
	recent, err := s.repo.Find(ctx, attendance.Query{UserID: userID, Range: &recentRange})
	if err != nil {
		return EmployeeDashboard{}, err
	}

	return EmployeeDashboard{
		TodayStatus:      todayStatus,
		MonthlyStats:     attendance.CountByStatus(monthly),
		TotalHours:       attendance.TotalHours(monthly),
		RecentAttendance: attendance.ToResponses(recent),
	}, nil
}

func (s *service) Manager(ctx context.Context) (ManagerDashboard, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	today := attendance.DayOf(s.now())
	cacheKey := ManagerKey(today)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp ManagerDashboard
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		// shared by every waiter on the key, so the first caller leaving must not cancel it
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()

		resp, err := s.buildManager(buildCtx, today)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(buildCtx, cacheKey, jsonData, s.ttl).Err(); err != nil {
					log.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return ManagerDashboard{}, err
	}

	return v.(ManagerDashboard), nil
}

func (s *service) buildManager(ctx context.Context, today time.Time) (ManagerDashboard, error) {
	employees, err := s.users.ListByRole(ctx, auth.RoleEmployee)
	if err != nil {
		return ManagerDashboard{}, err
	}

	todayRange := attendance.DayRange(today)
	todayRecords, err := s.repo.FindJoined(ctx, attendance.Query{Range: &todayRange})
	if err != nil {
		return ManagerDashboard{}, err
	}

	week := attendance.DateRange{From: today.AddDate(0, 0, -6), To: today}
	weekRecords, err := s.repo.Find(ctx, attendance.Query{Range: &week})
	if err != nil {
		return ManagerDashboard{}, err
	}

	counts := attendance.ClassifyToday(todayRecords)
	late := attendance.FilterByStatus(todayRecords, attendance.StatusLate)
	absent := attendance.AbsentEmployees(employees, todayRecords)

	absentSummaries := make([]attendance.UserSummary, len(absent))
	for i := range absent {
		absentSummaries[i] = *attendance.ToUserSummary(&absent[i])
	}

	return ManagerDashboard{
		Date:           today.Format("2006-01-02"),
		TotalEmployees: len(employees),
		TodayStats: TodayStats{
			Present:    counts.Present,
			Absent:     len(absent),
			CheckedOut: counts.CheckedOut,
			Late:       len(late),
		},
		LateArrivals:       attendance.ToResponses(late),
		WeeklyTrend:        attendance.WeeklyTrend(weekRecords, today),
		DepartmentStats:    sortedCounts(attendance.DepartmentHeadcount(employees)),
		DepartmentPresence: sortedCounts(attendance.DepartmentPresence(todayRecords)),
		AbsentEmployees:    absentSummaries,
	}, nil
}

// sortedCounts orders by count desc, then department name.
func sortedCounts(m map[string]int) []DepartmentCount {
	out := make([]DepartmentCount, 0, len(m))
	for dept, n := range m {
		out = append(out, DepartmentCount{Department: dept, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Department < out[j].Department
	})
	return out
}
