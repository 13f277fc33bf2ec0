package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-attendance/internal/attendance"
	attendanceMock "go-attendance/internal/attendance/mock"
	"go-attendance/internal/auth"
	authMock "go-attendance/internal/auth/mock"
	"go-attendance/internal/dashboard"
	"go-attendance/internal/events"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.Local)
}

// seedTeam creates 10 employees and one manager; the first `checkedIn`
// employees check in at 09:00 and the first `checkedOut` of them leave at 13:00.
func seedTeam(t *testing.T, checkedIn, checkedOut int) (attendance.Repository, auth.Repository, *clock) {
	t.Helper()
	ctx := context.Background()

	users := auth.NewMemoryRepository()
	require.NoError(t, users.Create(ctx, &auth.User{ID: "m-1", Email: "manager@example.com", Role: auth.RoleManager, Department: "Management"}))
	for i := 1; i <= 10; i++ {
		dept := "Engineering"
		if i%2 == 0 {
			dept = "Sales"
		}
		require.NoError(t, users.Create(ctx, &auth.User{
			ID:           fmt.Sprintf("e-%d", i),
			Name:         fmt.Sprintf("Employee %d", i),
			Email:        fmt.Sprintf("emp%d@example.com", i),
			Role:         auth.RoleEmployee,
			EmployeeCode: fmt.Sprintf("EMP%03d", i),
			Department:   dept,
		}))
	}

	repo := attendance.NewMemoryRepository(users)
	c := &clock{now: at(time.March, 4, 9)}
	svc := attendance.NewService(repo, users, attendance.ServiceConfig{Now: c.Now})

	for i := 1; i <= checkedIn; i++ {
		_, err := svc.CheckIn(ctx, fmt.Sprintf("e-%d", i))
		require.NoError(t, err)
	}
	c.now = at(time.March, 4, 13)
	for i := 1; i <= checkedOut; i++ {
		_, err := svc.CheckOut(ctx, fmt.Sprintf("e-%d", i))
		require.NoError(t, err)
	}
	return repo, users, c
}

func TestService_Manager_TodayStats(t *testing.T) {
	repo, users, c := seedTeam(t, 6, 4)
	svc := dashboard.NewService(repo, users, nil, dashboard.Config{Now: c.Now})

	res, err := svc.Manager(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, res.TotalEmployees)
	assert.Equal(t, dashboard.TodayStats{Present: 2, Absent: 4, CheckedOut: 4, Late: 0}, res.TodayStats)
	assert.Empty(t, res.LateArrivals)
	assert.Len(t, res.AbsentEmployees, 4)
	assert.Equal(t, "e-7", res.AbsentEmployees[0].ID)

	require.Len(t, res.WeeklyTrend, 7)
	assert.Equal(t, attendance.TrendPoint{Date: "2024-03-04", Count: 6}, res.WeeklyTrend[6])
	assert.Equal(t, 0, res.WeeklyTrend[0].Count)

	assert.Equal(t, []dashboard.DepartmentCount{
		{Department: "Engineering", Count: 5},
		{Department: "Sales", Count: 5},
	}, res.DepartmentStats)
	assert.Equal(t, []dashboard.DepartmentCount{
		{Department: "Engineering", Count: 3},
		{Department: "Sales", Count: 3},
	}, res.DepartmentPresence)
}

func TestService_Manager_Cache(t *testing.T) {
	ctx := context.Background()
	today := at(time.March, 4, 10)
	key := dashboard.ManagerKey(attendance.DayOf(today))

	t.Run("Hit cache - repository untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		rdb, redisMock := redismock.NewClientMock()
		svc := dashboard.NewService(
			attendanceMock.NewMockRepository(ctrl),
			authMock.NewMockRepository(ctrl),
			rdb,
			dashboard.Config{Now: func() time.Time { return today }},
		)

		cached, _ := json.Marshal(dashboard.ManagerDashboard{Date: "2024-03-04", TotalEmployees: 3})
		redisMock.ExpectGet(key).SetVal(string(cached))

		res, err := svc.Manager(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 3, res.TotalEmployees)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Miss cache - build and store with ttl", func(t *testing.T) {
		repo, users, _ := seedTeam(t, 1, 0)
		rdb, redisMock := redismock.NewClientMock()
		svc := dashboard.NewService(repo, users, rdb, dashboard.Config{
			Now:      func() time.Time { return today },
			CacheTTL: time.Minute,
		})

		redisMock.ExpectGet(key).RedisNil()
		redisMock.CustomMatch(func(expected, actual []interface{}) error {
			if len(actual) < 2 || actual[0] != "set" || actual[1] != key {
				return fmt.Errorf("unexpected command %v", actual)
			}
			return nil
		}).ExpectSet(key, "", time.Minute).SetVal("OK")

		res, err := svc.Manager(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.TodayStats.Present)
		assert.Equal(t, 9, res.TodayStats.Absent)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Repository error is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := authMock.NewMockRepository(ctrl)
		rdb, redisMock := redismock.NewClientMock()
		svc := dashboard.NewService(attendanceMock.NewMockRepository(ctrl), users, rdb, dashboard.Config{
			Now: func() time.Time { return today },
		})

		redisMock.ExpectGet(key).RedisNil()
		users.EXPECT().ListByRole(gomock.Any(), auth.RoleEmployee).Return(nil, errors.New("db down"))

		_, err := svc.Manager(ctx)

		assert.EqualError(t, err, "db down")
	})

	t.Run("Shared build survives caller cancellation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := authMock.NewMockRepository(ctrl)
		repo := attendanceMock.NewMockRepository(ctrl)
		svc := dashboard.NewService(repo, users, nil, dashboard.Config{
			Now: func() time.Time { return today },
		})

		callerCtx, cancel := context.WithCancel(ctx)
		cancel()

		users.EXPECT().ListByRole(gomock.Any(), auth.RoleEmployee).
			DoAndReturn(func(ctx context.Context, _ string) ([]auth.User, error) {
				return []auth.User{{ID: "e-1", Role: auth.RoleEmployee, Department: "Sales"}}, ctx.Err()
			})
		repo.EXPECT().FindJoined(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ attendance.Query) ([]attendance.Attendance, error) {
				return nil, ctx.Err()
			})
		repo.EXPECT().Find(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ attendance.Query) ([]attendance.Attendance, error) {
				return nil, ctx.Err()
			})

		res, err := svc.Manager(callerCtx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalEmployees)
		assert.Equal(t, 1, res.TodayStats.Absent)
	})
}

func TestService_Employee(t *testing.T) {
	ctx := context.Background()
	users := auth.NewMemoryRepository()
	require.NoError(t, users.Create(ctx, &auth.User{ID: "e-1", Email: "emp1@example.com", Role: auth.RoleEmployee}))
	repo := attendance.NewMemoryRepository(users)
	c := &clock{}
	att := attendance.NewService(repo, users, attendance.ServiceConfig{Now: c.Now})

	for _, d := range []time.Time{at(time.February, 20, 9), at(time.February, 26, 9), at(time.March, 1, 9), at(time.March, 4, 9)} {
		c.now = d
		_, err := att.CheckIn(ctx, "e-1")
		require.NoError(t, err)
		c.now = d.Add(8 * time.Hour)
		_, err = att.CheckOut(ctx, "e-1")
		require.NoError(t, err)
	}

	svc := dashboard.NewService(repo, users, nil, dashboard.Config{Now: func() time.Time { return at(time.March, 4, 18) }})

	res, err := svc.Employee(ctx, "e-1")

	require.NoError(t, err)
	require.NotNil(t, res.TodayStatus)
	assert.Equal(t, "2024-03-04", res.TodayStatus.Date)
	assert.Equal(t, 2, res.MonthlyStats.Total)
	assert.Equal(t, 16.0, res.TotalHours)
	require.Len(t, res.RecentAttendance, 3)
	assert.Equal(t, "2024-03-04", res.RecentAttendance[0].Date)
	assert.Equal(t, "2024-02-26", res.RecentAttendance[2].Date)

	t.Run("no record today", func(t *testing.T) {
		svc := dashboard.NewService(repo, users, nil, dashboard.Config{Now: func() time.Time { return at(time.March, 5, 8) }})
		res, err := svc.Employee(ctx, "e-1")
		require.NoError(t, err)
		assert.Nil(t, res.TodayStatus)
	})
}

func TestCacheInvalidator(t *testing.T) {
	ctx := context.Background()
	event := events.AttendanceEvent{EventType: events.AttendanceCheckedIn, Date: "2024-03-04"}

	t.Run("deletes day key", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectDel("dashboard:manager:2024-03-04").SetVal(1)

		err := dashboard.NewCacheInvalidator(rdb).PublishAttendanceEvent(ctx, event)

		assert.NoError(t, err)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("redis failure surfaces", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectDel("dashboard:manager:2024-03-04").SetErr(errors.New("redis down"))

		err := dashboard.NewCacheInvalidator(rdb).PublishAttendanceEvent(ctx, event)

		assert.Error(t, err)
	})
}
