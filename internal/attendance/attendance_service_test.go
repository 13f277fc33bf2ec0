package attendance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-attendance/internal/attendance"
	attendanceerrors "go-attendance/internal/attendance/errors"
	attendanceMock "go-attendance/internal/attendance/mock"
	"go-attendance/internal/auth"
	"go-attendance/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AttendanceEvent
	err    error
}

func (p *recordingPublisher) PublishAttendanceEvent(_ context.Context, e events.AttendanceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	svc       attendance.Service
	repo      attendance.Repository
	users     auth.Repository
	clock     *fakeClock
	publisher *recordingPublisher
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.Local)
}

func newFixture(t *testing.T, users ...auth.User) *fixture {
	t.Helper()
	ctx := context.Background()

	userRepo := auth.NewMemoryRepository()
	for i := range users {
		require.NoError(t, userRepo.Create(ctx, &users[i]))
	}

	f := &fixture{
		users:     userRepo,
		repo:      attendance.NewMemoryRepository(userRepo),
		clock:     &fakeClock{now: at(4, 9, 0)},
		publisher: &recordingPublisher{},
	}
	f.svc = attendance.NewService(f.repo, userRepo, attendance.ServiceConfig{
		Now:       f.clock.Now,
		Publisher: f.publisher,
	})
	return f
}

func employee(id, dept string) auth.User {
	return auth.User{
		ID:           id,
		Name:         "Employee " + id,
		Email:        id + "@example.com",
		Role:         auth.RoleEmployee,
		EmployeeCode: "EMP-" + id,
		Department:   dept,
	}
}

func TestService_CheckInCheckOutLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, employee("u-1", "Engineering"))

	in, err := f.svc.CheckIn(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Checked in successfully", in.Message)
	assert.Equal(t, attendance.StatusPresent, in.Attendance.Status)
	assert.Equal(t, "2024-03-04", in.Attendance.Date)
	assert.Zero(t, in.Attendance.TotalHours)

	t.Run("second check-in fails", func(t *testing.T) {
		f.clock.Set(at(4, 10, 0))
		_, err := f.svc.CheckIn(ctx, "u-1")
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
		assert.Equal(t, "Already checked in today", attendanceerrors.ErrAlreadyCheckedIn.Message)
	})

	f.clock.Set(at(4, 17, 30))
	out, err := f.svc.CheckOut(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Checked out successfully", out.Message)
	assert.Equal(t, 8.5, out.TotalHours)
	assert.Equal(t, attendance.StatusPresent, out.Attendance.Status)
	require.NotNil(t, out.Attendance.CheckOutTime)
	assert.True(t, !out.Attendance.CheckOutTime.Before(*out.Attendance.CheckInTime))

	t.Run("second check-out fails", func(t *testing.T) {
		_, err := f.svc.CheckOut(ctx, "u-1")
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
	})

	t.Run("check-in after check-out still fails", func(t *testing.T) {
		_, err := f.svc.CheckIn(ctx, "u-1")
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
	})

	t.Run("events published once per transition", func(t *testing.T) {
		require.Len(t, f.publisher.events, 2)
		assert.Equal(t, events.AttendanceCheckedIn, f.publisher.events[0].EventType)
		assert.Equal(t, events.AttendanceCheckedOut, f.publisher.events[1].EventType)
		assert.Equal(t, 8.5, f.publisher.events[1].TotalHours)
		assert.Equal(t, "2024-03-04", f.publisher.events[1].Date)
	})

	t.Run("next day opens a new record", func(t *testing.T) {
		f.clock.Set(at(5, 8, 45))
		_, err := f.svc.CheckIn(ctx, "u-1")
		assert.NoError(t, err)

		history, err := f.svc.MyHistory(ctx, "u-1", attendance.PeriodQuery{})
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "2024-03-05", history[0].Date)
		assert.Equal(t, "2024-03-04", history[1].Date)
	})
}

func TestService_CheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t, employee("u-1", "Engineering"))

	_, err := f.svc.CheckOut(context.Background(), "u-1")

	assert.ErrorIs(t, err, attendanceerrors.ErrNoCheckInFound)
	assert.Equal(t, 404, attendanceerrors.ErrNoCheckInFound.HTTPStatus)
}

func TestService_ConcurrentCheckInsCreateOneRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, employee("u-1", "Engineering"))

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.CheckIn(ctx, "u-1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, attendanceerrors.ErrAlreadyCheckedIn):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	rows, err := f.repo.Find(ctx, attendance.Query{UserID: "u-1"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestService_OpenDayFillsBlankRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, employee("u-1", "Engineering"))
	ctrl := gomock.NewController(t)
	repo := attendanceMock.NewMockRepository(ctrl)
	svc := attendance.NewService(repo, f.users, attendance.ServiceConfig{Now: f.clock.Now})

	day := attendance.DayOf(f.clock.Now())
	checkIn := f.clock.Now()
	repo.EXPECT().
		OpenDay(ctx, "u-1", day, checkIn, attendance.StatusPresent).
		Return(&attendance.Attendance{ID: "a-1", UserID: "u-1", Date: day, CheckInTime: &checkIn, Status: attendance.StatusPresent}, nil)

	res, err := svc.CheckIn(ctx, "u-1")

	assert.NoError(t, err)
	assert.Equal(t, "a-1", res.Attendance.ID)
}

func TestService_CheckOutRaceLost(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := attendanceMock.NewMockRepository(ctrl)
	clock := &fakeClock{now: at(4, 17, 0)}
	svc := attendance.NewService(repo, auth.NewMemoryRepository(), attendance.ServiceConfig{Now: clock.Now})

	checkIn := at(4, 9, 0)
	repo.EXPECT().
		FindByUserAndDate(ctx, "u-1", attendance.DayOf(clock.Now())).
		Return(&attendance.Attendance{ID: "a-1", UserID: "u-1", CheckInTime: &checkIn}, nil)
	repo.EXPECT().
		CloseDay(ctx, "a-1", clock.Now(), 8.0).
		Return(nil, attendanceerrors.ErrAlreadyCheckedOut)

	_, err := svc.CheckOut(ctx, "u-1")

	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
}

func TestService_PublishFailureDoesNotFailCheckIn(t *testing.T) {
	f := newFixture(t, employee("u-1", "Engineering"))
	f.publisher.err = errors.New("broker down")

	_, err := f.svc.CheckIn(context.Background(), "u-1")

	assert.NoError(t, err)
	assert.Len(t, f.publisher.events, 1)
}

func TestService_LatePolicy(t *testing.T) {
	ctx := context.Background()
	userRepo := auth.NewMemoryRepository()
	require.NoError(t, userRepo.Create(ctx, &auth.User{ID: "u-1", Email: "u1@example.com", Role: auth.RoleEmployee}))

	policy, err := attendance.NewStatusPolicy("09:00")
	require.NoError(t, err)
	clock := &fakeClock{now: at(4, 9, 15)}
	svc := attendance.NewService(attendance.NewMemoryRepository(userRepo), userRepo, attendance.ServiceConfig{
		Now:    clock.Now,
		Policy: policy,
	})

	res, err := svc.CheckIn(ctx, "u-1")

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, res.Attendance.Status)
}

func TestService_HistoryAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, employee("u-1", "Engineering"), employee("u-2", "Sales"))

	// u-1: Feb 28 and Mar 4, 5 ; u-2: Mar 4
	for _, d := range []time.Time{
		time.Date(2024, time.February, 28, 9, 0, 0, 0, time.Local),
		at(4, 9, 0),
		at(5, 9, 0),
	} {
		f.clock.Set(d)
		_, err := f.svc.CheckIn(ctx, "u-1")
		require.NoError(t, err)
		f.clock.Set(d.Add(8*time.Hour + 15*time.Minute))
		_, err = f.svc.CheckOut(ctx, "u-1")
		require.NoError(t, err)
	}
	f.clock.Set(at(4, 10, 0))
	_, err := f.svc.CheckIn(ctx, "u-2")
	require.NoError(t, err)

	t.Run("history filtered by month", func(t *testing.T) {
		res, err := f.svc.MyHistory(ctx, "u-1", attendance.PeriodQuery{Month: 3, Year: 2024})
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "2024-03-05", res[0].Date)
	})

	t.Run("history ignores a lone month", func(t *testing.T) {
		res, err := f.svc.MyHistory(ctx, "u-1", attendance.PeriodQuery{Month: 3})
		require.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("summary defaults to current month", func(t *testing.T) {
		f.clock.Set(at(20, 12, 0))
		res, err := f.svc.MySummary(ctx, "u-1", attendance.PeriodQuery{})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 2, res.Present)
		assert.Equal(t, 0, res.Late)
		assert.Equal(t, 16.5, res.TotalHours)
		assert.Equal(t, res.Total, res.Present+res.Absent+res.Late+res.HalfDay)
	})

	t.Run("team summary", func(t *testing.T) {
		res, err := f.svc.TeamSummary(ctx, attendance.PeriodQuery{Month: 3, Year: 2024})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 3, res.Present)
	})

	t.Run("employee history", func(t *testing.T) {
		res, err := f.svc.GetEmployeeHistory(ctx, "u-2", attendance.PeriodQuery{})
		require.NoError(t, err)
		assert.Len(t, res, 1)

		_, err = f.svc.GetEmployeeHistory(ctx, "ghost", attendance.PeriodQuery{})
		assert.ErrorIs(t, err, attendanceerrors.ErrEmployeeNotFound)
	})

	t.Run("all joined with filters", func(t *testing.T) {
		res, err := f.svc.GetAll(ctx, attendance.AllQuery{Date: "2024-03-04"})
		require.NoError(t, err)
		require.Len(t, res, 2)
		for _, r := range res {
			require.NotNil(t, r.User)
			assert.Equal(t, r.UserID, r.User.ID)
		}

		_, err = f.svc.GetAll(ctx, attendance.AllQuery{Date: "04/03/2024"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDate)

		_, err = f.svc.GetAll(ctx, attendance.AllQuery{Status: "sick"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidStatus)
	})

	t.Run("today status", func(t *testing.T) {
		f.clock.Set(at(4, 18, 0))
		res, err := f.svc.TodayStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Present)
		assert.Equal(t, 1, res.CheckedOut)
		assert.Equal(t, 0, res.NotCheckedIn)
		assert.Len(t, res.Data, 2)
	})

	t.Run("today", func(t *testing.T) {
		f.clock.Set(at(5, 18, 0))
		rec, err := f.svc.Today(ctx, "u-1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "2024-03-05", rec.Date)

		rec, err = f.svc.Today(ctx, "u-2")
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("export matches table rows", func(t *testing.T) {
		q := attendance.ExportQuery{StartDate: "2024-03-01", EndDate: "2024-03-31"}
		body, n, err := f.svc.Export(ctx, q)
		require.NoError(t, err)

		table, err := f.repo.FindJoined(ctx, attendance.Query{Range: &attendance.DateRange{From: at(1, 0, 0), To: at(31, 0, 0)}})
		require.NoError(t, err)
		assert.Equal(t, len(table), n)
		assert.Contains(t, string(body), "Employee ID,Name,Date,Check In,Check Out,Status,Total Hours")

		_, _, err = f.svc.Export(ctx, attendance.ExportQuery{StartDate: "2024-03-31", EndDate: "2024-03-01"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateRange)

		_, all, err := f.svc.Export(ctx, attendance.ExportQuery{StartDate: "2024-03-31"})
		require.NoError(t, err)
		assert.Equal(t, 4, all)

		_, mine, err := f.svc.Export(ctx, attendance.ExportQuery{EmployeeID: "u-2"})
		require.NoError(t, err)
		assert.Equal(t, 1, mine)
	})
}
