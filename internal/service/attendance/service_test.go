package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skulk0156/emsbackend/internal/domain/attendance"
	"github.com/skulk0156/emsbackend/internal/domain/notification"
	"github.com/skulk0156/emsbackend/internal/domain/user"
	"github.com/skulk0156/emsbackend/internal/pkg/clock"
	"github.com/skulk0156/emsbackend/internal/pkg/validator"
)

// ============= In-memory fakes =============

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*attendance.Attendance // keyed employeeID|date
	nextID  int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Attendance)}
}

func key(employeeID, date string) string { return employeeID + "|" + date }

func (f *fakeAttendanceRepo) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(att.EmployeeID, att.Date)
	if _, ok := f.records[k]; ok {
		return attendance.Attendance{}, attendance.ErrAlreadyPunchedIn
	}
	f.nextID++
	att.ID = fmt.Sprintf("att-%d", f.nextID)
	att.CreatedAt = time.Now()
	att.UpdatedAt = att.CreatedAt
	stored := att
	f.records[k] = &stored
	return att, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key(employeeID, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeAttendanceRepo) ClosePunchOut(ctx context.Context, id string, punchOut string, status attendance.Status, workingDuration string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID != id {
			continue
		}
		if rec.PunchIn == nil || rec.PunchOut != nil {
			return false, nil
		}
		rec.PunchOut = &punchOut
		rec.Status = status
		rec.WorkingDuration = &workingDuration
		rec.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(att.EmployeeID, att.Date)
	if rec, ok := f.records[k]; ok {
		rec.DisplayName = att.DisplayName
		rec.PunchIn = nil
		rec.PunchOut = nil
		rec.Status = att.Status
		rec.WorkingDuration = nil
		rec.UpdatedAt = time.Now()
		cp := *rec
		return cp, nil
	}
	f.nextID++
	att.ID = fmt.Sprintf("att-%d", f.nextID)
	att.CreatedAt = time.Now()
	att.UpdatedAt = att.CreatedAt
	stored := att
	f.records[k] = &stored
	return att, nil
}

func (f *fakeAttendanceRepo) ListOpenSessions(ctx context.Context, date string) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.Date == date && rec.PunchIn != nil && rec.PunchOut == nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID {
			out = append(out, *rec)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) ListByDate(ctx context.Context, date string, limit, offset int) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range f.records {
		if rec.Date == date {
			out = append(out, *rec)
		}
	}
	return out, int64(len(out)), nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) FilterExisting(ctx context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if _, ok := f.users[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListByRoles(ctx context.Context, roles []user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

// capturedNotification is one observed fan-out intent.
type capturedNotification struct {
	ReceiverIDs []string
	Request     notification.CreateNotificationRequest
}

type fakeNotificationService struct {
	mu       sync.Mutex
	captured []capturedNotification
	failWith error
}

func (f *fakeNotificationService) NotifyOne(ctx context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.captured = append(f.captured, capturedNotification{ReceiverIDs: []string{req.ReceiverID}, Request: req})
	return nil
}

func (f *fakeNotificationService) NotifyMany(ctx context.Context, receiverIDs []string, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.captured = append(f.captured, capturedNotification{ReceiverIDs: receiverIDs, Request: req})
	return nil
}

func (f *fakeNotificationService) List(ctx context.Context, receiverID string, filter notification.ListFilter) (notification.ListResponse, error) {
	return notification.ListResponse{}, nil
}

func (f *fakeNotificationService) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	return 0, nil
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, receiverID, notificationID string) error {
	return nil
}

func (f *fakeNotificationService) MarkAllRead(ctx context.Context, receiverID string) error {
	return nil
}

func (f *fakeNotificationService) Delete(ctx context.Context, receiverID, notificationID string) error {
	return nil
}

func (f *fakeNotificationService) Subscribe(ctx context.Context, receiverID string) (<-chan notification.NotificationResponse, func()) {
	ch := make(chan notification.NotificationResponse)
	return ch, func() {}
}

func (f *fakeNotificationService) Stop() {}

func (f *fakeNotificationService) all() []capturedNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedNotification(nil), f.captured...)
}

// ============= Test harness =============

type fixture struct {
	repo     *fakeAttendanceRepo
	users    *fakeUserRepo
	notifier *fakeNotificationService
	svc      attendance.Service
}

func newFixture(instant time.Time) *fixture {
	repo := newFakeAttendanceRepo()
	users := &fakeUserRepo{users: map[string]user.User{
		"emp-1": {ID: "emp-1", Name: "Asha", Email: "asha@example.com", Role: user.RoleEmployee},
		"mgr-1": {ID: "mgr-1", Name: "Ravi", Email: "ravi@example.com", Role: user.RoleManager},
		"hr-1":  {ID: "hr-1", Name: "Mira", Email: "mira@example.com", Role: user.RoleHR},
	}}
	notifier := &fakeNotificationService{}
	svc := NewAttendanceService(repo, users, notifier, clock.FixedClock{Instant: instant})
	return &fixture{repo: repo, users: users, notifier: notifier, svc: svc}
}

func dayAt(hour, min, sec int) time.Time {
	return time.Date(2026, 3, 5, hour, min, sec, 0, time.UTC)
}

// ============= PunchIn =============

func TestPunchInGradesArrival(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want attendance.Status
	}{
		{"on time", dayAt(10, 30, 0), attendance.StatusPresent},
		{"late", dayAt(11, 45, 0), attendance.StatusLate},
		{"half day", dayAt(14, 10, 0), attendance.StatusHalfDay},
		{"too early", dayAt(9, 59, 59), attendance.StatusAbsent},
		{"too late", dayAt(16, 0, 0), attendance.StatusAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.at)

			resp, err := f.svc.PunchIn(context.Background(), attendance.PunchInRequest{
				EmployeeID: "emp-1", DisplayName: "Asha",
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, "2026-03-05", resp.Date)
			require.NotNil(t, resp.PunchIn)
			assert.Equal(t, clock.FormatTime(tt.at), *resp.PunchIn)
			assert.Nil(t, resp.PunchOut)
			assert.Nil(t, resp.WorkingDuration)
		})
	}
}

func TestPunchInTwiceConflicts(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	req := attendance.PunchInRequest{EmployeeID: "emp-1", DisplayName: "Asha"}

	_, err := f.svc.PunchIn(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.PunchIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedIn)
}

func TestPunchInNotifiesSupervisors(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	_, err := f.svc.PunchIn(context.Background(), attendance.PunchInRequest{
		EmployeeID: "emp-1", DisplayName: "Asha",
	})
	require.NoError(t, err)

	captured := f.notifier.all()
	require.Len(t, captured, 1)
	assert.ElementsMatch(t, []string{"mgr-1", "hr-1"}, captured[0].ReceiverIDs)
	assert.Equal(t, notification.CategoryAttendance, captured[0].Request.Category)
}

func TestPunchInSucceedsWhenNotificationFails(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	f.notifier.failWith = errors.New("queue down")

	resp, err := f.svc.PunchIn(context.Background(), attendance.PunchInRequest{
		EmployeeID: "emp-1", DisplayName: "Asha",
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
}

func TestPunchInValidation(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	_, err := f.svc.PunchIn(context.Background(), attendance.PunchInRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

// ============= PunchOut =============

func punchIn(t *testing.T, f *fixture, at time.Time) {
	t.Helper()
	f.svc = NewAttendanceService(f.repo, f.users, f.notifier, clock.FixedClock{Instant: at})
	_, err := f.svc.PunchIn(context.Background(), attendance.PunchInRequest{
		EmployeeID: "emp-1", DisplayName: "Asha",
	})
	require.NoError(t, err)
}

func punchOutAt(f *fixture, at time.Time) (attendance.AttendanceResponse, error) {
	f.svc = NewAttendanceService(f.repo, f.users, f.notifier, clock.FixedClock{Instant: at})
	return f.svc.PunchOut(context.Background(), "emp-1")
}

func TestPunchOutComputesDurationAndKeepsStatus(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))

	resp, err := punchOutAt(f, dayAt(17, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusPresent, resp.Status)
	require.NotNil(t, resp.WorkingDuration)
	assert.Equal(t, "6h 30m", *resp.WorkingDuration)
	require.NotNil(t, resp.PunchOut)
	assert.Equal(t, "05:00:00 PM", *resp.PunchOut)
}

func TestPunchOutAtExactlySixIsOnTime(t *testing.T) {
	f := newFixture(dayAt(11, 0, 0))
	punchIn(t, f, dayAt(11, 0, 0))

	resp, err := punchOutAt(f, dayAt(18, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Status)
	assert.Equal(t, "7h", *resp.WorkingDuration)
}

func TestPunchOutAfterSixForfeitsDay(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))

	resp, err := punchOutAt(f, dayAt(18, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, resp.Status)
	assert.Equal(t, "7h 30m", *resp.WorkingDuration)
}

func TestPunchOutWithoutPunchIn(t *testing.T) {
	f := newFixture(dayAt(17, 0, 0))

	_, err := f.svc.PunchOut(context.Background(), "emp-1")
	assert.ErrorIs(t, err, attendance.ErrNotPunchedIn)
}

func TestPunchOutTwiceConflicts(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))

	_, err := punchOutAt(f, dayAt(17, 0, 0))
	require.NoError(t, err)

	_, err = punchOutAt(f, dayAt(17, 30, 0))
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedOut)
}

// ============= MarkManual =============

func TestMarkManualDiscardsPunches(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))

	resp, err := f.svc.MarkManual(context.Background(), attendance.MarkManualRequest{
		EmployeeID:  "emp-1",
		DisplayName: "Asha",
		Date:        "2026-03-05",
		Status:      attendance.StatusLeave,
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusLeave, resp.Status)
	assert.Nil(t, resp.PunchIn)
	assert.Nil(t, resp.PunchOut)
	assert.Nil(t, resp.WorkingDuration)
}

func TestMarkManualCreatesWhenMissing(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	resp, err := f.svc.MarkManual(context.Background(), attendance.MarkManualRequest{
		EmployeeID:  "emp-1",
		DisplayName: "Asha",
		Date:        "2026-03-04",
		Status:      attendance.StatusAbsent,
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, resp.Status)
}

func TestMarkManualRejectsMeasuredStatuses(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	for _, status := range []attendance.Status{attendance.StatusPresent, attendance.StatusLate, attendance.StatusHalfDay, "bogus"} {
		_, err := f.svc.MarkManual(context.Background(), attendance.MarkManualRequest{
			EmployeeID:  "emp-1",
			DisplayName: "Asha",
			Date:        "2026-03-05",
			Status:      status,
		})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs, "status %q", status)
	}
}

// ============= ReconcileDay =============

func TestReconcileDayClosesOpenSessions(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))

	// A second employee punches in too.
	f.users.users["emp-2"] = user.User{ID: "emp-2", Name: "Dev", Role: user.RoleEmployee}
	_, err := f.svc.PunchIn(context.Background(), attendance.PunchInRequest{
		EmployeeID: "emp-2", DisplayName: "Dev",
	})
	require.NoError(t, err)

	closed, err := f.svc.ReconcileDay(context.Background(), "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	rec, err := f.repo.GetByEmployeeAndDate(context.Background(), "emp-1", "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAutoPunchOut, rec.Status)
	require.NotNil(t, rec.PunchOut)
	assert.Equal(t, clock.AutoPunchOutTime, *rec.PunchOut)
	require.NotNil(t, rec.WorkingDuration)
	assert.Equal(t, "7h 31m", *rec.WorkingDuration)
}

func TestReconcileDayIsIdempotent(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))

	closed, err := f.svc.ReconcileDay(context.Background(), "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	closed, err = f.svc.ReconcileDay(context.Background(), "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestReconcileDaySkipsClosedSessions(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))
	_, err := punchOutAt(f, dayAt(17, 0, 0))
	require.NoError(t, err)

	closed, err := f.svc.ReconcileDay(context.Background(), "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	rec, err := f.repo.GetByEmployeeAndDate(context.Background(), "emp-1", "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestReconcileDayContinuesPastBadRecords(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	bad := "not a time"
	f.repo.records[key("emp-x", "2026-03-05")] = &attendance.Attendance{
		ID: "att-bad", EmployeeID: "emp-x", Date: "2026-03-05", PunchIn: &bad,
	}
	punchIn(t, f, dayAt(10, 30, 0))

	closed, err := f.svc.ReconcileDay(context.Background(), "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
}

func TestReconcileDayValidatesDate(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	_, err := f.svc.ReconcileDay(context.Background(), "03/05/2026")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

// ============= Queries =============

func TestGetTodayMissing(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	_, err := f.svc.GetToday(context.Background(), "emp-1")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestListByDateValidatesDate(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))

	_, err := f.svc.ListByDate(context.Background(), "garbage", attendance.ListFilter{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestListByEmployeePaginates(t *testing.T) {
	f := newFixture(dayAt(10, 30, 0))
	punchIn(t, f, dayAt(10, 30, 0))

	resp, err := f.svc.ListByEmployee(context.Background(), "emp-1", attendance.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Len(t, resp.Attendances, 1)
}
