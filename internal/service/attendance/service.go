package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/skulk0156/emsbackend/internal/domain/attendance"
	"github.com/skulk0156/emsbackend/internal/domain/notification"
	"github.com/skulk0156/emsbackend/internal/domain/user"
	"github.com/skulk0156/emsbackend/internal/pkg/clock"
	"github.com/skulk0156/emsbackend/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendanceRepo  attendance.Repository
	userRepo        user.Repository
	notificationSvc notification.Service
	clk             clock.Clock
}

func NewAttendanceService(
	attendanceRepo attendance.Repository,
	userRepo user.Repository,
	notificationSvc notification.Service,
	clk clock.Clock,
) attendance.Service {
	return &AttendanceServiceImpl{
		attendanceRepo:  attendanceRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		clk:             clk,
	}
}

// PunchIn implements attendance.Service.
func (a *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clk.Now()
	today := clock.CivilDate(now)

	existing, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyPunchedIn
	}

	punchIn := clock.FormatTime(now)
	data := attendance.Attendance{
		EmployeeID:  req.EmployeeID,
		DisplayName: req.DisplayName,
		Date:        today,
		PunchIn:     &punchIn,
		Status:      attendance.StatusForPunchIn(now),
	}

	// The unique (employee_id, date) index is the serialization point;
	// a concurrent punch-in loses here with ErrAlreadyPunchedIn.
	created, err := a.attendanceRepo.Create(ctx, data)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.notifySupervisors(ctx, req.EmployeeID, notification.CreateNotificationRequest{
		SenderID: &req.EmployeeID,
		Title:    "Employee Punched In",
		Message:  fmt.Sprintf("%s punched in at %s (%s)", req.DisplayName, punchIn, created.Status),
		Category: notification.CategoryAttendance,
		Priority: notification.PriorityLow,
		Link:     "/attendance?date=" + today,
	})

	return attendance.ToResponse(created), nil
}

// PunchOut implements attendance.Service.
func (a *AttendanceServiceImpl) PunchOut(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	if validator.IsEmpty(employeeID) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{
			{Field: "employee_id", Message: "employee id is required"},
		}
	}

	now := a.clk.Now()
	today := clock.CivilDate(now)

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec == nil || rec.PunchIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotPunchedIn
	}
	if rec.PunchOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyPunchedOut
	}

	punchOut := clock.FormatTime(now)
	duration, err := clock.WorkingDuration(*rec.PunchIn, punchOut)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to compute working duration: %w", err)
	}

	// Leaving after 18:00 forfeits the day regardless of arrival grade.
	status := rec.Status
	if attendance.IsLateDeparture(now) {
		status = attendance.StatusAbsent
	}

	ok, err := a.attendanceRepo.ClosePunchOut(ctx, rec.ID, punchOut, status, duration)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to close punch session: %w", err)
	}
	if !ok {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyPunchedOut
	}

	rec.PunchOut = &punchOut
	rec.Status = status
	rec.WorkingDuration = &duration

	a.notifySupervisors(ctx, employeeID, notification.CreateNotificationRequest{
		SenderID: &employeeID,
		Title:    "Employee Punched Out",
		Message:  fmt.Sprintf("%s punched out at %s after %s", rec.DisplayName, punchOut, duration),
		Category: notification.CategoryAttendance,
		Priority: notification.PriorityLow,
		Link:     "/attendance?date=" + today,
	})

	return attendance.ToResponse(*rec), nil
}

// MarkManual implements attendance.Service. Manual marks are administrative
// facts, not measured punctuality: punch times and working duration are
// always discarded.
func (a *AttendanceServiceImpl) MarkManual(ctx context.Context, req attendance.MarkManualRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	data := attendance.Attendance{
		EmployeeID:      req.EmployeeID,
		DisplayName:     req.DisplayName,
		Date:            req.Date,
		PunchIn:         nil,
		PunchOut:        nil,
		Status:          req.Status,
		WorkingDuration: nil,
	}

	updated, err := a.attendanceRepo.Upsert(ctx, data)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to upsert manual attendance: %w", err)
	}

	a.notifyEmployee(ctx, req.EmployeeID, notification.CreateNotificationRequest{
		Title:    "Attendance Updated",
		Message:  fmt.Sprintf("Your attendance for %s was marked as %s", req.Date, req.Status),
		Category: notification.CategoryAttendance,
		Priority: notification.PriorityMedium,
		Link:     "/attendance/me",
	})

	return attendance.ToResponse(updated), nil
}

// ReconcileDay implements attendance.Service. Re-running after completion
// is a no-op: closed sessions no longer match ListOpenSessions, and
// ClosePunchOut only touches rows still missing a punch-out.
func (a *AttendanceServiceImpl) ReconcileDay(ctx context.Context, date string) (int, error) {
	if _, ok := validator.IsValidDate(date); !ok {
		return 0, validator.ValidationErrors{
			{Field: "date", Message: "date must be in YYYY-MM-DD format"},
		}
	}

	sessions, err := a.attendanceRepo.ListOpenSessions(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list open sessions: %w", err)
	}

	closed := 0
	for _, session := range sessions {
		duration, err := clock.WorkingDuration(*session.PunchIn, clock.AutoPunchOutTime)
		if err != nil {
			slog.Error("Reconcile: bad punch-in time on record",
				"attendance_id", session.ID, "employee_id", session.EmployeeID, "error", err)
			continue
		}

		ok, err := a.attendanceRepo.ClosePunchOut(ctx, session.ID, clock.AutoPunchOutTime, attendance.StatusAutoPunchOut, duration)
		if err != nil {
			// One bad record must not abort the sweep.
			slog.Error("Reconcile: failed to close session",
				"attendance_id", session.ID, "employee_id", session.EmployeeID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		closed++

		a.notifyEmployee(ctx, session.EmployeeID, notification.CreateNotificationRequest{
			Title:    "Auto Punch-Out",
			Message:  fmt.Sprintf("You did not punch out on %s; your session was closed at %s", date, clock.AutoPunchOutTime),
			Category: notification.CategoryAttendance,
			Priority: notification.PriorityHigh,
			Link:     "/attendance/me",
		})
	}

	return closed, nil
}

// GetToday implements attendance.Service.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	today := clock.CivilDate(a.clk.Now())

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	return attendance.ToResponse(*rec), nil
}

// ListByEmployee implements attendance.Service.
func (a *AttendanceServiceImpl) ListByEmployee(ctx context.Context, employeeID string, filter attendance.ListFilter) (attendance.ListAttendanceResponse, error) {
	filter.Normalize()

	records, total, err := a.attendanceRepo.ListByEmployee(ctx, employeeID, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// ListByDate implements attendance.Service.
func (a *AttendanceServiceImpl) ListByDate(ctx context.Context, date string, filter attendance.ListFilter) (attendance.ListAttendanceResponse, error) {
	if _, ok := validator.IsValidDate(date); !ok {
		return attendance.ListAttendanceResponse{}, validator.ValidationErrors{
			{Field: "date", Message: "date must be in YYYY-MM-DD format"},
		}
	}
	filter.Normalize()

	records, total, err := a.attendanceRepo.ListByDate(ctx, date, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

func buildListResponse(records []attendance.Attendance, total int64, filter attendance.ListFilter) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: responses,
	}
}

// notifySupervisors fans an attendance event out to every admin, hr and
// manager user. Fire-and-forget: the attendance mutation has already
// committed and a delivery problem must not surface to the employee.
func (a *AttendanceServiceImpl) notifySupervisors(ctx context.Context, employeeID string, req notification.CreateNotificationRequest) {
	supervisors, err := a.userRepo.ListByRoles(ctx, user.SupervisoryRoles)
	if err != nil {
		slog.Error("Failed to resolve supervisory users", "employee_id", employeeID, "error", err)
		return
	}

	receiverIDs := make([]string, 0, len(supervisors))
	for _, s := range supervisors {
		receiverIDs = append(receiverIDs, s.ID)
	}
	if len(receiverIDs) == 0 {
		return
	}

	if err := a.notificationSvc.NotifyMany(ctx, receiverIDs, req); err != nil {
		slog.Error("Failed to notify supervisors", "employee_id", employeeID, "error", err)
	}
}

func (a *AttendanceServiceImpl) notifyEmployee(ctx context.Context, employeeID string, req notification.CreateNotificationRequest) {
	req.ReceiverID = employeeID
	if err := a.notificationSvc.NotifyOne(ctx, req); err != nil {
		slog.Error("Failed to notify employee", "employee_id", employeeID, "error", err)
	}
}
