package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skulk0156/emsbackend/internal/domain/attendance"
	"github.com/skulk0156/emsbackend/internal/pkg/database"
)

const uniqueViolation = "23505"

type attendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, display_name, date, punch_in, punch_out, status, working_duration, created_at, updated_at`

// Create inserts today's record. The unique (employee_id, date) index turns
// a concurrent duplicate punch-in into ErrAlreadyPunchedIn.
func (r *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	now := time.Now()
	att.CreatedAt = now
	att.UpdatedAt = now

	query := `
		INSERT INTO attendances (id, employee_id, display_name, date, punch_in, punch_out, status, working_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		att.ID,
		att.EmployeeID,
		att.DisplayName,
		att.Date,
		att.PunchIn,
		att.PunchOut,
		string(att.Status),
		att.WorkingDuration,
		att.CreatedAt,
		att.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.Attendance{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate returns nil when no record exists.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM attendances
		WHERE employee_id = $1 AND date = $2
	`, attendanceColumns)

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return &att, nil
}

// ClosePunchOut finalizes an open session. The punch_out IS NULL guard makes
// this a compare-and-set: a session can only be closed once.
func (r *attendanceRepository) ClosePunchOut(ctx context.Context, id string, punchOut string, status attendance.Status, workingDuration string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET punch_out = $1, status = $2, working_duration = $3, updated_at = $4
		WHERE id = $5 AND punch_in IS NOT NULL AND punch_out IS NULL
	`

	tag, err := q.Exec(ctx, query, punchOut, string(status), workingDuration, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to close punch session: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Upsert writes a manual mark, replacing any measured punches for the day.
func (r *attendanceRepository) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	now := time.Now()

	query := fmt.Sprintf(`
		INSERT INTO attendances (id, employee_id, display_name, date, punch_in, punch_out, status, working_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, NULL, $5, NULL, $6, $6)
		ON CONFLICT (employee_id, date)
		DO UPDATE SET display_name = $3, punch_in = NULL, punch_out = NULL, status = $5, working_duration = NULL, updated_at = $6
		RETURNING %s
	`, attendanceColumns)

	stored, err := scanAttendance(q.QueryRow(ctx, query,
		att.ID, att.EmployeeID, att.DisplayName, att.Date, string(att.Status), now))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}

	return stored, nil
}

// ListOpenSessions returns records on the date with a punch-in but no
// punch-out.
func (r *attendanceRepository) ListOpenSessions(ctx context.Context, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s FROM attendances
		WHERE date = $1 AND punch_in IS NOT NULL AND punch_out IS NULL
		ORDER BY employee_id
	`, attendanceColumns)

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query open sessions: %w", err)
	}
	defer rows.Close()

	return collectAttendances(rows)
}

func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]attendance.Attendance, int64, error) {
	return r.list(ctx, "employee_id = $1", employeeID, limit, offset)
}

func (r *attendanceRepository) ListByDate(ctx context.Context, date string, limit, offset int) ([]attendance.Attendance, int64, error) {
	return r.list(ctx, "date = $1", date, limit, offset)
}

func (r *attendanceRepository) list(ctx context.Context, where string, arg interface{}, limit, offset int) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendances WHERE %s", where)
	if err := q.QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM attendances
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, attendanceColumns, where)

	rows, err := q.Query(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	records, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var status string

	err := row.Scan(
		&att.ID,
		&att.EmployeeID,
		&att.DisplayName,
		&att.Date,
		&att.PunchIn,
		&att.PunchOut,
		&status,
		&att.WorkingDuration,
		&att.CreatedAt,
		&att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.Status = attendance.Status(status)
	return att, nil
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	return records, rows.Err()
}
