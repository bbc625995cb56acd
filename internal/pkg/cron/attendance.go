package cron

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/skulk0156/emsbackend/internal/domain/attendance"
	"github.com/skulk0156/emsbackend/internal/pkg/clock"
)

// AttendanceJobs owns the end-of-day reconciliation sweep. The sweep itself
// is idempotent; the date latch here only avoids pointless re-runs within
// the same civil day.
type AttendanceJobs struct {
	attendanceSvc attendance.Service
	clk           clock.Clock
	runHour       int

	mu          sync.Mutex
	lastRunDate string
}

func NewAttendanceJobs(attendanceSvc attendance.Service, clk clock.Clock, runHour int) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		clk:           clk,
		runHour:       runHour,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("attendance_reconciliation", 1*time.Hour, j.ReconcileEndOfDay)
}

// ReconcileEndOfDay closes every open punch session once the local clock
// reaches the configured hour. Each run also sweeps the previous civil day:
// a punch-in landing after that day's sweep would otherwise stay open
// forever. Safe to re-invoke after a timeout or partial failure: only
// records still missing a punch-out are touched.
func (j *AttendanceJobs) ReconcileEndOfDay(ctx context.Context) error {
	now := j.clk.Now()
	if now.Hour() < j.runHour {
		return nil
	}

	today := clock.CivilDate(now)

	j.mu.Lock()
	if j.lastRunDate == today {
		j.mu.Unlock()
		return nil
	}
	j.mu.Unlock()

	slog.Info("Cron: starting attendance reconciliation", "date", today)

	yesterday := clock.CivilDate(now.AddDate(0, 0, -1))
	for _, date := range []string{yesterday, today} {
		closed, err := j.attendanceSvc.ReconcileDay(ctx, date)
		if err != nil {
			return err
		}
		if closed > 0 {
			slog.Info("Cron: attendance reconciliation closed sessions", "date", date, "closed", closed)
		}
	}

	j.mu.Lock()
	j.lastRunDate = today
	j.mu.Unlock()

	slog.Info("Cron: attendance reconciliation finished", "date", today)
	return nil
}
