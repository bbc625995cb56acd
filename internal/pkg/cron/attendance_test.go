package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skulk0156/emsbackend/internal/domain/attendance"
)

// mutableClock lets a test move the wall clock between invocations.
type mutableClock struct {
	mu      sync.Mutex
	instant time.Time
}

func (c *mutableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instant
}

func (c *mutableClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instant = t
}

// reconcileSpy records ReconcileDay invocations; the remaining Service
// methods are never reached by the job.
type reconcileSpy struct {
	mu      sync.Mutex
	dates   []string
	failing bool
}

func (s *reconcileSpy) ReconcileDay(ctx context.Context, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errors.New("storage offline")
	}
	s.dates = append(s.dates, date)
	return 1, nil
}

func (s *reconcileSpy) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dates...)
}

func (s *reconcileSpy) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{}, nil
}

func (s *reconcileSpy) PunchOut(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{}, nil
}

func (s *reconcileSpy) MarkManual(ctx context.Context, req attendance.MarkManualRequest) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{}, nil
}

func (s *reconcileSpy) GetToday(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{}, nil
}

func (s *reconcileSpy) ListByEmployee(ctx context.Context, employeeID string, filter attendance.ListFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{}, nil
}

func (s *reconcileSpy) ListByDate(ctx context.Context, date string, filter attendance.ListFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{}, nil
}

func TestReconcileSkipsBeforeRunHour(t *testing.T) {
	spy := &reconcileSpy{}
	clk := &mutableClock{instant: time.Date(2026, 3, 5, 21, 59, 0, 0, time.UTC)}
	jobs := NewAttendanceJobs(spy, clk, 22)

	require.NoError(t, jobs.ReconcileEndOfDay(context.Background()))
	assert.Empty(t, spy.calls())
}

func TestReconcileRunsOncePerDay(t *testing.T) {
	spy := &reconcileSpy{}
	clk := &mutableClock{instant: time.Date(2026, 3, 5, 22, 0, 0, 0, time.UTC)}
	jobs := NewAttendanceJobs(spy, clk, 22)

	require.NoError(t, jobs.ReconcileEndOfDay(context.Background()))
	require.NoError(t, jobs.ReconcileEndOfDay(context.Background()))
	assert.Equal(t, []string{"2026-03-04", "2026-03-05"}, spy.calls())

	// Next civil day the latch resets.
	clk.set(time.Date(2026, 3, 6, 22, 30, 0, 0, time.UTC))
	require.NoError(t, jobs.ReconcileEndOfDay(context.Background()))
	assert.Equal(t, []string{"2026-03-04", "2026-03-05", "2026-03-05", "2026-03-06"}, spy.calls())
}

// A punch-in landing after the day's sweep already ran stays open until
// the next day's sweep, which must therefore cover the previous civil day.
func TestReconcileSweepsPreviousDay(t *testing.T) {
	spy := &reconcileSpy{}
	clk := &mutableClock{instant: time.Date(2026, 3, 5, 22, 0, 0, 0, time.UTC)}
	jobs := NewAttendanceJobs(spy, clk, 22)

	require.NoError(t, jobs.ReconcileEndOfDay(context.Background()))

	// A session opened at 23:00 on the 5th is only reachable through the
	// sweep on the 6th.
	clk.set(time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC))
	require.NoError(t, jobs.ReconcileEndOfDay(context.Background()))

	assert.Contains(t, spy.calls(), "2026-03-05")
	assert.Equal(t, "2026-03-05", spy.calls()[2])
}

func TestReconcileRetriesAfterFailure(t *testing.T) {
	spy := &reconcileSpy{failing: true}
	clk := &mutableClock{instant: time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)}
	jobs := NewAttendanceJobs(spy, clk, 22)

	err := jobs.ReconcileEndOfDay(context.Background())
	assert.Error(t, err)

	// The latch must not engage on failure.
	spy.failing = false
	require.NoError(t, jobs.ReconcileEndOfDay(context.Background()))
	assert.Equal(t, []string{"2026-03-04", "2026-03-05"}, spy.calls())
}

func TestSchedulerRunOnceDrivesRegisteredJob(t *testing.T) {
	spy := &reconcileSpy{}
	clk := &mutableClock{instant: time.Date(2026, 3, 5, 22, 0, 0, 0, time.UTC)}
	jobs := NewAttendanceJobs(spy, clk, 22)

	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler)
	scheduler.RunOnce(context.Background())

	assert.Equal(t, []string{"2026-03-04", "2026-03-05"}, spy.calls())
}
