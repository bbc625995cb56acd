package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skulk0156/emsbackend/internal/config"
	appHTTP "github.com/skulk0156/emsbackend/internal/handler/http"
	"github.com/skulk0156/emsbackend/internal/pkg/clock"
	"github.com/skulk0156/emsbackend/internal/pkg/cron"
	"github.com/skulk0156/emsbackend/internal/pkg/database"
	"github.com/skulk0156/emsbackend/internal/pkg/jwt"
	"github.com/skulk0156/emsbackend/internal/pkg/sse"
	"github.com/skulk0156/emsbackend/internal/repository/postgresql"
	attendanceService "github.com/skulk0156/emsbackend/internal/service/attendance"
	authService "github.com/skulk0156/emsbackend/internal/service/auth"
	notificationService "github.com/skulk0156/emsbackend/internal/service/notification"
	taskService "github.com/skulk0156/emsbackend/internal/service/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL(), int32(cfg.Database.MaxConns))
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	clk := clock.NewSystemClock(cfg.Attendance.Timezone)
	hub := sse.NewHub()

	notificationSvc := notificationService.NewNotificationService(notificationRepo, userRepo, hub, clk, notificationService.Config{})
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, userRepo, notificationSvc, clk)
	taskSvc := taskService.NewTaskService(taskRepo, userRepo, notificationSvc, clk)
	authSvc := authService.NewAuthService(userRepo, jwtService)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, clk, cfg.Attendance.ReconcileHour).RegisterJobs(scheduler)
	scheduler.Start()

	authHandler := appHTTP.NewAuthHandler(authSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	taskHandler := appHTTP.NewTaskHandler(taskSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc)

	router := appHTTP.NewRouter(jwtService, authHandler, attendanceHandler, taskHandler, notificationHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	// Stop only after in-flight handlers have finished enqueueing, so the
	// final drain sees every intent.
	notificationSvc.Stop()
}
