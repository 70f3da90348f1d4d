package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/business"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
)

type repositories struct {
	business   business.BusinessRepository
	employee   employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	payroll    payroll.PayrollRepository
	close      func(ctx context.Context)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logLevel := parseLogLevel(cfg.App.LogLevel)
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       logLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "cmlabs-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Error("Error connecting to database", "driver", cfg.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close(context.Background())

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	payrollSvc := payrollService.NewPayrollService(
		repos.payroll,
		repos.employee,
		repos.business,
		repos.attendance,
		logger,
	)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       logLevel,
	}, JWTService, payrollHandler)

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler(logger, time.UTC)
		payrollJobs := cron.NewPayrollJobs(repos.business, payrollSvc, logger)
		if err := payrollJobs.RegisterJobs(scheduler, cfg.Cron.PayrollSpec); err != nil {
			logger.Error("Error registering cron jobs", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server running", "addr", srv.Addr, "driver", cfg.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Driver {
	case config.DriverMongoDB:
		db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, cfg.Mongo.Timeout)
		if err != nil {
			return repositories{}, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = db.Close(ctx)
			return repositories{}, fmt.Errorf("ensure indexes: %w", err)
		}
		return repositories{
			business:   mongodb.NewBusinessRepository(db),
			employee:   mongodb.NewEmployeeRepository(db),
			attendance: mongodb.NewAttendanceRepository(db),
			payroll:    mongodb.NewPayrollRepository(db),
			close:      func(ctx context.Context) { _ = db.Close(ctx) },
		}, nil
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			business:   postgresql.NewBusinessRepository(db),
			employee:   postgresql.NewEmployeeRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			payroll:    postgresql.NewPayrollRepository(db),
			close:      func(context.Context) { db.Close() },
		}, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
