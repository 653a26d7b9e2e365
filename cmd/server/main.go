package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"internship_backend/internal/app/di"
	"internship_backend/internal/app/router"
	authadapters "internship_backend/internal/feature/auth/adapters"
	authhandler "internship_backend/internal/feature/auth/transport/handler"
	authusecase "internship_backend/internal/feature/auth/usecase"
	collegeadapters "internship_backend/internal/feature/college/adapters"
	collegehandler "internship_backend/internal/feature/college/transport/handler"
	collegeusecase "internship_backend/internal/feature/college/usecase"
	companyadapters "internship_backend/internal/feature/company/adapters"
	companyhandler "internship_backend/internal/feature/company/transport/handler"
	companyusecase "internship_backend/internal/feature/company/usecase"
	internshipadapters "internship_backend/internal/feature/internship/adapters"
	internshiphandler "internship_backend/internal/feature/internship/transport/handler"
	internshipusecase "internship_backend/internal/feature/internship/usecase"
	studentadapters "internship_backend/internal/feature/student/adapters"
	studenthandler "internship_backend/internal/feature/student/transport/handler"
	studentusecase "internship_backend/internal/feature/student/usecase"
	"internship_backend/internal/platform/audit"
	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/db"
	platformhandler "internship_backend/internal/platform/http/handler"
	jwtmw "internship_backend/internal/platform/jwt"
	"internship_backend/internal/platform/logging"
	"internship_backend/internal/platform/metrics"
	infraredis "internship_backend/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(log)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := di.Migrate(ctx, gdb); err != nil {
			return err
		}
		slog.Info("database migrated")
	}

	// Redis。無くても起動できる
	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable; running without it", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	files, err := di.NewFileStore(ctx, cfg.Upload)
	if err != nil {
		return err
	}

	// Repository
	users := authadapters.NewUserGorm(gdb)
	sessions := di.NewSessionRepository(rdb, gdb)
	identities := di.NewIdentityResolver(rdb, gdb, cfg.Auth.IdentityCacheTTL)
	companies := companyadapters.NewCompanyGorm(gdb)
	colleges := collegeadapters.NewCollegeGorm(gdb)
	students := studentadapters.NewStudentGorm(gdb)

	// Usecase
	authUC := authusecase.NewAuthUsecase(
		users,
		sessions,
		jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL),
		authadapters.NewVerificationMailer(di.NewMailSender(cfg.SMTP, log), cfg.Server.FrontendURL, cfg.Auth.VerificationTTL),
		authusecase.Options{
			MaxFailedLogins:    cfg.Auth.MaxFailedLogins,
			LockoutDuration:    cfg.Auth.LockoutDuration,
			VerificationTTL:    cfg.Auth.VerificationTTL,
			RefreshTTL:         cfg.JWT.RefreshTokenTTL,
			MaxSessionsPerUser: cfg.Auth.MaxSessionsPerUser,
		},
		authusecase.WithAudit(audit.NewGormRecorder(gdb, log)),
		authusecase.WithObserver(m),
		authusecase.WithIdentityInvalidator(identities),
	)
	companyUC := companyusecase.NewCompanyUsecase(companies, files)
	collegeUC := collegeusecase.NewCollegeUsecase(colleges, collegeadapters.NewLinkedStudentGorm(gdb), files)
	studentUC := studentusecase.NewStudentUsecase(students, colleges, files)
	internshipUC := internshipusecase.NewInternshipUsecase(
		internshipadapters.NewInternshipGorm(gdb),
		internshipadapters.NewApplicationGorm(gdb),
		internshipadapters.NewProfileGorm(gdb),
	)

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Auth:       authhandler.NewAuthHandler(authUC),
		Company:    companyhandler.NewCompanyHandler(companyUC),
		College:    collegehandler.NewCollegeHandler(collegeUC),
		Student:    studenthandler.NewStudentHandler(studentUC),
		Internship: internshiphandler.NewInternshipHandler(internshipUC),
	}, router.Deps{
		Tokens:         jwtmw.NewParser(cfg.JWT.Secret),
		Identities:     identities,
		Files:          files,
		MaxFileSize:    cfg.Upload.MaxFileSize,
		LoginLimiter:   di.NewLoginLimiter(rdb, cfg.RateLimit),
		Metrics:        m,
		Gatherer:       reg,
		Log:            log,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
		HealthChecks:   healthChecks(gdb, rdb),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func healthChecks(gdb *gorm.DB, rdb *redisv9.Client) []platformhandler.Check {
	checks := []platformhandler.Check{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, platformhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
