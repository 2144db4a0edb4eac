package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/config"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/auth"
	appHTTP "github.com/shikshak-watch/shikshak-watch-backend/internal/handler/http"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/clock"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/database"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/jwt"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/sms"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/storage"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/repository/postgresql"
	attendanceService "github.com/shikshak-watch/shikshak-watch-backend/internal/service/attendance"
	serviceAuth "github.com/shikshak-watch/shikshak-watch-backend/internal/service/auth"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/service/file"
	reportService "github.com/shikshak-watch/shikshak-watch-backend/internal/service/report"
	schoolService "github.com/shikshak-watch/shikshak-watch-backend/internal/service/school"
	"github.com/shikshak-watch/shikshak-watch-backend/migrations"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.App.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "shikshak-watch"),
		slog.String("env", cfg.App.Env),
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, migrations.FS); err != nil {
		log.Fatal("Error applying migrations: ", err)
	}

	userRepo := postgresql.NewUserRepository(db)
	schoolRepo := postgresql.NewSchoolRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		log.Fatal("Failed to initialize JWT service: ", err)
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}
	fileService := file.NewFileService(fileStorage)

	var smsSender sms.Sender
	if cfg.Twilio.Enabled() {
		smsSender = sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber)
	} else {
		slog.Warn("Twilio is not configured, SMS alerts will only be logged")
		smsSender = sms.NewLogSender(logger)
	}

	systemClock := clock.System()

	authSvc := serviceAuth.NewAuthService(transactor, userRepo, schoolRepo, JWTService)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, userRepo, schoolRepo, fileService, systemClock, loc)
	schoolSvc := schoolService.NewSchoolService(schoolRepo, userRepo, smsSender, systemClock, loc)
	reportSvc := reportService.NewReportService(reportRepo, systemClock, loc)

	if cfg.Admin.Email != "" {
		if err := authSvc.EnsureAdmin(ctx, auth.BootstrapAdminRequest{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		}); err != nil {
			log.Fatal("Failed to create bootstrap admin: ", err)
		}
	}

	router := appHTTP.NewRouter(
		logger,
		cfg.App.AllowedOrigins,
		JWTService,
		appHTTP.NewAuthHandler(authSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewSchoolHandler(schoolSvc),
		appHTTP.NewReportHandler(reportSvc),
		cfg.Storage.BasePath,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Server running", "addr", server.Addr, "timezone", loc.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
	}
}
