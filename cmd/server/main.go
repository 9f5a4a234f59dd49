package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"alcyxob/gym-manager/internal/api"
	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/email"
	"alcyxob/gym-manager/internal/jobs"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/repository/mongo"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/storage"
)

const appName = "Gym Manager"

// @title Gym Manager API
// @version 1.0
// @description API for managing gym clients, trainers, payments and staff accounts.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", "error", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting server", "env", cfg.Server.Env, "address", cfg.Server.Address)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		logger.Info("index creation completed")
	}()

	// --- Storage and Mail ---
	fileStorage, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("failed to initialize file storage", "driver", cfg.Storage.Driver, "error", err)
	}
	mailer := email.New(cfg.SMTP)

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	trainerRepo := mongo.NewMongoTrainerRepository(appDB)
	paymentRepo := mongo.NewMongoPaymentRepository(appDB)
	attendanceRepo := mongo.NewMongoAttendanceRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	activityRepo := mongo.NewMongoActivityRepository(appDB)
	counterRepo := mongo.NewMongoCounterRepository(appDB)
	statsRepo := mongo.NewMongoStatsRepository(appDB)
	reportRepo := mongo.NewMongoReportRepository(appDB)

	// --- Initialize Services ---
	recorder := service.NewRecorder(activityRepo, notificationRepo, userRepo)
	avatars := service.NewAvatarUploader(fileStorage, cfg.Storage.MaxAvatarBytes, cfg.Storage.AvatarSize)

	services := api.Services{
		Auth: service.NewAuthService(userRepo, statsRepo, mailer, avatars, recorder, service.AuthOptions{
			JWTSecret:      cfg.JWT.Secret,
			JWTExpiration:  cfg.JWT.Expiration,
			OTPTTL:         cfg.OTP.TTL,
			OTPLength:      cfg.OTP.Length,
			OTPMaxAttempts: cfg.OTP.MaxAttempts,
			AppName:        appName,
		}),
		Clients:       service.NewClientService(clientRepo, trainerRepo, attendanceRepo, progressRepo, statsRepo, reportRepo, avatars, recorder),
		Trainers:      service.NewTrainerService(trainerRepo, clientRepo, avatars, recorder),
		Payments:      service.NewPaymentService(paymentRepo, clientRepo, trainerRepo, counterRepo, statsRepo, reportRepo, mailer, recorder, appName),
		Notifications: service.NewNotificationService(notificationRepo),
		Dashboard:     service.NewDashboardService(clientRepo, activityRepo, statsRepo, reportRepo),
		Analytics:     service.NewAnalyticsService(reportRepo, statsRepo),
		Health: func(ctx context.Context) error {
			return dbClient.Ping(ctx, readpref.Primary())
		},
	}

	// --- Background Jobs ---
	scheduler := jobs.NewScheduler(5 * time.Minute)
	reminder := jobs.NewMembershipReminder(clientRepo, userRepo, notificationRepo, cfg.Jobs.ReminderWindowDays)
	if err := scheduler.Register("membership-reminder", cfg.Jobs.MembershipReminderSchedule, reminder.Run); err != nil {
		logger.Fatal("invalid job schedule", "job", "membership-reminder", "error", err)
	}
	scheduler.Start()

	// --- Start HTTP Server ---
	staticCfg := cfg.Server
	if cfg.Storage.Driver == storage.DriverS3 {
		staticCfg.StaticDir = ""
	}
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(staticCfg, services),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	scheduler.Stop(ctxShutdown)

	logger.Info("server exiting")
}
