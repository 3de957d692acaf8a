package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "dashboard/api/swagger" // swagger docs
	"dashboard/internal/auth"
	"dashboard/internal/authz"
	"dashboard/internal/blobstore"
	"dashboard/internal/clock"
	"dashboard/internal/config"
	"dashboard/internal/database"
	"dashboard/internal/handler"
	"dashboard/internal/logger"
	"dashboard/internal/notify"
	"dashboard/internal/repository"
	"dashboard/internal/service"
	"dashboard/internal/session"
	"dashboard/internal/websocket"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// @title           Dashboard API
// @version         1.0
// @description     Internal dashboard: purchase requests, notifications, documents and achievements.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	envFile := pflag.String("env-file", "configs/.env", "dotenv file to load before reading the environment")
	seedFile := pflag.String("seed-file", "", "YAML file with bootstrap users (overrides SEED_FILE)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}
	if *seedFile != "" {
		cfg.SeedFile = *seedFile
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	dsn := cfg.SQLitePath
	if cfg.DBDriver == "postgres" {
		dsn = cfg.PostgresDSN()
	}
	db, err := database.NewConnection(cfg.DBDriver, dsn)
	if err != nil {
		return err
	}
	log.WithField("driver", cfg.DBDriver).Info("database connected")

	sessions, err := session.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer sessions.Close()

	blobs, closeBlobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBlobs()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	clk := clock.Real()
	gate := authz.NewGate(cfg.ApproverUsername)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTL, clk)
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		Timeout:  cfg.SMTPTimeout,
	})

	// Set up dependencies (Repository -> Service -> Handler)
	tm := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, sessions, tokens, cfg.RefreshTTL, gate, log)
	notificationService := service.NewNotificationService(repository.NewNotificationRepository(db), userRepo, wsHub, clk, log)
	purchaseService := service.NewPurchaseService(service.PurchaseServiceDeps{
		TxManager:     tm,
		Repo:          repository.NewPurchaseRequestRepository(db),
		AuditRepo:     auditRepo,
		Notifications: notificationService,
		Blobs:         blobs,
		Gate:          gate,
		Pusher:        wsHub,
		Mailer:        mailer,
		ApproverEmail: cfg.ApproverEmail,
		Clock:         clk,
		Log:           log,
	})

	seed := config.DefaultSeed()
	if cfg.SeedFile != "" {
		if seed, err = config.LoadSeed(cfg.SeedFile); err != nil {
			return err
		}
	}
	if err := userService.Seed(ctx, seed); err != nil {
		return err
	}
	if !mailer.IsConfigured() {
		log.Info("SMTP not configured, purchase request emails disabled")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		Tokens:      tokens,
		Hub:         wsHub,
		AccessTTL:   cfg.AccessTTL,
		RefreshTTL:  cfg.RefreshTTL,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return sessions.Ping(ctx)
		},
		Users:         userService,
		Purchases:     purchaseService,
		Notifications: notificationService,
		Documents:     service.NewDocumentService(tm, repository.NewDocumentRepository(db), auditRepo, blobs, gate, clk, log),
		Achievements:  service.NewAchievementService(tm, repository.NewAchievementRepository(db), auditRepo, clk, log),
		Audit:         service.NewAuditService(auditRepo, gate),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
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

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openBlobStore(ctx context.Context, cfg config.Config) (*blobstore.Store, func(), error) {
	if cfg.BlobBackend == "minio" {
		backend, err := blobstore.NewMinioBackend(ctx, blobstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		return blobstore.New(backend), func() {}, nil
	}

	backend, err := blobstore.NewFSBackend(cfg.BlobDir)
	if err != nil {
		return nil, nil, err
	}
	return blobstore.New(backend), backend.Close, nil
}
