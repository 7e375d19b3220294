package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mentor-connect/internal/config"
	"mentor-connect/internal/dashboard"
	apphttp "mentor-connect/internal/http"
	"mentor-connect/internal/mailer"
	"mentor-connect/internal/repository"
	redisrepo "mentor-connect/internal/repository/redis"
	"mentor-connect/internal/repository/sqlite"
	"mentor-connect/internal/service"
	"mentor-connect/internal/session"
	"mentor-connect/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	accountRepo := sqlite.NewAccountRepository(db)
	contactRepo := sqlite.NewContactRepository(db)
	sessionRepo, err := buildSessionStore(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("setup session store: %v", err)
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	var sender mailer.Sender = mailer.LogSender{Logger: logger}
	if cfg.Mail.SendGridAPIKey != "" {
		sender = mailer.NewSendGridSender(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
		logger.Infof("sending email through sendgrid as %s", cfg.Mail.FromAddress)
	} else {
		logger.Warn("no email transport configured, notifications are only logged")
	}

	dispatcher := mailer.NewDispatcher(mailer.Config{
		MaxConcurrent: cfg.Mail.Workers,
		SendTimeout:   30 * time.Second,
		Logger:        logger,
	}, sender, mailer.NewRenderer())
	if err := dispatcher.Start(ctx); err != nil {
		logger.Fatalf("start notification dispatcher: %v", err)
	}

	accountService := service.NewAccountService(accountRepo, storageSvc, service.AccountConfig{
		MaxAvatarBytes: cfg.Storage.MaxAvatarBytes,
		Logger:         logger,
	})
	passwordService, err := service.NewPasswordService(accountRepo, dispatcher, service.PasswordConfig{
		Secret:               []byte(cfg.Auth.ResetSecret),
		TokenTTL:             cfg.Auth.ResetTokenTTL,
		BaseURL:              cfg.Mail.BaseURL,
		DiscloseUnknownEmail: cfg.Auth.DiscloseReset,
		Logger:               logger,
	})
	if err != nil {
		logger.Fatalf("setup password service: %v", err)
	}
	contactService := service.NewContactService(contactRepo, dispatcher, cfg.Mail.ContactInbox, logger)

	sessions := session.NewManager(sessionRepo, session.Options{
		TTL:    cfg.Session.TTL,
		Secure: cfg.Server.CookieSecure,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatalf("set trusted proxies: %v", err)
	}
	handler := apphttp.NewHandler(
		accountService,
		passwordService,
		contactService,
		dashboard.NewSampleSource(),
		sessions,
		logger,
		apphttp.Options{
			MaxAvatarBytes: cfg.Storage.MaxAvatarBytes,
			CookieSecure:   cfg.Server.CookieSecure,
			RateLimit:      cfg.Auth.RateLimit,
			RateBurst:      cfg.Auth.RateBurst,
		},
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	dispatcher.Shutdown()

	logger.Info("bye")
}

type sessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

func buildSessionStore(ctx context.Context, cfg config.Config, db *sql.DB, logger *logrus.Logger) (repository.SessionRepository, error) {
	if cfg.Session.Store == "redis" {
		client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		logger.Infof("storing sessions in redis at %s", cfg.Redis.Addr)
		return redisrepo.NewSessionRepository(client), nil
	}

	repo := sqlite.NewSessionRepository(db)
	if n, err := repo.(sessionPurger).PurgeExpired(ctx, time.Now()); err != nil {
		logger.Warnf("purge expired sessions: %v", err)
	} else if n > 0 {
		logger.Infof("purged %d expired sessions", n)
	}
	return repo, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Infof("no storage bucket configured, keeping avatars in %s", cfg.Storage.LocalDir)
		return storage.NewDiskService(cfg.Storage.LocalDir, "/media"), nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.Storage.AccessKey != "" && cfg.Storage.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix), nil
}
