package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"school-auth/internal/config"
	"school-auth/internal/db"
	"school-auth/internal/directory"
	"school-auth/internal/email"
	apihttp "school-auth/internal/http"
	"school-auth/internal/repository"
	"school-auth/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	accountRepo := repository.NewPgAccountRepository(pool)
	roleRepo := repository.NewPgRoleRepository(pool)
	emailLogRepo := repository.NewPgEmailLogRepository(pool)

	resolver, studentDB, err := directory.Build(cfg.Directory, logger)
	if err != nil {
		logger.Fatal("directory init", zap.Error(err))
	}
	if studentDB != nil {
		defer studentDB.Close()
	}

	tokenIssuer := service.NewTokenIssuer(cfg.VerificationTokenTTL)
	emailSender := newEmailSender(cfg.Mail, logger)
	notifier := service.NewNotificationService(logger, emailSender, emailLogRepo, service.NotificationConfig{
		FromEmail:    fromAddress(cfg.Mail),
		SchoolName:   cfg.Mail.SchoolName,
		SchoolDomain: cfg.Mail.SchoolDomain,
		FrontendURL:  cfg.Mail.FrontendURL,
		LinkTTL:      tokenIssuer.TTL(),
	})

	var (
		resendLimiter service.RateLimiter
		tokenStore    service.RefreshTokenStore
		redisClient   *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			resendLimiter = service.NewRedisResendLimiter(logger, redisClient, service.ResendVerificationKeyPrefix, cfg.ResendVerificationWindow, cfg.ResendVerificationLimit)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	if resendLimiter == nil {
		resendLimiter = service.NewRateLimiter(cfg.ResendVerificationWindow, cfg.ResendVerificationLimit)
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)

	hasher := service.NewPasswordHasher(0)
	registrationSvc := service.NewRegistrationService(
		logger,
		accountRepo,
		roleRepo,
		resolver,
		hasher,
		tokenIssuer,
		notifier,
		resendLimiter,
	)
	authSvc := service.NewAuthService(logger, accountRepo, hasher)

	authHandler := apihttp.NewAuthHandler(logger, registrationSvc, authSvc, jwtSvc)
	adminHandler := apihttp.NewAdminHandler(logger, accountRepo, roleRepo, emailLogRepo)
	if cfg.AdminAPIToken == "" {
		logger.Warn("admin api disabled: ADMIN_API_TOKEN not set")
	}
	router := apihttp.NewRouter(logger, authHandler, adminHandler, jwtSvc, cfg.AdminAPIToken)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newEmailSender prioriza Resend, luego SMTP; sin ninguno los envios fallan y quedan auditados.
func newEmailSender(cfg config.MailConfig, logger *zap.Logger) email.Sender {
	if cfg.ResendAPIKey != "" {
		sender, err := email.NewResendSender(cfg.ResendBaseURL, cfg.ResendAPIKey, &http.Client{Timeout: 10 * time.Second})
		if err == nil {
			return sender
		}
		logger.Warn("resend sender init failed", zap.Error(err))
	}
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, fromAddress(cfg), cfg.SMTPUseTLS)
		if err == nil {
			return sender
		}
		logger.Warn("smtp sender init failed", zap.Error(err))
	}
	logger.Warn("email sender not configured")
	return email.NewDisabledSender("email sender not configured")
}

func fromAddress(cfg config.MailConfig) string {
	if cfg.ResendFromEmail != "" {
		return cfg.ResendFromEmail
	}
	if cfg.SMTPFrom != "" {
		return cfg.SMTPFrom
	}
	return "noreply@" + cfg.SchoolDomain
}
