package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"therapy-match/internal/config"
	"therapy-match/internal/db"
	apihttp "therapy-match/internal/http"
	"therapy-match/internal/questionnaire"
	"therapy-match/internal/repository"
	"therapy-match/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	catalog, err := questionnaire.Load()
	if err != nil {
		logger.Fatal("questionnaire catalog", zap.Error(err))
	}

	testRepo := repository.NewPgPersonalityTestRepository(pool)
	scoreRepo := repository.NewPgPersonalityScoreRepository(pool)
	subjectRepo := repository.NewPgSubjectRepository(pool)
	anonRepo := repository.NewPgAnonymousPatientRepository(pool)

	calc := service.NewCalculator(service.ScoringOptions{
		RejectZeroScores:   cfg.ScoringRejectZero,
		RejectExtraAnswers: cfg.ScoringRejectExtraAnswers,
	})
	testSvc := service.NewPersonalityTestService(logger, testRepo, scoreRepo, subjectRepo, calc)

	window := time.Duration(cfg.SessionRateLimitWindowSeconds) * time.Second
	limiter := service.NewMemorySessionRateLimiter(window, cfg.SessionRateLimitMax)
	revoked := service.NewMemorySessionRevocationStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory session stores", zap.Error(err))
		} else {
			limiter = service.NewRedisSessionRateLimiter(redisClient, window, cfg.SessionRateLimitMax)
			revoked = service.NewRedisSessionRevocationStore(redisClient)
		}
		cancel()
	}

	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured, anonymous sessions are disabled")
	}
	tokenSvc := service.NewSessionTokenService(cfg.JWTSecret, time.Duration(cfg.AnonSessionTTLMinutes)*time.Minute)
	sessionSvc := service.NewAnonymousSessionService(logger, anonRepo, tokenSvc, limiter, revoked)

	router := apihttp.NewRouter(
		logger,
		apihttp.NewHealthHandler(logger, pool),
		apihttp.NewQuestionnaireHandler(logger, catalog),
		apihttp.NewSessionHandler(logger, sessionSvc, cfg.CookieSecure),
		apihttp.NewPersonalityTestHandler(logger, testSvc),
		apihttp.NewScoreHandler(logger, testSvc),
		sessionSvc,
		cfg.TrustedProxies,
	)

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
