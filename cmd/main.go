package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oauth2_server/internal/domain"
	"oauth2_server/internal/middleware"
	"oauth2_server/internal/oauth"
	"oauth2_server/internal/repository"
	httpserver "oauth2_server/internal/transport/http"
	"oauth2_server/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	logger.InitLogger()
	defer logger.Logger.Sync()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	redisAddr := os.Getenv("REDIS_ADDR")
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbName, dbPassword)
	db, err := gorm.Open(postgres.Open(dsn))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Client{}, &domain.User{}, &domain.AuthorizationCode{}, &domain.Token{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	tp, err := middleware.InitTracer()
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tp.Shutdown(ctx)
	}()

	clientRepo := repository.NewClientRepository(db)
	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewCodeRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	secretHasher := oauth.NewSecretHasher()
	passwordHasher := oauth.NewBcryptHasher(0)

	registry := oauth.NewClientRegistry(clientRepo, secretHasher)
	directory := oauth.NewUserDirectory(userRepo, passwordHasher)
	codes := oauth.NewAuthorizationCodeManager(codeRepo, oauth.DefaultCodeTTL)
	tokens := oauth.NewTokenLifecycleManager(tokenRepo, oauth.DefaultAccessTokenTTL, oauth.DefaultRefreshTokenTTL)
	authenticator := oauth.NewClientAuthenticator(clientRepo, secretHasher)

	service := oauth.NewService(registry, directory, codes, tokens, authenticator, clientRepo, os.Getenv("AUTH_DEFAULT_USER"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service.StartCleanup(ctx, time.Hour)

	cache := middleware.NewRedisCache(redisClient)
	handler := middleware.Tracing(middleware.Idempotency(cache)(httpserver.NewServer(service).Routes()))
	handler = cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
	}).Handler(handler)

	srv := &http.Server{
		Addr:         httpAddr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info("HTTP server listening", zap.String("addr", httpAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Shutdown error", zap.Error(err))
	}
}
