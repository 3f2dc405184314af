package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/greyhelm/charkeep/internal/clients/rules"
	"github.com/greyhelm/charkeep/internal/config"
	"github.com/greyhelm/charkeep/internal/handlers/api"
	"github.com/greyhelm/charkeep/internal/repositories/characters"
	progressionService "github.com/greyhelm/charkeep/internal/services/progression"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rulesClient, err := rules.New(&rules.Config{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    cfg.Rules.BaseURL,
		CacheSize:  cfg.Rules.CacheSize,
	})
	if err != nil {
		log.Fatalf("Failed to create rules client: %v", err)
	}

	repository, redisClient := buildRepository(cfg)
	if redisClient != nil {
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Printf("Failed to close Redis client: %v", closeErr)
			}
		}()
	}

	service := progressionService.NewService(&progressionService.ServiceConfig{
		RulesClient: rulesClient,
		Repository:  repository,
	})

	handler := api.NewHandler(&api.HandlerConfig{
		Service: service,
	})

	router := gin.Default()
	handler.Register(router)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("Listening on %s", cfg.HTTP.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Println("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Stopped")
}

// buildRepository connects to Redis when configured, falling back to the
// in-memory repository so the server still runs without one
func buildRepository(cfg *config.Config) (characters.Repository, *redis.Client) {
	var opts *redis.Options

	if cfg.Redis.URL != "" {
		parsed, parseErr := redis.ParseURL(cfg.Redis.URL)
		if parseErr != nil {
			log.Printf("Failed to parse Redis URL: %v", parseErr)
			log.Println("Falling back to in-memory repository")
			return characters.NewInMemoryRepository(), nil
		}
		opts = parsed
	} else if cfg.Redis.Addr != "" {
		opts = &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	} else {
		log.Println("No Redis configured, using in-memory repository")
		return characters.NewInMemoryRepository(), nil
	}

	redisClient := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		log.Printf("Failed to connect to Redis: %v", pingErr)
		log.Println("Falling back to in-memory repository")
		if closeErr := redisClient.Close(); closeErr != nil {
			log.Printf("Failed to close Redis client: %v", closeErr)
		}
		return characters.NewInMemoryRepository(), nil
	}

	log.Printf("Using Redis at %s for persistence", opts.Addr)
	return characters.NewRedisRepository(&characters.RedisRepoConfig{
		Client: redisClient,
	}), redisClient
}
