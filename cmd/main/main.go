package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goopenai "github.com/sashabaranov/go-openai"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/auth"
	"github.com/krishivaani/krishivaani/src/cache"
	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/embedding"
	"github.com/krishivaani/krishivaani/src/generation"
	"github.com/krishivaani/krishivaani/src/handlers"
	"github.com/krishivaani/krishivaani/src/lang"
	"github.com/krishivaani/krishivaani/src/middleware"
	"github.com/krishivaani/krishivaani/src/pipeline"
	"github.com/krishivaani/krishivaani/src/registry"
	"github.com/krishivaani/krishivaani/src/retrieval"
	"github.com/krishivaani/krishivaani/src/store"
	"github.com/krishivaani/krishivaani/src/translation"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := lang.ValidatePairs(); err != nil {
		logger.Fatal("translation pair table incomplete", zap.Error(err))
	}

	db, err := store.Open(&cfg.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := store.CheckEmbeddingDimension(db, cfg.Embedding.Dimension); err != nil {
		logger.Fatal("knowledge base incompatible with embedding model", zap.Error(err))
	}
	logger.Info("postgres connected")

	responseCache, err := cache.NewRedisCache(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to initialize redis", zap.Error(err))
	}
	defer responseCache.Close()
	logger.Info("redis connected", zap.Duration("cache_ttl", cfg.Redis.CacheTTL))

	reg := registry.New(logger)
	registerLoaders(reg, cfg)

	languageRouter := lang.NewRouter(logger)
	embedder := embedding.NewService(reg, &cfg.Embedding, logger)
	retriever := retrieval.NewPgvectorRetriever(db, logger)
	generator := generation.NewEngine(reg, &cfg.Generation, logger)
	translator := translation.NewService(reg, logger)

	orchestrator, err := pipeline.New(
		languageRouter,
		responseCache,
		embedder,
		retriever,
		generator,
		translator,
		pipeline.Options{
			Workers:          cfg.Pipeline.Workers,
			TopK:             cfg.Retriever.TopK,
			MaxContextChars:  cfg.Generation.MaxContextChars,
			CacheTTL:         cfg.Redis.CacheTTL,
			CacheTimeout:     cfg.Pipeline.CacheTimeout,
			TranslateTimeout: cfg.Translation.Timeout,
			EmbedTimeout:     cfg.Embedding.Timeout,
			RetrieveTimeout:  cfg.Retriever.Timeout,
			GenerateTimeout:  cfg.Generation.Timeout,
		},
		logger,
	)
	if err != nil {
		logger.Fatal("failed to build pipeline", zap.Error(err))
	}
	defer orchestrator.Close()
	logger.Info("query pipeline ready",
		zap.Int("workers", cfg.Pipeline.Workers),
		zap.Int("top_k", cfg.Retriever.TopK))

	userStore := store.NewUserStore(db)
	communityStore := store.NewCommunityStore(db)
	chatStore := store.NewChatStore(db)

	queryHandler := handlers.NewQueryHandler(orchestrator, logger)
	chatHandler := handlers.NewChatHandler(orchestrator, chatStore, logger)
	communityHandler := handlers.NewCommunityHandler(communityStore, logger)
	authHandler := auth.NewHandler(userStore, &cfg.Auth, logger)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.Secret)
	postLimiter := middleware.NewRateLimiter(5, time.Minute)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", queryHandler.HealthCheck)
		v1.POST("/register", authHandler.Register)
		v1.POST("/token", authHandler.Token)

		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.GET("/me", authHandler.Me)

			protected.POST("/query", queryHandler.HandleQuery)

			protected.POST("/chat", chatHandler.HandleChat)
			protected.GET("/chat/sessions", chatHandler.ListSessions)
			protected.GET("/chat/sessions/:session_id", chatHandler.GetSession)

			community := protected.Group("/community")
			{
				community.POST("/questions", postLimiter.Limit(), communityHandler.PostQuestion)
				community.GET("/questions", communityHandler.ListQuestions)
				community.POST("/questions/:question_id/answers", postLimiter.Limit(), communityHandler.PostAnswer)
				community.GET("/questions/:question_id/answers", communityHandler.ListAnswers)
				community.POST("/vote", communityHandler.Vote)
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	logger.Info("krishivaani serving", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// registerLoaders installs the lazy loaders for every model the pipeline
// can need: embedding, generation, and one translator per supported
// directional pair. Nothing is fetched until a request first needs it.
func registerLoaders(reg *registry.Registry, cfg *config.Config) {
	reg.Register(registry.KeyEmbed, func(ctx context.Context) (any, error) {
		clientCfg := goopenai.DefaultConfig(cfg.Embedding.APIKey)
		if cfg.Embedding.Endpoint != "" {
			clientCfg.BaseURL = cfg.Embedding.Endpoint
		}
		return goopenai.NewClientWithConfig(clientCfg), nil
	})

	reg.Register(registry.KeyGen, func(ctx context.Context) (any, error) {
		opts := []lcopenai.Option{
			lcopenai.WithToken(cfg.Generation.APIKey),
			lcopenai.WithModel(cfg.Generation.Model),
		}
		if cfg.Generation.Endpoint != "" {
			opts = append(opts, lcopenai.WithBaseURL(cfg.Generation.Endpoint))
		}
		return lcopenai.New(opts...)
	})

	for _, pair := range lang.SupportedPairs() {
		pair := pair
		modelName, err := lang.ModelForPair(pair)
		if err != nil {
			continue // unreachable after ValidatePairs
		}
		reg.Register(pair.Key(), func(ctx context.Context) (any, error) {
			opts := []lcopenai.Option{
				lcopenai.WithToken(cfg.Translation.APIKey),
				lcopenai.WithModel(modelName),
			}
			if cfg.Translation.Endpoint != "" {
				opts = append(opts, lcopenai.WithBaseURL(cfg.Translation.Endpoint))
			}
			return lcopenai.New(opts...)
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	var allowedOrigins []string

	if allowedOriginsEnv != "" {
		allowedOrigins = strings.Split(allowedOriginsEnv, ",")
		for i := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
		}
	} else {
		allowedOrigins = []string{
			"http://localhost:8000",
			"http://localhost:3000",
			"http://127.0.0.1:8000",
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Requests without an Origin header (curl, health checks) pass.
		if origin == "" {
			c.Next()
			return
		}

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		if !allowed {
			c.AbortWithStatus(403)
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
