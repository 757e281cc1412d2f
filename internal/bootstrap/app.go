package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/INIRU/Tinklepaw-sub002/internal/guard"
	"github.com/INIRU/Tinklepaw-sub002/internal/handler/gateway"
	httpHandler "github.com/INIRU/Tinklepaw-sub002/internal/handler/http"
	gormpersistence "github.com/INIRU/Tinklepaw-sub002/internal/infra/persistence/gorm"
	"github.com/INIRU/Tinklepaw-sub002/internal/infra/setup"
	"github.com/INIRU/Tinklepaw-sub002/internal/middleware"
	"github.com/INIRU/Tinklepaw-sub002/internal/platform/rest"
	"github.com/INIRU/Tinklepaw-sub002/internal/service"
	"github.com/INIRU/Tinklepaw-sub002/internal/tasks"
	"github.com/INIRU/Tinklepaw-sub002/internal/worker"
)

// Config holds everything read from the environment at startup. Per-guild
// runtime settings (trigger channel, category) live in the database instead
// and are re-read per event.
type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GuildID        string
	BotToken       string
	PlatformAPIURL string
	GatewayURL     string

	JWTSecret         string
	JWTExpiryHours    int
	AdminPasswordHash string

	ServerPort      string
	LogLevel        string
	AppEnv          string
	RateLimitMax    int
	RateLimitWindow time.Duration

	SweepInterval    string
	SweepIdleSeconds int
}

// LoadConfig reads configuration from the environment, loading .env first
// when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // optional; plain env vars work too

	cfg := &Config{
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBName:            os.Getenv("DB_NAME"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		GuildID:           os.Getenv("GUILD_ID"),
		BotToken:          os.Getenv("BOT_TOKEN"),
		PlatformAPIURL:    os.Getenv("PLATFORM_API_URL"),
		GatewayURL:        os.Getenv("GATEWAY_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		AppEnv:            os.Getenv("APP_ENV"),
		JWTExpiryHours:    24,
		RateLimitMax:      100,
		RateLimitWindow:   1 * time.Second,
		SweepInterval:     "@every 1m",
		SweepIdleSeconds:  worker.DefaultSweepIdleSeconds,
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	if cfg.DBHost == "" {
		cfg.DBHost = "127.0.0.1"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "3306"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	switch {
	case cfg.RedisAddr == "":
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	case cfg.GuildID == "":
		return nil, fmt.Errorf("environment variable GUILD_ID must be set")
	case cfg.BotToken == "":
		return nil, fmt.Errorf("environment variable BOT_TOKEN must be set")
	case cfg.PlatformAPIURL == "":
		return nil, fmt.Errorf("environment variable PLATFORM_API_URL must be set")
	case cfg.GatewayURL == "":
		return nil, fmt.Errorf("environment variable GATEWAY_URL must be set")
	case cfg.JWTSecret == "":
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	case cfg.AdminPasswordHash == "":
		return nil, fmt.Errorf("environment variable ADMIN_PASSWORD_HASH must be set")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App bundles every component for wiring, startup and shutdown.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	WorkerSrv   *worker.WorkerServer
	Consumer    *gateway.Consumer
	Dispatcher  *gateway.Dispatcher
	HttpServer  *http.Server

	redisClientOpt asynq.RedisClientOpt
	scheduler      *asynq.Scheduler
	consumerCancel context.CancelFunc
}

// NewApp initializes every component in dependency order.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(logLevel)
	log.Info("Configuration loaded successfully")

	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Infrastructure initialized")

	log.Info("Initializing repositories...")
	templateRepo := gormpersistence.NewGormTemplateRepository(db)
	roomRepo := gormpersistence.NewGormAutoRoomRepository(db)
	configRepo := gormpersistence.NewGormConfigRepository(db)
	channelAPI := rest.NewClient(cfg.PlatformAPIURL, cfg.BotToken, cfg.GuildID)
	log.Info("Repositories initialized")

	log.Info("Initializing services...")
	creationGuard := guard.New()
	voiceState := service.NewVoiceStateService(cfg.GuildID, templateRepo, roomRepo, configRepo, channelAPI, creationGuard)
	roomControl := service.NewRoomControlService(cfg.GuildID, templateRepo, roomRepo, configRepo, channelAPI, creationGuard)
	authService, err := service.NewAdminAuthService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AdminAuthService: %w", err)
	}
	log.Info("Services initialized")

	log.Info("Initializing gateway consumer...")
	dispatcher := gateway.NewDispatcher(voiceState.HandleVoiceState)
	consumer := gateway.NewConsumer(cfg.GatewayURL, cfg.BotToken, dispatcher)
	log.Info("Gateway consumer initialized")

	log.Info("Initializing worker server...")
	sweeper := worker.NewAutoRoomSweepHandler(roomRepo, voiceState)
	workerSrv := worker.NewWorkerServer(redisClientOpt, sweeper, log)
	log.Info("Worker server initialized")

	log.Info("Setting up Gin router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))

	authHandler := httpHandler.NewAuthHandler(authService)
	panelHandler := httpHandler.NewPanelHandler(roomControl)

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	roomRoutes := api.Group("/rooms").Use(middleware.Auth(cfg.JWTSecret))
	{
		roomRoutes.POST("", panelHandler.CreateRoom)
		roomRoutes.PATCH("/:channelId", panelHandler.UpdateRoom)
		roomRoutes.POST("/:channelId/lock", panelHandler.SetLock)
		roomRoutes.POST("/:channelId/invite", panelHandler.Invite)
		roomRoutes.DELETE("/:channelId", panelHandler.DeleteRoom)
	}
	configRoutes := api.Group("/config").Use(middleware.Auth(cfg.JWTSecret))
	{
		configRoutes.GET("", panelHandler.GetConfig)
		configRoutes.PUT("", panelHandler.UpdateConfig)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	return &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		WorkerSrv:      workerSrv,
		Consumer:       consumer,
		Dispatcher:     dispatcher,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}, nil
}

// Start launches the background routines and the HTTP server.
func (a *App) Start() {
	a.Log.Info("Starting application background routines...")

	consumerCtx, cancel := context.WithCancel(context.Background())
	a.consumerCancel = cancel
	go a.Consumer.Run(consumerCtx)
	a.Log.Info("Gateway consumer routine started")

	go a.WorkerSrv.Start()
	a.Log.Info("Worker server routine started")

	a.registerPeriodicTasks()
	a.enqueueStartupSweep()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// registerPeriodicTasks schedules the recurring idle-room sweep.
func (a *App) registerPeriodicTasks() {
	a.scheduler = asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{})

	payload, err := tasks.NewAutoRoomSweepTask(a.Config.SweepIdleSeconds, worker.DefaultSweepBatchLimit)
	if err != nil {
		a.Log.Errorf("Failed to create sweep task payload: %v", err)
		return
	}
	task := asynq.NewTask(tasks.TypeAutoRoomSweep, payload)

	entryID, err := a.scheduler.Register(a.Config.SweepInterval, task, asynq.Queue("default"))
	if err != nil {
		a.Log.Errorf("Could not register periodic sweep task: %v", err)
	} else {
		a.Log.Infof("Periodic sweep task registered with schedule '%s' (EntryID: %s)", a.Config.SweepInterval, entryID)
	}

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := a.scheduler.Run(); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
		}
	}()
}

// enqueueStartupSweep runs one sweep immediately so rooms orphaned while the
// process was down get reclaimed without waiting for the first tick.
func (a *App) enqueueStartupSweep() {
	payload, err := tasks.NewAutoRoomSweepTask(a.Config.SweepIdleSeconds, worker.DefaultSweepBatchLimit)
	if err != nil {
		a.Log.Errorf("Failed to create startup sweep payload: %v", err)
		return
	}
	if _, err := a.AsynqClient.Enqueue(asynq.NewTask(tasks.TypeAutoRoomSweep, payload), asynq.Queue("default")); err != nil {
		a.Log.Errorf("Failed to enqueue startup sweep: %v", err)
	} else {
		a.Log.Info("Startup sweep enqueued")
	}
}

// Shutdown stops everything gracefully, consumers first so no new work
// arrives while the rest winds down.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	if a.consumerCancel != nil {
		a.consumerCancel()
	}
	if a.Dispatcher != nil {
		a.Dispatcher.Wait()
		a.Log.Info("Event dispatcher drained")
	}

	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}
	if a.WorkerSrv != nil {
		a.WorkerSrv.Shutdown()
	}

	a.Log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware logs each HTTP request with latency and status.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		entry := log.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    path,
			"ip":      c.ClientIP(),
			"latency": latency.String(),
		})
		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			entry.Error(errorMessage)
		} else if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Info("Request handled")
		}
	}
}
