package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/config"
	postHandler "yatube-backend/internal/domains/post/handler"
	postRepo "yatube-backend/internal/domains/post/repository"
	postService "yatube-backend/internal/domains/post/service"
	"yatube-backend/internal/domains/user"
	userHandler "yatube-backend/internal/domains/user/handler"
	userRepo "yatube-backend/internal/domains/user/repository"
	userService "yatube-backend/internal/domains/user/service"
	infraCache "yatube-backend/internal/infrastructure/cache"
	"yatube-backend/internal/infrastructure/database"
	"yatube-backend/internal/infrastructure/queue"
	"yatube-backend/internal/infrastructure/storage"
	"yatube-backend/internal/shared/middleware"
	"yatube-backend/pkg/jwt"
)

// Container holds every dependency of the application.
// Build order: config, infrastructure, repositories, services, handlers.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisCache
	PageStore   infraCache.PageStore
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client
	TaskClient  *queue.TaskClient
	JWTManager  *jwt.Manager
	Registry    *prometheus.Registry
	Metrics     *middleware.Metrics

	// Repositories
	UserRepo    user.Repository
	PostRepo    postRepo.PostRepository
	GroupRepo   postRepo.GroupRepository
	CommentRepo postRepo.CommentRepository
	FollowRepo  postRepo.FollowRepository
	ImageRepo   postRepo.ImageRepository

	// Services
	UserService    user.Service
	ImageService   postService.ImageService
	PostService    postService.PostService
	CommentService postService.CommentService
	FollowService  postService.FollowService
	GroupService   postService.GroupService

	// Handlers
	UserHandler    *userHandler.UserHandler
	PostHandler    *postHandler.PostHandler
	CommentHandler *postHandler.CommentHandler
	FollowHandler  *postHandler.FollowHandler
	GroupHandler   *postHandler.GroupHandler
	MediaHandler   *postHandler.MediaHandler
	CacheHandler   *postHandler.CacheHandler
}

// NewContainer wires the whole dependency graph.
func NewContainer() (*Container, error) {
	log.Info().Msg("Initializing DI container")
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Str("env", cfg.App.Environment).Msg("DI container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.DB = database.NewPostgresDB(dbConfig)
	if err := c.DB.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := c.DB.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := c.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("Database connected")

	c.Redis = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	redisUp := true
	if err := c.Redis.Connect(ctx); err != nil {
		// Redis only backs the page cache and the queue; the site still renders without it.
		log.Warn().Err(err).Msg("Redis connection failed (non-critical)")
		redisUp = false
	}

	if cfg.Cache.Backend == "redis" && redisUp {
		c.PageStore = infraCache.NewRedisPageStore(c.Redis)
	} else {
		c.PageStore = infraCache.NewMemoryPageStore()
	}
	log.Info().Str("backend", fmt.Sprintf("%T", c.PageStore)).Dur("ttl", cfg.Cache.PageTTL).Msg("Page cache ready")

	c.Storage, err = storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init minio: %w", err)
	}
	log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("MinIO connected")

	c.AsynqClient = asynq.NewClient(RedisClientOpt(cfg.Redis))
	c.TaskClient = queue.NewTaskClient(c.AsynqClient)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = middleware.NewMetrics(c.Registry)
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.PostRepo = postRepo.NewPostRepository(pool)
	c.GroupRepo = postRepo.NewGroupRepository(pool)
	c.CommentRepo = postRepo.NewCommentRepository(pool)
	c.FollowRepo = postRepo.NewFollowRepository(pool)
	c.ImageRepo = postRepo.NewImageRepository(pool)
}

func (c *Container) initServices() {
	processor := storage.NewImageProcessor()

	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.ImageService = postService.NewImageService(c.ImageRepo, c.Storage, c.TaskClient, processor)
	c.PostService = postService.NewPostService(
		c.PostRepo,
		c.GroupRepo,
		c.CommentRepo,
		c.FollowRepo,
		c.UserRepo,
		c.ImageService,
		processor,
	)
	c.CommentService = postService.NewCommentService(c.PostRepo, c.CommentRepo)
	c.FollowService = postService.NewFollowService(c.FollowRepo, c.UserRepo)
	c.GroupService = postService.NewGroupService(c.GroupRepo)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService, c.Config.JWT.CookieSecure)
	c.PostHandler = postHandler.NewPostHandler(c.PostService)
	c.CommentHandler = postHandler.NewCommentHandler(c.CommentService)
	c.FollowHandler = postHandler.NewFollowHandler(c.FollowService)
	c.GroupHandler = postHandler.NewGroupHandler(c.GroupService)
	c.MediaHandler = postHandler.NewMediaHandler(c.Storage)
	c.CacheHandler = postHandler.NewCacheHandler(c.PageStore)
}

// RedisClientOpt is the asynq connection shared by the API and the worker.
func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Cleanup releases connections; safe on a partially built container.
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("Container cleanup completed")
}
