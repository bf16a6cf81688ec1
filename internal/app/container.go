package app

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Mojasagwe/taxiRankApp/domain"
	"github.com/Mojasagwe/taxiRankApp/internal/config"
	"github.com/Mojasagwe/taxiRankApp/internal/logging"
	"github.com/Mojasagwe/taxiRankApp/internal/services"
	"github.com/Mojasagwe/taxiRankApp/internal/storage"
	"github.com/Mojasagwe/taxiRankApp/internal/transport"
)

// Container holds all dependencies of the client core, wired once at
// startup.
type Container struct {
	// Config
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	Store       domain.CredentialStore
	RedisClient *redis.Client
	APIClient   *transport.Client

	// Transports
	AuthAPI  domain.AuthAPI
	AdminAPI domain.AdminAPI
	RankAPI  domain.RankAPI

	// Services
	SessionSvc      *services.SessionServiceImpl
	PolicySvc       domain.PolicyService
	RegistrationSvc *services.RegistrationServiceImpl
	AssignmentSvc   *services.AssignmentServiceImpl

	gormStore *storage.GormStore
}

// NewContainer creates and initializes all dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: logging.New(cfg.LogLevel),
	}

	if err := container.initStore(); err != nil {
		return nil, err
	}
	container.initTransports()
	if err := container.initServices(); err != nil {
		return nil, err
	}

	return container, nil
}

func (c *Container) initStore() error {
	switch c.Config.StorageBackend {
	case config.BackendFile:
		c.Store = storage.NewFileStore(c.Config.StoragePath)
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(c.Config.SQLitePath)
		if err != nil {
			return err
		}
		c.gormStore = store
		c.Store = store
	case config.BackendRedis:
		c.RedisClient = redis.NewClient(&redis.Options{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
			DB:       c.Config.RedisDB,
		})
		c.Store = storage.NewRedisStore(c.RedisClient, 0)
	default:
		return fmt.Errorf("unknown storage backend %q", c.Config.StorageBackend)
	}
	return nil
}

func (c *Container) initTransports() {
	c.APIClient = transport.NewClient(c.Config.APIBaseURL, c.Store,
		transport.WithTimeout(c.Config.RequestTimeout),
		transport.WithLogger(c.Logger),
	)
	c.AuthAPI = transport.NewAuthClient(c.APIClient)
	c.AdminAPI = transport.NewAdminClient(c.APIClient)
	c.RankAPI = transport.NewRankClient(c.APIClient)
}

func (c *Container) initServices() error {
	policySvc, err := services.NewPolicyService()
	if err != nil {
		return err
	}
	c.PolicySvc = policySvc

	sink := logging.NewEventSink(c.Logger)

	c.SessionSvc = services.NewSessionService(c.Store, c.AuthAPI, c.Logger,
		services.WithEventSink(sink))
	c.RegistrationSvc = services.NewRegistrationService(c.AdminAPI, c.PolicySvc, c.SessionSvc, c.Logger,
		services.WithRegistrationEventSink(sink))
	c.AssignmentSvc = services.NewAssignmentService(c.AdminAPI, c.RankAPI, c.PolicySvc, c.SessionSvc, c.RegistrationSvc, c.Logger,
		services.WithAssignmentEventSink(sink))

	// A server-side token invalidation tears the session down no matter
	// which call tripped it.
	c.APIClient.SetInvalidationHandler(c.SessionSvc.HandleAuthInvalidated)

	return nil
}

// Close closes all connections.
func (c *Container) Close() error {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			return err
		}
	}
	if c.gormStore != nil {
		return c.gormStore.Close()
	}
	return nil
}
