package provider

import (
	"context"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/cache"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/queue"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/storage"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Storage     storage.Provider
	Location    *time.Location

	// Repositories
	UserRepo          repository.UserRepository
	UserLoginLogRepo  repository.UserLoginLogRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository
	ClaimRepo         repository.ClaimRepository
	ClaimItemRepo     repository.ClaimItemRepository
	ClaimPhotoRepo    repository.ClaimPhotoRepository
	ClaimLogRepo      repository.ClaimLogRepository
	ClientRepo        repository.ClientRepository
	DriverRepo        repository.DriverRepository
	VehicleRepo       repository.VehicleRepository
	ProductRepo       repository.ProductRepository
	CenterRepo        repository.DistributionCenterRepository
	MetricsRepo       repository.MetricsRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserService         *service.UserService
	UserLoginLogService *service.UserLoginLogService
	AuthzAuditService   *service.AuthzAuditService
	UploadService       *service.UploadService
	ClaimService        *service.ClaimService
	ReferenceService    *service.ReferenceService
	MetricsService      *service.MetricsService
	ExportService       *service.ExportService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		logger.Errorw("provider_init_storage_failed", "driver", cfg.Storage.Driver, "error", err)
		panic(err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Storage:     store,
		Location:    cfg.Server.Location(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
	c.ClaimRepo = repository.NewClaimRepository(db)
	c.ClaimItemRepo = repository.NewClaimItemRepository(db)
	c.ClaimPhotoRepo = repository.NewClaimPhotoRepository(db)
	c.ClaimLogRepo = repository.NewClaimLogRepository(db)
	c.ClientRepo = repository.NewClientRepository(db)
	c.DriverRepo = repository.NewDriverRepository(db)
	c.VehicleRepo = repository.NewVehicleRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CenterRepo = repository.NewDistributionCenterRepository(db)
	c.MetricsRepo = repository.NewMetricsRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo, c.AuthzService)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo, c.AuthzService)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.UserLoginLogService)
	c.UserService = service.NewUserService(c.UserRepo, c.AuthService, c.AuthzService, c.AuthzService, c.AuthzAuditService)
	c.UploadService = service.NewUploadService(c.Config.Upload)
	c.ClaimService = service.NewClaimService(service.ClaimServiceDeps{
		Claims:      c.ClaimRepo,
		Items:       c.ClaimItemRepo,
		Photos:      c.ClaimPhotoRepo,
		Logs:        c.ClaimLogRepo,
		Clients:     c.ClientRepo,
		Drivers:     c.DriverRepo,
		Vehicles:    c.VehicleRepo,
		Products:    c.ProductRepo,
		Centers:     c.CenterRepo,
		Storage:     c.Storage,
		Authorizer:  c.AuthzService,
		Invalidator: service.NewMetricsInvalidator(c.QueueClient, c.Location),
		Company:     c.Config.Company,
		Location:    c.Location,
	})
	c.ReferenceService = service.NewReferenceService(service.ReferenceServiceDeps{
		Clients:    c.ClientRepo,
		Drivers:    c.DriverRepo,
		Vehicles:   c.VehicleRepo,
		Products:   c.ProductRepo,
		Centers:    c.CenterRepo,
		Authorizer: c.AuthzService,
	})
	c.MetricsService = service.NewMetricsService(service.MetricsServiceDeps{
		Repo:       c.MetricsRepo,
		Authorizer: c.AuthzService,
		Config:     c.Config.Metrics,
		Location:   c.Location,
	})
	c.ExportService = service.NewExportService(c.ClaimService, c.AuthzService, c.Location)
}
