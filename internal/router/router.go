package router

import (
	"fmt"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/cache"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	adminhandlers "github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/admin"
	mobilehandlers "github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/mobile"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/provider"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（后台 / 移动端）
	adminHandler := adminhandlers.New(c)
	mobileHandler := mobilehandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "avarias"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
		OnLimited:     recordRateLimitedLogin(c.UserLoginLogService),
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 本地存储时直接提供照片访问
	if local, ok := c.Storage.(*storage.Local); ok {
		if prefix := strings.TrimSpace(cfg.Storage.Local.PublicURL); strings.HasPrefix(prefix, "/") {
			r.Static(prefix, local.Dir())
		}
	}

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/auth/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")), adminHandler.Login)

		// 账号接口（后台与移动端共用）
		account := apiV1.Group("")
		account.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService))
		{
			account.GET("/me", adminHandler.GetMe)
			account.PUT("/me/password", adminHandler.ChangePassword)
		}

		// 后台接口（full 访问级别）
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService), RequireFullAccess())
		{
			// 静态路径需注册在 /claims/:id 之前
			admin.GET("/claims", adminHandler.ListClaims)
			admin.POST("/claims", adminHandler.CreateClaim)
			admin.GET("/claims/search", adminHandler.SearchClaims)
			admin.GET("/claims/export", adminHandler.ExportClaims)
			admin.GET("/claims/liability-pending", adminHandler.ListLiabilityPending)
			admin.GET("/claims/:id", adminHandler.GetClaim)
			admin.POST("/claims/:id/decision", adminHandler.DecideClaim)
			admin.POST("/claims/:id/return-transit", adminHandler.StartReturnTransit)
			admin.POST("/claims/:id/return-completion", adminHandler.CompleteReturn)
			admin.POST("/claims/:id/notes", adminHandler.AddNote)
			admin.POST("/claims/:id/photos", adminHandler.AttachPhotos)
			admin.PUT("/claims/:id/items", adminHandler.EditItems)
			admin.PUT("/claims/:id/value", adminHandler.UpdateValue)
			admin.PUT("/claims/:id/distribution-center", adminHandler.TransferDistributionCenter)
			admin.POST("/claims/:id/liability", adminHandler.AssignLiability)

			admin.GET("/metrics", RequireCapability(c.AuthzService, authz.CapDashboardView), adminHandler.GetMetrics)

			// 主数据
			admin.GET("/reference/availability", adminHandler.CheckReferenceAvailability)
			admin.GET("/clients", adminHandler.ListClients)
			admin.POST("/clients", adminHandler.CreateClient)
			admin.PUT("/clients/:id", adminHandler.UpdateClient)
			admin.DELETE("/clients/:id", adminHandler.DeactivateClient)
			admin.POST("/clients/:id/reactivate", adminHandler.ReactivateClient)
			admin.GET("/drivers", adminHandler.ListDrivers)
			admin.POST("/drivers", adminHandler.CreateDriver)
			admin.PUT("/drivers/:id", adminHandler.UpdateDriver)
			admin.DELETE("/drivers/:id", adminHandler.DeactivateDriver)
			admin.POST("/drivers/:id/reactivate", adminHandler.ReactivateDriver)
			admin.GET("/vehicles", adminHandler.ListVehicles)
			admin.POST("/vehicles", adminHandler.CreateVehicle)
			admin.PUT("/vehicles/:id", adminHandler.UpdateVehicle)
			admin.DELETE("/vehicles/:id", adminHandler.DeactivateVehicle)
			admin.POST("/vehicles/:id/reactivate", adminHandler.ReactivateVehicle)
			admin.GET("/products", adminHandler.ListProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeactivateProduct)
			admin.POST("/products/:id/reactivate", adminHandler.ReactivateProduct)
			admin.GET("/distribution-centers", adminHandler.ListDistributionCenters)
			admin.POST("/distribution-centers", adminHandler.CreateDistributionCenter)
			admin.PUT("/distribution-centers/:id", adminHandler.UpdateDistributionCenter)
			admin.DELETE("/distribution-centers/:id", adminHandler.DeactivateDistributionCenter)
			admin.POST("/distribution-centers/:id/reactivate", adminHandler.ReactivateDistributionCenter)

			// 用户与审计（仅超级用户）
			users := admin.Group("")
			users.Use(RequireSuperuser())
			{
				users.GET("/users", adminHandler.ListUsers)
				users.POST("/users", adminHandler.CreateUser)
				users.GET("/users/:id", adminHandler.GetUser)
				users.PUT("/users/:id", adminHandler.UpdateUser)
				users.DELETE("/users/:id", adminHandler.DeactivateUser)
				users.POST("/users/:id/reactivate", adminHandler.ReactivateUser)
				users.GET("/roles", adminHandler.ListRoles)
				users.GET("/capabilities", adminHandler.ListCapabilities)
				users.GET("/user-login-logs", adminHandler.GetUserLoginLogs)
				users.GET("/authz-audit-logs", adminHandler.ListAuthzAuditLogs)
			}
		}

		// 移动端接口
		mobile := apiV1.Group("/mobile")
		mobile.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService))
		{
			mobile.GET("/claims", mobileHandler.ListClaims)
			mobile.POST("/claims", mobileHandler.CreateClaim)
			mobile.GET("/claims/:id", mobileHandler.GetClaim)
			mobile.POST("/claims/:id/photos", mobileHandler.AttachPhotos)
			mobile.POST("/claims/:id/notes", mobileHandler.AddNote)
			mobile.GET("/clients", mobileHandler.ListClients)
			mobile.GET("/drivers", mobileHandler.ListDrivers)
			mobile.GET("/vehicles", mobileHandler.ListVehicles)
			mobile.GET("/products", mobileHandler.ListProducts)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

// recordRateLimitedLogin 被限流的登录也记入登录日志
func recordRateLimitedLogin(logs *service.UserLoginLogService) func(c *gin.Context, key string) {
	return func(c *gin.Context, key string) {
		source := constants.LoginLogSourceWeb
		if strings.EqualFold(readJSONField(c, "source"), constants.LoginLogSourceMobile) {
			source = constants.LoginLogSourceMobile
		}
		err := logs.Record(service.RecordUserLoginInput{
			Username:    readJSONField(c, "username"),
			Status:      constants.LoginLogStatusFailed,
			FailReason:  constants.LoginLogFailReasonRateLimited,
			ClientIP:    c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
			LoginSource: source,
			RequestID:   getRequestID(c),
		})
		if err != nil {
			logger.Ctx(c.Request.Context()).Warnw("login_log_record_failed", "key", key, "error", err)
		}
	}
}
