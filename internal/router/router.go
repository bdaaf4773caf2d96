package router

import (
	"time"

	"msp/internal/handlers"
	"msp/internal/middleware"
	"msp/internal/services"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {
	resolver := services.NewDomainResolver()
	tenant := middleware.NewTenantMiddleware(resolver)
	auth := middleware.NewAuthMiddleware()

	// 所有请求先做Host解析：主站、租户子域名、自定义域名走同一套路由树
	router.Use(tenant.Resolve())

	router.GET("/health", healthCheck)

	userService := services.NewUserService()
	settingsService := services.NewSettingsService()

	// ========== 主站：注册登录与商城开通 ==========

	authHandler := handlers.NewAuthHandler(userService)
	authGroup := router.Group("/startup/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)

		authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		authGroup.POST("/switch-tenant", auth.RequireLogin(), authHandler.SwitchTenant)
	}

	marketplaceHandler := handlers.NewMarketplaceHandler(
		services.NewProvisioningService(),
		services.NewAvailabilityService(),
		services.NewPlanService(),
		userService,
	)
	marketplace := router.Group("/startup/marketplace")
	{
		// 开通前的可用性检查不需要登录，注册页面边输入边查
		marketplace.GET("/plans", marketplaceHandler.GetPlans)
		marketplace.POST("/check-subdomain", marketplaceHandler.CheckSubdomain)
		marketplace.POST("/check-domain", marketplaceHandler.CheckDomain)
		marketplace.POST("/suggest-subdomains", marketplaceHandler.SuggestSubdomains)

		marketplace.POST("/create", auth.RequireLogin(), marketplaceHandler.Create)
		marketplace.GET("/mine", auth.RequireLogin(), marketplaceHandler.MyMarketplaces)
	}

	// ========== 商城运行时：落在租户域名上的接口 ==========

	settingsHandler := handlers.NewSettingsHandler(settingsService)
	productHandler := handlers.NewProductHandler(services.NewProductService(), settingsService)
	orderHandler := handlers.NewOrderHandler(services.NewOrderService())
	orderStreamHandler := handlers.NewOrderStreamHandler()
	userHandler := handlers.NewUserHandler(userService)
	systemHandler := handlers.NewSystemHandler(resolver)

	saas := router.Group("/saas", tenant.RequireTenant())
	{
		// 公开接口：匿名可访问，具体可见性由商城设置控制
		saas.GET("/settings", auth.OptionalLogin(), settingsHandler.Get)
		saas.GET("/products", auth.OptionalLogin(), productHandler.GetAll)
		saas.GET("/products/:id", auth.OptionalLogin(), productHandler.GetByID)
		saas.GET("/categories", auth.OptionalLogin(), productHandler.GetCategories)

		// 管理接口
		admin := saas.Group("", auth.RequireLogin(), auth.RequireTenantAdmin())
		{
			admin.PUT("/settings", settingsHandler.Update)

			admin.POST("/products", productHandler.Create)
			admin.PUT("/products/:id", productHandler.Update)
			admin.DELETE("/products/:id", productHandler.Delete)

			admin.POST("/categories", productHandler.CreateCategory)
			admin.DELETE("/categories/:id", productHandler.DeleteCategory)

			admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
			admin.GET("/orders/export", orderHandler.Export)

			admin.POST("/users", userHandler.CreateProfile)
			admin.GET("/users", userHandler.GetProfiles)
			admin.GET("/users/:id", userHandler.GetProfile)
			admin.PUT("/users/:id/active", userHandler.SetProfileActive)

			admin.GET("/subscription", systemHandler.TenantSubscription)
			admin.GET("/activity-logs", systemHandler.TenantActivityLogs)
		}

		// 成员接口：管理员和客户都能用
		member := saas.Group("", auth.RequireLogin(), auth.RequireTenantMember())
		{
			member.POST("/orders", orderHandler.Create)
			member.GET("/orders", orderHandler.GetAll)
			member.GET("/orders/:id", orderHandler.GetByID)
		}

		// WebSocket自己做令牌校验（握手带不了Authorization头）
		saas.GET("/orders/stream", orderStreamHandler.Events)
	}

	// ========== 平台管理 ==========

	system := router.Group("/system", auth.RequireLogin(), auth.RequirePlatformAdmin())
	{
		system.GET("/tenants", systemHandler.GetTenants)
		system.GET("/tenants/stats", systemHandler.GetStats)
		system.GET("/tenants/:id", systemHandler.GetTenant)
		system.POST("/tenants/:id/suspend", systemHandler.SuspendTenant)
		system.POST("/tenants/:id/activate", systemHandler.ActivateTenant)
		system.DELETE("/tenants/:id", systemHandler.DeprovisionTenant)
		system.POST("/tenants/:id/repair", systemHandler.RepairTenant)

		system.POST("/tenants/:id/subscription/cancel", systemHandler.CancelSubscription)
		system.POST("/tenants/:id/subscription/renew", systemHandler.RenewSubscription)

		system.GET("/activity-logs", systemHandler.GetActivityLogs)
	}
}

func healthCheck(c *gin.Context) {
	response.Success(c, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "MSP",
		"version":   "1.0.0",
	})
}
