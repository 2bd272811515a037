package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/edu-dashboard-api/api/swagger"
	"github.com/noah-isme/edu-dashboard-api/internal/handler"
	"github.com/noah-isme/edu-dashboard-api/internal/middleware"
	"github.com/noah-isme/edu-dashboard-api/internal/models"
	"github.com/noah-isme/edu-dashboard-api/internal/repository"
	"github.com/noah-isme/edu-dashboard-api/internal/service"
	"github.com/noah-isme/edu-dashboard-api/pkg/cache"
	"github.com/noah-isme/edu-dashboard-api/pkg/config"
	"github.com/noah-isme/edu-dashboard-api/pkg/database"
	"github.com/noah-isme/edu-dashboard-api/pkg/export"
	"github.com/noah-isme/edu-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-dashboard-api/pkg/middleware/requestid"
)

// @title Edu Dashboard API
// @version 0.1.0
// @description Hierarchical role and action permission engine
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The menu cache is an optimization; the engine runs without it.
		logr.Sugar().Warnw("redis unavailable, menu caching disabled", "error", err)
		redisClient = nil
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()

	roleRepo := repository.NewRoleRepository(db)
	pageRepo := repository.NewPageRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	hierarchyRepo := repository.NewHierarchyRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, export.NewCSVExporter(), export.NewPDFExporter(),
		cfg.Audit.SummaryWindow, cfg.Audit.ExportMaxRows, logr)
	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "edu-dashboard-api",
	})
	roleSvc := service.NewRoleService(roleRepo, auditSvc, validate, logr)
	pageSvc := service.NewPageService(pageRepo, auditSvc, validate, logr)

	var menuSvc *service.MenuService
	if cfg.Menu.CacheEnabled && redisClient != nil {
		menuSvc = service.NewMenuService(pageRepo, cacheRepo, cfg.Menu.CacheTTL, logr)
	} else {
		menuSvc = service.NewMenuService(pageRepo, nil, cfg.Menu.CacheTTL, logr)
	}
	permSvc := service.NewPermissionService(pageRepo, permRepo, roleRepo, menuSvc, metricsSvc, validate, logr)
	hierarchySvc := service.NewHierarchyService(hierarchyRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)
	pageHandler := handler.NewPageHandler(pageSvc)
	permHandler := handler.NewPermissionHandler(permSvc)
	menuHandler := handler.NewMenuHandler(menuSvc)
	hierarchyHandler := handler.NewHierarchyHandler(hierarchySvc)
	auditHandler := handler.NewAuditHandler(auditSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/menu", menuHandler.Get)
	protected.GET("/hierarchy", hierarchyHandler.Get)

	perms := protected.Group("/permissions")
	perms.GET("/actions", permHandler.AvailableActions)
	perms.GET("/pages/:page", permHandler.CheckPage)
	perms.GET("/pages/:page/actions", permHandler.ListActions)
	perms.GET("/pages/:page/actions/:action", permHandler.CheckAction)

	admin := protected.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.PUT("/permissions/bulk", permHandler.BulkUpdate)

	admin.GET("/roles", roleHandler.List)
	admin.POST("/roles", roleHandler.Create)
	admin.GET("/roles/:name", roleHandler.Get)
	admin.DELETE("/roles/:name", roleHandler.Delete)

	admin.GET("/pages", pageHandler.List)
	admin.POST("/pages", pageHandler.Create)
	admin.GET("/pages/:name", pageHandler.Get)
	admin.PUT("/pages/:name", pageHandler.Update)

	audit := admin.Group("/audit")
	audit.Use(middleware.RequirePageAccess(permSvc, "audit"))
	audit.GET("", auditHandler.List)
	audit.GET("/summary", auditHandler.Summary)

	exportGuard := middleware.RequireAction(permSvc, "audit", models.ActionExport)
	audit.GET("/export/csv", exportGuard, middleware.Audit(auditSvc, models.AuditActionExport, "audit"), auditHandler.ExportCSV)
	audit.GET("/export/pdf", exportGuard, middleware.Audit(auditSvc, models.AuditActionExport, "audit"), auditHandler.ExportPDF)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
