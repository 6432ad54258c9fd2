package main

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/handler"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/middleware"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/service"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store/postgres"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/config"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/database"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/jwtutil"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

func main() {
	// Load configuration
	conf, err := config.Load("saas-platform")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(conf.ServiceName)
	defer logger.Sync()
	log := logger.GetLogger()
	log.Info("Starting service", conf.LogFields()...)

	// Initialize database connection
	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	// Run migrations
	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	// Wire the store and services
	st := postgres.New(db)
	authService := service.NewAuthService(st)
	tenantService := service.NewTenantService(st)
	userService := service.NewUserService(st)
	projectService := service.NewProjectService(st)
	taskService := service.NewTaskService(st)
	auditService := service.NewAuditService(st)

	authHandler := handler.NewAuthHandler(authService, jwt)
	tenantHandler := handler.NewTenantHandler(tenantService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(prometheus.MetricsMiddleware())

	// Liveness and metrics endpoints
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Public routes
	api := e.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes - require authentication
	auth := api.Group("", middleware.JWTAuthMiddleware(jwt))

	auth.POST("/auth/logout", authHandler.Logout)
	auth.GET("/auth/me", authHandler.Me)

	auth.GET("/tenants", tenantHandler.List)
	auth.GET("/tenants/:id", tenantHandler.Get)
	auth.PUT("/tenants/:id", tenantHandler.Update)
	auth.GET("/tenants/:id/audit-logs", auditHandler.List)

	auth.POST("/tenants/:id/users", userHandler.Create)
	auth.GET("/tenants/:id/users", userHandler.List)
	auth.GET("/users", userHandler.Directory)
	auth.PUT("/users/:id", userHandler.Update)
	auth.DELETE("/users/:id", userHandler.Delete)

	auth.POST("/projects", projectHandler.Create)
	auth.GET("/projects", projectHandler.List)
	auth.GET("/projects/:id", projectHandler.Get)
	auth.PUT("/projects/:id", projectHandler.Update)
	auth.DELETE("/projects/:id", projectHandler.Delete)

	auth.POST("/projects/:id/tasks", taskHandler.Create)
	auth.GET("/projects/:id/tasks", taskHandler.List)
	auth.PUT("/tasks/:id", taskHandler.Update)
	auth.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
	auth.DELETE("/tasks/:id", taskHandler.Delete)

	// Start server
	log.Info("Listening on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
