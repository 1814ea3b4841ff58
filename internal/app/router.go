package app

import (
	"modulegate_backend/docs"
	"modulegate_backend/internal/config"
	"modulegate_backend/internal/middleware"
	"modulegate_backend/internal/model"
	"modulegate_backend/pkg/monitoring"
	"modulegate_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	// 1. student admission, usable without a credential
	a.registerStudentRoutes(api, c, cfg)

	// 2. instructor module management
	a.registerTeacherRoutes(api, c, cfg)
}

func (a *App) registerStudentRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	tryAuth := middleware.TryAuthMiddleware(cfg.JWT.Secret)

	student := api.Group("/student")
	student.Use(tryAuth)
	{
		// codes are short, so guessing is throttled per client
		student.POST("/join-module",
			security.RateLimiter("join", cfg.RateLimit.JoinMaxRequests, cfg.RateLimit.RateWindow()),
			c.student.JoinModule)
		student.GET("/modules/:id", c.student.GetModule)
		student.GET("/modules/:id/consent", c.student.GetConsent)
	}

	api.PUT("/modules/:id/consent/:student_id", tryAuth, c.consent.SubmitConsent)
}

func (a *App) registerTeacherRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	teacher := api.Group("/teacher/modules")
	teacher.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("", c.module.CreateModule)
		teacher.GET("", c.module.ListModules)
		teacher.GET("/:id", c.module.GetModule)
		teacher.POST("/:id/regenerate-code", c.module.RegenerateCode)
		teacher.PUT("/:id/consent-form", c.module.UpdateConsentForm)
		teacher.PUT("/:id/active", c.module.SetActive)
	}
}
