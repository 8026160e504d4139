package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/shared/middleware"
	"yatube-backend/internal/shared/response"
	"yatube-backend/pkg/container"
	"yatube-backend/web"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(web.MustTemplates())

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		c.Metrics.Handler(),
		middleware.OptionalAuth(c.JWTManager),
	)

	setupPageRoutes(router, c)
	setupAuthRoutes(router, c)
	router.GET(web.MediaPrefix+"*key", c.MediaHandler.Serve)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		setupAdminRoutes(v1, c)
	}

	router.NoRoute(response.NotFoundPage)
	return router
}

// ========================================
// HTML PAGES
// ========================================
func setupPageRoutes(router *gin.Engine, c *container.Container) {
	router.GET("/",
		middleware.CachePage(c.PageStore, c.Config.Cache.PageTTL, model.IndexCachePrefix, c.Metrics),
		c.PostHandler.Index,
	)
	router.GET("/group/:slug/", c.PostHandler.GroupPosts)
	router.GET("/profile/:username/", c.PostHandler.Profile)
	router.GET("/posts/:id/", c.PostHandler.PostDetail)

	authed := router.Group("/", middleware.RequireAuth())
	{
		authed.GET("/follow/", c.PostHandler.FollowIndex)
		authed.GET("/create/", c.PostHandler.CreateForm)
		authed.POST("/create/", c.PostHandler.Create)
		authed.GET("/posts/:id/edit/", c.PostHandler.EditForm)
		authed.POST("/posts/:id/edit/", c.PostHandler.Edit)
		authed.POST("/posts/:id/comment/", c.CommentHandler.Create)
		authed.GET("/profile/:username/follow/", c.FollowHandler.Follow)
		authed.GET("/profile/:username/unfollow/", c.FollowHandler.Unfollow)
	}
}

// ========================================
// AUTH PAGES
// ========================================
func setupAuthRoutes(router *gin.Engine, c *container.Container) {
	auth := router.Group("/auth")
	{
		auth.GET("/signup/", c.UserHandler.ShowSignup)
		auth.POST("/signup/", c.UserHandler.Signup)
		auth.GET("/login/", c.UserHandler.ShowLogin)
		auth.POST("/login/", c.UserHandler.Login)
		auth.GET("/logout/", c.UserHandler.Logout)
	}
}

// ========================================
// ADMIN API
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/groups", c.GroupHandler.Create)
		admin.GET("/groups", c.GroupHandler.List)
		admin.DELETE("/groups/:slug", c.GroupHandler.Delete)
		admin.POST("/cache/clear", c.CacheHandler.Clear)
	}
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		redisStatus := "ok"
		if err := appCtx.Redis.Ping(ctx); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
		}

		storageStatus := "ok"
		if err := appCtx.Storage.Ping(ctx); err != nil {
			storageStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}
