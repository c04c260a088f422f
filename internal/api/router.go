package api

import (
	"github.com/gin-gonic/gin"

	"github.com/titech/leadpro_server/config"
	"github.com/titech/leadpro_server/internal/api/handler"
	"github.com/titech/leadpro_server/internal/api/middleware"
)

type Router struct {
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	backupHandler *handler.BackupHandler
	cfg           *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	backupHandler *handler.BackupHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:   authHandler,
		userHandler:   userHandler,
		backupHandler: backupHandler,
		cfg:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api/v1")
	{
		// 公开接口 - 认证
		api.POST("/auth/login", r.authHandler.Login)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.PUT("/me/settings", r.userHandler.UpdateMySettings)
		}

		// 管理接口
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly())
		{
			admin.GET("/users", r.userHandler.List)
			admin.POST("/users", r.userHandler.Add)
			admin.PUT("/users/:username", r.userHandler.Update)
			admin.DELETE("/users/:username", r.userHandler.Delete)
			admin.PUT("/users/:username/settings", r.userHandler.UpdateSettings)

			admin.GET("/storage", r.userHandler.StorageStatus)

			admin.POST("/migrate", r.backupHandler.Migrate)
			admin.POST("/backup/restore", r.backupHandler.Restore)
			admin.POST("/backup/merge", r.backupHandler.Merge)
			admin.GET("/backup/export", r.backupHandler.Export)
			admin.GET("/backup/emergency", r.backupHandler.Emergency)
		}
	}

	return engine
}
