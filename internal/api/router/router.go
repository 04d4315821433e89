package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MeloticZ/CourseX/config"
	"github.com/MeloticZ/CourseX/internal/api/handler"
	"github.com/MeloticZ/CourseX/internal/api/middleware"
	"github.com/MeloticZ/CourseX/pkg/jwt"
	"github.com/MeloticZ/CourseX/pkg/redis"
)

// maxBodyBytes 全局请求体上限（1MB，所有入口均为小 JSON）
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录注册接口限流防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 认证模块（需要认证）
		authOnly := v1.Group("/auth")
		authOnly.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authOnly.POST("/logout", h.Auth.Logout)
			authOnly.GET("/me", h.Auth.GetCurrentUser)
		}

		// 课程目录（公开浏览）
		v1.GET("/terms", h.Catalog.ListTerms)
		terms := v1.Group("/terms/:termId")
		{
			terms.GET("/programs", h.Catalog.ListPrograms)
			terms.GET("/courses", h.Catalog.ListCourses)
			terms.GET("/courses/:code", h.Catalog.GetCourseDetails)
			terms.GET("/courses/:code/sections/:sectionId", h.Catalog.GetSectionDetails)

			// 筛选：匿名可用，带 Token 时冲突条件对照调用者课表
			terms.POST("/courses/filter", middleware.OptionalJWTAuth(jwtMgr, rdb), h.Catalog.FilterCourses)

			// 排课与导出（需要认证）
			authorized := terms.Group("")
			authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
			{
				authorized.GET("/schedule", h.Schedule.GetMySchedule)
				authorized.POST("/schedule/sections", h.Schedule.AddSection)
				authorized.DELETE("/schedule/sections/:code", h.Schedule.RemoveSection)
				authorized.POST("/schedule/collisions", h.Schedule.CheckCollisions)

				authorized.POST("/schedule/blocks", h.Schedule.CreateManualBlock)
				authorized.PUT("/schedule/blocks/:id", h.Schedule.UpdateManualBlock)
				authorized.DELETE("/schedule/blocks/:id", h.Schedule.DeleteManualBlock)
				authorized.DELETE("/schedule/blocks", h.Schedule.ClearManualBlocks)

				authorized.GET("/export/schedule.xlsx", h.Export.ExportScheduleXLSX)
				authorized.GET("/export/schedule.ics", h.Export.ExportScheduleICS)
			}
		}
	}

	return r
}
