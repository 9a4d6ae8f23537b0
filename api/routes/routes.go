package routes

import (
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/feichai0017/docprep/api/handlers"
    "github.com/feichai0017/docprep/api/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
    // 全局中间件
    r.Use(middleware.CORS())

    // API 版本组
    v1 := r.Group("/api/v1")

    // 健康检查
    v1.GET("/health", func(c *gin.Context) {
        c.JSON(http.StatusOK, gin.H{"status": "ok"})
    })

    // 案卷组包路由组
    pkg := v1.Group("/package")
    {
        pkg.POST("/form", h.Package.FormPackage)
        pkg.POST("/insert-statement", h.Package.InsertStatement)
        pkg.POST("/unpack", h.Package.UnpackNoStatement)
        pkg.POST("/check-publication", h.Package.CheckPublication)
    }

    v1.GET("/banks", h.Package.Banks)

    settings := v1.Group("/settings")
    {
        settings.GET("", h.Package.GetSettings)
        settings.PUT("", h.Package.UpdateSettings)
    }
}
