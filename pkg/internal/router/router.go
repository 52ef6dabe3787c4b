// Package router 管理路由配置，把路径绑定到 pkg/internal/handle 中的处理器.
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAll 注册全部业务路由.
func RegisterAll(r *gin.Engine) {
	api := r.Group("/api")
	{
		RegisterUserRoutes(api)
		RegisterTMFRoutes(api)
	}

	v1 := r.Group("/api/v1")
	{
		RegisterHealthCheckRoute(v1)
	}
}
