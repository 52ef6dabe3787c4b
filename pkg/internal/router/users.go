package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/handle"
)

// RegisterUserRoutes 注册用户相关路由.
func RegisterUserRoutes(g *gin.RouterGroup) {
	userRoutes := g.Group("/users")
	{
		// register/login 在认证跳过名单中，其余走 Bearer 认证
		userRoutes.POST("/register", handle.RegisterUser)
		userRoutes.POST("/login", handle.LoginUser)
		userRoutes.POST("/logout", handle.LogoutUser)
		userRoutes.GET("/profile", handle.GetProfile)
		userRoutes.PUT("/profile", handle.UpdateProfile)
		userRoutes.GET("/get-all-users", handle.ListUsers)
	}
}
