package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/handle"
)

// RegisterTMFRoutes 注册分类树和文档相关路由.
func RegisterTMFRoutes(g *gin.RouterGroup) {
	tmfRoutes := g.Group("/tmf")
	{
		// 四级分类 CRUD，子级挂在父级路径下创建和列举
		zoneGroup := tmfRoutes.Group("/zones")
		{
			zoneGroup.GET("", handle.ListZones)
			zoneGroup.POST("", handle.CreateZone)
			zoneGroup.GET("/:id", handle.GetZone)
			zoneGroup.PUT("/:id", handle.UpdateZone)
			zoneGroup.DELETE("/:id", handle.DeleteZone)
		}

		tmfRoutes.GET("/zones/:id/sections", handle.ListSections)
		tmfRoutes.POST("/zones/:id/sections", handle.CreateSection)

		sectionGroup := tmfRoutes.Group("/sections")
		{
			sectionGroup.GET("/:id", handle.GetSection)
			sectionGroup.PUT("/:id", handle.UpdateSection)
			sectionGroup.DELETE("/:id", handle.DeleteSection)
			sectionGroup.GET("/:id/artifacts", handle.ListArtifacts)
			sectionGroup.POST("/:id/artifacts", handle.CreateArtifact)
		}

		artifactGroup := tmfRoutes.Group("/artifacts")
		{
			artifactGroup.GET("/:id", handle.GetArtifact)
			artifactGroup.PUT("/:id", handle.UpdateArtifact)
			artifactGroup.DELETE("/:id", handle.DeleteArtifact)
			artifactGroup.GET("/:id/subartifacts", handle.ListSubArtifacts)
			artifactGroup.POST("/:id/subartifacts", handle.CreateSubArtifact)
		}

		subArtifactGroup := tmfRoutes.Group("/subartifacts")
		{
			subArtifactGroup.GET("/:id", handle.GetSubArtifact)
			subArtifactGroup.PUT("/:id", handle.UpdateSubArtifact)
			subArtifactGroup.DELETE("/:id", handle.DeleteSubArtifact)
		}

		documentGroup := tmfRoutes.Group("/documents")
		{
			documentGroup.GET("", handle.ListDocuments)
			// POST 方法树中该位置只有上传一条路由，参数名不与 :id 冲突
			documentGroup.POST("/:userId", handle.UploadDocument)
			documentGroup.GET("/:id", handle.GetDocument)
			documentGroup.PUT("/:id", handle.UpdateDocument)
			documentGroup.DELETE("/:id", handle.DeleteDocument)
		}

		structureGroup := tmfRoutes.Group("/structure")
		{
			structureGroup.GET("", handle.GetStructure)
			structureGroup.POST("/import", handle.ImportStructure)
		}
	}
}
