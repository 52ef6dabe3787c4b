package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

// ListSubArtifacts 制品下的子制品列表.
//
//	@Summary	列出制品下全部子制品
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"制品ID"
//	@Success	200	{object}	types.Response	"子制品列表"
//	@Failure	404	{object}	types.Response	"制品不存在"
//	@Router		/api/tmf/artifacts/{id}/subartifacts [get]
func ListSubArtifacts(c *gin.Context) {
	artifactID, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	subs, err := svc.ListSubArtifacts(c.Request.Context(), artifactID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(subs))
}

// GetSubArtifact 查询单个子制品.
//
//	@Summary	查询子制品
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"子制品ID"
//	@Success	200	{object}	types.Response	"子制品"
//	@Failure	404	{object}	types.Response	"子制品不存在"
//	@Router		/api/tmf/subartifacts/{id} [get]
func GetSubArtifact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	sub, err := svc.GetSubArtifact(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(sub))
}

// CreateSubArtifact 在制品下创建子制品.
//
//	@Summary	创建子制品
//	@Description	编号在所属制品内唯一
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int								true	"制品ID"
//	@Param		subartifact	body		types.CreateSubArtifactRequest	true	"子制品"
//	@Success	201			{object}	types.Response					"创建的子制品"
//	@Failure	404			{object}	types.Response					"父制品不存在"
//	@Failure	400			{object}	types.Response					"请求参数错误或编号已存在"
//	@Router		/api/tmf/artifacts/{id}/subartifacts [post]
func CreateSubArtifact(c *gin.Context) {
	artifactID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.CreateSubArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	sub, err := svc.CreateSubArtifact(c.Request.Context(), artifactID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.OK(sub))
}

// UpdateSubArtifact 更新子制品.
//
//	@Summary	更新子制品
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int								true	"子制品ID"
//	@Param		subartifact	body		types.UpdateSubArtifactRequest	true	"更新字段"
//	@Success	200			{object}	types.Response					"更新后的子制品"
//	@Failure	404			{object}	types.Response					"子制品不存在"
//	@Router		/api/tmf/subartifacts/{id} [put]
func UpdateSubArtifact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateSubArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	sub, err := svc.UpdateSubArtifact(c.Request.Context(), id, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(sub))
}

// DeleteSubArtifact 删除子制品.
//
//	@Summary	删除子制品
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"子制品ID"
//	@Success	200	{object}	types.Response	"已删除"
//	@Failure	404	{object}	types.Response	"子制品不存在"
//	@Router		/api/tmf/subartifacts/{id} [delete]
func DeleteSubArtifact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	if err := svc.DeleteSubArtifact(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"deleted": id}))
}
