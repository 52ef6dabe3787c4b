package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

// ListArtifacts 章节下的制品列表.
//
//	@Summary	列出章节下全部制品
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"章节ID"
//	@Success	200	{object}	types.Response	"制品列表"
//	@Failure	404	{object}	types.Response	"章节不存在"
//	@Router		/api/tmf/sections/{id}/artifacts [get]
func ListArtifacts(c *gin.Context) {
	sectionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	artifacts, err := svc.ListArtifacts(c.Request.Context(), sectionID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(artifacts))
}

// GetArtifact 查询单个制品.
//
//	@Summary	查询制品
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"制品ID"
//	@Success	200	{object}	types.Response	"制品"
//	@Failure	404	{object}	types.Response	"制品不存在"
//	@Router		/api/tmf/artifacts/{id} [get]
func GetArtifact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	artifact, err := svc.GetArtifact(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(artifact))
}

// CreateArtifact 在章节下创建制品.
//
//	@Summary	创建制品
//	@Description	编号在所属章节内唯一
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int							true	"章节ID"
//	@Param		artifact	body		types.CreateArtifactRequest	true	"制品"
//	@Success	201			{object}	types.Response				"创建的制品"
//	@Failure	404			{object}	types.Response				"父章节不存在"
//	@Failure	400			{object}	types.Response				"请求参数错误或编号已存在"
//	@Router		/api/tmf/sections/{id}/artifacts [post]
func CreateArtifact(c *gin.Context) {
	sectionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.CreateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	artifact, err := svc.CreateArtifact(c.Request.Context(), sectionID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.OK(artifact))
}

// UpdateArtifact 更新制品.
//
//	@Summary	更新制品
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int							true	"制品ID"
//	@Param		artifact	body		types.UpdateArtifactRequest	true	"更新字段"
//	@Success	200			{object}	types.Response				"更新后的制品"
//	@Failure	404			{object}	types.Response				"制品不存在"
//	@Router		/api/tmf/artifacts/{id} [put]
func UpdateArtifact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	artifact, err := svc.UpdateArtifact(c.Request.Context(), id, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(artifact))
}

// DeleteArtifact 删除制品.
//
//	@Summary	删除制品
//	@Description	制品下仍有子制品时拒绝删除
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"制品ID"
//	@Success	200	{object}	types.Response	"已删除"
//	@Failure	404	{object}	types.Response	"制品不存在"
//	@Failure	409	{object}	types.Response	"仍有子节点"
//	@Router		/api/tmf/artifacts/{id} [delete]
func DeleteArtifact(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	if err := svc.DeleteArtifact(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"deleted": id}))
}
