package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

// ListSections 分区下的章节列表.
//
//	@Summary	列出分区下全部章节
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"分区ID"
//	@Success	200	{object}	types.Response	"章节列表"
//	@Failure	404	{object}	types.Response	"分区不存在"
//	@Router		/api/tmf/zones/{id}/sections [get]
func ListSections(c *gin.Context) {
	zoneID, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	sections, err := svc.ListSections(c.Request.Context(), zoneID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(sections))
}

// GetSection 查询单个章节.
//
//	@Summary	查询章节
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"章节ID"
//	@Success	200	{object}	types.Response	"章节"
//	@Failure	404	{object}	types.Response	"章节不存在"
//	@Router		/api/tmf/sections/{id} [get]
func GetSection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	section, err := svc.GetSection(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(section))
}

// CreateSection 在分区下创建章节.
//
//	@Summary	创建章节
//	@Description	编号在所属分区内唯一
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"分区ID"
//	@Param		section	body		types.CreateSectionRequest	true	"章节"
//	@Success	201		{object}	types.Response				"创建的章节"
//	@Failure	404		{object}	types.Response				"父分区不存在"
//	@Failure	400		{object}	types.Response				"请求参数错误或编号已存在"
//	@Router		/api/tmf/zones/{id}/sections [post]
func CreateSection(c *gin.Context) {
	zoneID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	section, err := svc.CreateSection(c.Request.Context(), zoneID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.OK(section))
}

// UpdateSection 更新章节.
//
//	@Summary	更新章节
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"章节ID"
//	@Param		section	body		types.UpdateSectionRequest	true	"更新字段"
//	@Success	200		{object}	types.Response				"更新后的章节"
//	@Failure	404		{object}	types.Response				"章节不存在"
//	@Router		/api/tmf/sections/{id} [put]
func UpdateSection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	section, err := svc.UpdateSection(c.Request.Context(), id, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(section))
}

// DeleteSection 删除章节.
//
//	@Summary	删除章节
//	@Description	章节下仍有制品时拒绝删除
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"章节ID"
//	@Success	200	{object}	types.Response	"已删除"
//	@Failure	404	{object}	types.Response	"章节不存在"
//	@Failure	409	{object}	types.Response	"仍有子节点"
//	@Router		/api/tmf/sections/{id} [delete]
func DeleteSection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	if err := svc.DeleteSection(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"deleted": id}))
}
