package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

// ListZones 分区列表.
//
//	@Summary	列出全部分区
//	@Tags		分类
//	@Produce	json
//	@Success	200	{object}	types.Response	"分区列表"
//	@Router		/api/tmf/zones [get]
func ListZones(c *gin.Context) {
	svc := service.NewTaxonomyService(c.Request.Context())

	zones, err := svc.ListZones(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(zones))
}

// GetZone 查询单个分区.
//
//	@Summary	查询分区
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"分区ID"
//	@Success	200	{object}	types.Response	"分区"
//	@Failure	404	{object}	types.Response	"分区不存在"
//	@Router		/api/tmf/zones/{id} [get]
func GetZone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	zone, err := svc.GetZone(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(zone))
}

// CreateZone 创建分区.
//
//	@Summary	创建分区
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		zone	body		types.CreateZoneRequest	true	"分区"
//	@Success	201		{object}	types.Response			"创建的分区"
//	@Failure	400		{object}	types.Response			"请求参数错误或编号已存在"
//	@Router		/api/tmf/zones [post]
func CreateZone(c *gin.Context) {
	var req types.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	zone, err := svc.CreateZone(c.Request.Context(), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.OK(zone))
}

// UpdateZone 更新分区.
//
//	@Summary	更新分区
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"分区ID"
//	@Param		zone	body		types.UpdateZoneRequest	true	"更新字段"
//	@Success	200		{object}	types.Response			"更新后的分区"
//	@Failure	404		{object}	types.Response			"分区不存在"
//	@Router		/api/tmf/zones/{id} [put]
func UpdateZone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	zone, err := svc.UpdateZone(c.Request.Context(), id, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(zone))
}

// DeleteZone 删除分区.
//
//	@Summary	删除分区
//	@Description	分区下仍有章节时拒绝删除
//	@Tags		分类
//	@Produce	json
//	@Param		id	path		int				true	"分区ID"
//	@Success	200	{object}	types.Response	"已删除"
//	@Failure	404	{object}	types.Response	"分区不存在"
//	@Failure	409	{object}	types.Response	"仍有子节点"
//	@Router		/api/tmf/zones/{id} [delete]
func DeleteZone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTaxonomyService(c.Request.Context())

	if err := svc.DeleteZone(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"deleted": id}))
}
