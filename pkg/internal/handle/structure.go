package handle

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/importer"
	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

// GetStructure 返回完整分类结构树.
//
//	@Summary	完整结构树
//	@Description	四级分类的嵌套 JSON，带内容哈希 ETag，支持 If-None-Match
//	@Tags		分类
//	@Produce	json
//	@Success	200	{object}	types.StructureTree	"结构树"
//	@Success	304	"内容未变化"
//	@Router		/api/tmf/structure [get]
func GetStructure(c *gin.Context) {
	svc := service.NewStructureService(c.Request.Context())

	data, etag, err := svc.GetTree(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	c.Header("ETag", etag)

	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ImportStructure 导入分类结构定义.
//
//	@Summary	导入结构定义
//	@Description	幂等导入：已存在的节点更新名称描述，缺失的创建；
//	@Description	单节点失败跳过其子树但不中断整体，明细在结果中返回
//	@Tags		分类
//	@Accept		json
//	@Produce	json
//	@Param		structure	body		types.TMFStructureFile	true	"结构定义 JSON"
//	@Success	200			{object}	types.Response			"导入结果"
//	@Failure	400			{object}	types.Response			"JSON 非法"
//	@Router		/api/tmf/structure/import [post]
func ImportStructure(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, types.FailCode("INVALID_REQUEST", "request body is required"))
		return
	}

	im := importer.New(c.Request.Context())

	result, err := im.ImportJSON(c.Request.Context(), raw, "api")
	if err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(result))
}
