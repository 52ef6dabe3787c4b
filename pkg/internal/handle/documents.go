package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	"github.com/yeisme/tmfvault/pkg/middleware"
)

// UploadDocument 上传文档文件及其元数据.
//
//	@Summary	上传文档
//	@Description	multipart 表单：file 为文件本体，metadata 为 JSON 字段.
//	@Description	缺文件直接拒绝；对象写入失败不落库；元数据非法时清理已写对象.
//	@Tags		文档
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		userId		path		int		true	"上传者ID"
//	@Param		file		formData	file	true	"文档文件"
//	@Param		metadata	formData	string	true	"元数据 JSON"
//	@Success	201			{object}	types.Response	"文档信息"
//	@Failure	400			{object}	types.Response	"缺文件或元数据非法"
//	@Failure	502			{object}	types.Response	"对象存储不可用"
//	@Router		/api/tmf/documents/{userId} [post]
func UploadDocument(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.FailCode("NO_FILE", "file field is required"))
		return
	}

	rawMetadata := []byte(c.PostForm("metadata"))

	svc := service.NewDocumentService(c.Request.Context())

	doc, err := svc.Upload(c.Request.Context(), userID, rawMetadata, fileHeader)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.OK(doc))
}

// GetDocument 查询单个文档.
//
//	@Summary	查询文档
//	@Tags		文档
//	@Produce	json
//	@Param		id	path		string			true	"文档ID"
//	@Success	200	{object}	types.Response	"文档信息"
//	@Failure	404	{object}	types.Response	"文档不存在"
//	@Router		/api/tmf/documents/{id} [get]
func GetDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, types.FailCode("INVALID_ID", "invalid id"))
		return
	}

	svc := service.NewDocumentService(c.Request.Context())

	doc, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(doc))
}

// ListDocuments 分页查询文档列表.
//
//	@Summary	文档列表
//	@Description	支持按区域、章节、制品编号和状态过滤，引用名在读取时解析
//	@Tags		文档
//	@Produce	json
//	@Param		zoneNumber		query		string	false	"区域编号"
//	@Param		sectionNumber	query		string	false	"章节编号"
//	@Param		artifactNumber	query		string	false	"制品编号"
//	@Param		status			query		string	false	"状态"
//	@Param		page			query		int		false	"页码"
//	@Param		pageSize		query		int		false	"每页条数"
//	@Success	200				{object}	types.Response	"文档列表"
//	@Router		/api/tmf/documents [get]
func ListDocuments(c *gin.Context) {
	var q types.ListDocumentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewDocumentService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), &q)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(resp))
}

// UpdateDocument 更新文档元数据.
//
//	@Summary	更新文档元数据
//	@Description	版本号递增，文件本体不变
//	@Tags		文档
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string						true	"文档ID"
//	@Param		document	body		types.UpdateDocumentRequest	true	"更新字段"
//	@Success	200			{object}	types.Response				"更新后的文档"
//	@Failure	404			{object}	types.Response				"文档不存在"
//	@Router		/api/tmf/documents/{id} [put]
func UpdateDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, types.FailCode("INVALID_ID", "invalid id"))
		return
	}

	var req types.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewDocumentService(c.Request.Context())

	doc, err := svc.Update(c.Request.Context(), id, requestUserID(c), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(doc))
}

// DeleteDocument 删除文档记录并移除对象.
//
//	@Summary	删除文档
//	@Tags		文档
//	@Produce	json
//	@Param		id	path		string			true	"文档ID"
//	@Success	200	{object}	types.Response	"已删除"
//	@Failure	404	{object}	types.Response	"文档不存在"
//	@Router		/api/tmf/documents/{id} [delete]
func DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, types.FailCode("INVALID_ID", "invalid id"))
		return
	}

	svc := service.NewDocumentService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), id, requestUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"deleted": id}))
}

// requestUserID 取当前认证用户ID，鉴权关闭时为 0.
func requestUserID(c *gin.Context) uint {
	if u := middleware.CurrentUser(c); u != nil {
		return u.ID
	}

	return 0
}
