// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

// pathID 解析路径中的数字 ID 参数.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, types.FailCode("INVALID_ID", "invalid "+name))
		return 0, false
	}

	return uint(id), true
}

// serviceError 把服务层哨兵错误映射为 HTTP 状态码和统一响应.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, types.FailCode("NOT_FOUND", "resource not found"))
	case errors.Is(err, service.ErrParentNotFound):
		c.JSON(http.StatusNotFound, types.FailCode("PARENT_NOT_FOUND", "parent node not found"))
	case errors.Is(err, service.ErrDuplicateKey):
		c.JSON(http.StatusBadRequest, types.FailCode("DUPLICATE_KEY", "number already exists in this scope"))
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, types.FailCode("DUPLICATE_EMAIL", "email already registered"))
	case errors.Is(err, service.ErrHasChildren):
		c.JSON(http.StatusConflict, types.FailCode("HAS_CHILDREN", "node still has children"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, types.FailCode("INVALID_CREDENTIALS", "invalid credentials"))
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, types.FailCode("UNAUTHORIZED", "invalid or expired token"))
	case errors.Is(err, service.ErrInvalidMetadata):
		c.JSON(http.StatusBadRequest, types.FailCode("INVALID_METADATA", err.Error()))
	case errors.Is(err, service.ErrStorage):
		c.JSON(http.StatusBadGateway, types.FailCode("STORAGE_ERROR", "object storage unavailable"))
	default:
		nlog.Logger().Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, types.Fail("internal server error"))
	}
}

// badRequest 请求体或参数校验失败.
func badRequest(c *gin.Context, err error) {
	nlog.Logger().Warn().Err(err).Str("path", c.Request.URL.Path).Msg("invalid request")
	c.JSON(http.StatusBadRequest, types.FailCode("INVALID_REQUEST", err.Error()))
}
