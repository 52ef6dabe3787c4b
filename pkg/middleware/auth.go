package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/configs"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

type currentUserKey struct{}

// CurrentUserGinKey gin context 中的当前用户键.
const CurrentUserGinKey = "currentUser"

// AuthMiddleware 基于 Bearer JWT 的身份认证.
//   - 验证签名和有效期，载荷中的用户必须仍然存在
//   - 通过认证的请求刷新用户的 last_active
//   - 支持通过配置跳过某些路径（如 /metrics、/api/users/login）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.FailCode("UNAUTHORIZED", "missing bearer token"))

			return
		}

		// StorageMiddleware 已把存储管理器放进 request context
		userSvc := service.NewUserService(c.Request.Context())

		claims, err := userSvc.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.FailCode("UNAUTHORIZED", "invalid or expired token"))

			return
		}

		userID, err := claims.GetSubject()
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.FailCode("UNAUTHORIZED", "invalid token subject"))

			return
		}

		user, err := lookupUser(c, userSvc, userID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					types.FailCode("UNAUTHORIZED", "user no longer exists"))

				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError,
				types.Fail("internal error"))

			return
		}

		if err := userSvc.TouchLastActive(c.Request.Context(), user.ID); err != nil {
			nlog.Logger().Warn().Err(err).Uint("user_id", user.ID).Msg("refresh last_active failed")
		}

		c.Set(CurrentUserGinKey, user)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), currentUserKey{}, user))

		c.Next()
	}
}

// bearerToken 从 Authorization 头提取 Bearer 令牌.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// lookupUser 按令牌 subject 查询用户.
func lookupUser(c *gin.Context, svc *service.UserService, subject string) (*model.User, error) {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return nil, service.ErrNotFound
	}

	return svc.GetByID(c.Request.Context(), uint(id))
}

// CurrentUser 获取当前已认证用户，认证关闭或跳过时返回 nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(CurrentUserGinKey); ok {
		if u, ok2 := v.(*model.User); ok2 {
			return u
		}
	}

	if v := c.Request.Context().Value(currentUserKey{}); v != nil {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}

	return nil
}
