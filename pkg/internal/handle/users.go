package handle

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	"github.com/yeisme/tmfvault/pkg/middleware"
)

// RegisterUser 用户注册.
//
//	@Summary		注册新用户
//	@Description	创建新用户并签发 JWT，邮箱全局唯一，密码以 bcrypt 哈希存储
//	@Tags			用户
//	@Accept			json
//	@Produce		json
//	@Param			user	body		types.RegisterRequest	true	"注册请求"
//	@Success		201		{object}	types.Response			"令牌与用户信息"
//	@Failure		400		{object}	types.Response			"请求参数错误或邮箱已存在"
//	@Router			/api/users/register [post]
func RegisterUser(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.Register(c.Request.Context(), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.OK(resp))
}

// LoginUser 用户登录.
//
//	@Summary		用户登录
//	@Description	校验邮箱密码并签发 JWT，凭证错误时不区分用户不存在和密码错误
//	@Tags			用户
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		types.LoginRequest	true	"登录请求"
//	@Success		200			{object}	types.Response		"令牌与用户信息"
//	@Failure		400			{object}	types.Response		"请求参数错误"
//	@Failure		401			{object}	types.Response		"凭证无效"
//	@Router			/api/users/login [post]
func LoginUser(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.Login(c.Request.Context(), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(resp))
}

// GetProfile 当前用户信息.
//
//	@Summary		查询当前用户
//	@Description	返回令牌对应的用户信息
//	@Tags			用户
//	@Produce		json
//	@Success		200	{object}	types.Response	"用户信息"
//	@Failure		401	{object}	types.Response	"未认证"
//	@Router			/api/users/profile [get]
func GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, types.FailCode("UNAUTHORIZED", "authentication required"))
		return
	}

	c.JSON(http.StatusOK, types.OK(types.UserInfo{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		LastActive: user.LastActive,
		CreatedAt:  user.CreatedAt,
	}))
}

// LogoutUser 注销当前令牌.
//
//	@Summary		用户登出
//	@Description	把当前令牌登记为已注销，到自然过期为止拒绝验证
//	@Tags			用户
//	@Produce		json
//	@Success		200	{object}	types.Response	"已登出"
//	@Failure		401	{object}	types.Response	"令牌无效"
//	@Router			/api/users/logout [post]
func LogoutUser(c *gin.Context) {
	token := bearerTokenHeader(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, types.FailCode("UNAUTHORIZED", "missing bearer token"))
		return
	}

	svc := service.NewUserService(c.Request.Context())

	if err := svc.RevokeToken(c.Request.Context(), token); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(gin.H{"logged_out": true}))
}

// UpdateProfile 更新当前用户信息.
//
//	@Summary		更新当前用户
//	@Description	更新用户名、邮箱或密码，只更新提交的字段
//	@Tags			用户
//	@Accept			json
//	@Produce		json
//	@Param			profile	body		types.UpdateProfileRequest	true	"更新字段"
//	@Success		200		{object}	types.Response				"更新后的用户信息"
//	@Failure		401		{object}	types.Response				"未认证"
//	@Router			/api/users/profile [put]
func UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, types.FailCode("UNAUTHORIZED", "authentication required"))
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc := service.NewUserService(c.Request.Context())

	info, err := svc.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(info))
}

// bearerTokenHeader 从 Authorization 头提取 Bearer 令牌.
func bearerTokenHeader(c *gin.Context) string {
	const prefix = "Bearer "

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// ListUsers 列出全部用户.
//
//	@Summary		用户列表
//	@Description	返回全部用户的公开信息
//	@Tags			用户
//	@Produce		json
//	@Success		200	{object}	types.Response	"用户列表"
//	@Router			/api/users/get-all-users [get]
func ListUsers(c *gin.Context) {
	svc := service.NewUserService(c.Request.Context())

	users, err := svc.ListUsers(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(users))
}
