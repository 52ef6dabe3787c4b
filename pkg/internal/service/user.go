package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeisme/tmfvault/pkg/configs"
	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/internal/storage/kv"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

// revokedTokenKeyPrefix 已注销令牌在 KV 中的键前缀.
const revokedTokenKeyPrefix = "tmf:auth:revoked:"

// UserService 负责用户注册、登录和令牌签发，不处理 HTTP 细节.
type UserService struct {
	dbClient *db.Client
	kvClient *kv.Client
	authCfg  configs.AuthConfig
}

// NewUserService 从 context 获取依赖实例.
func NewUserService(c context.Context) *UserService {
	dbc := ctxPkg.GetDBClient(c)

	// 为了安全起见，应该直接 panic 而不是返回 nil，依赖此服务就不需要再检查
	if dbc == nil || dbc.DB == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &UserService{
		dbClient: dbc,
		kvClient: ctxPkg.GetKVClient(c),
		authCfg:  configs.GetConfig().Auth,
	}
}

// Claims JWT 载荷.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Register 注册新用户，邮箱唯一. 注册成功即签发 JWT，无需再登录一次.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisterResponse, error) {
	var count int64
	if err := s.dbClient.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost())
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hash),
		Role:       "member",
		LastActive: time.Now(),
	}

	if err := s.dbClient.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}

		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &types.RegisterResponse{Token: token, User: toUserInfo(&user)}, nil
}

// Login 校验凭证并签发 JWT. 用户不存在与密码错误返回同一错误，避免枚举.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	var user model.User
	if err := s.dbClient.WithContext(ctx).
		Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := time.Now()
	if err := s.dbClient.WithContext(ctx).Model(&user).
		Update("last_active", now).Error; err != nil {
		nlog.Logger().Warn().Err(err).Uint("user_id", user.ID).Msg("refresh last_active failed")
	}

	user.LastActive = now

	return &types.LoginResponse{Token: token, User: toUserInfo(&user)}, nil
}

// IssueToken 签发 HS256 JWT，subject 为用户ID.
func (s *UserService) IssueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.authCfg.GetTokenTTL())),
			Issuer:    "tmfvault",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.authCfg.Secret))
}

// VerifyToken 验证 JWT 并返回载荷. 已注销的令牌视同无效.
func (s *UserService) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(s.authCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if s.kvClient != nil {
		if ok, err := s.kvClient.Exists(ctx, revokedTokenKey(tokenString)); err == nil && ok {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

// RevokeToken 注销令牌. 在 KV 中登记到令牌自然过期为止，之后验证一律拒绝.
// 未配置 KV 时只能依赖客户端丢弃令牌.
func (s *UserService) RevokeToken(ctx context.Context, tokenString string) error {
	claims, err := s.VerifyToken(ctx, tokenString)
	if err != nil {
		return err
	}

	if s.kvClient == nil {
		nlog.Logger().Warn().Msg("kv store not configured, token revocation is client-side only")
		return nil
	}

	ttl := s.authCfg.GetTokenTTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}

	if ttl <= 0 {
		return nil
	}

	if err := s.kvClient.Set(ctx, revokedTokenKey(tokenString), []byte("1"), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

// GetByID 按ID查询用户.
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.dbClient.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// UpdateProfile 更新用户名、邮箱或密码，只更新提交的字段.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, req *types.UpdateProfileRequest) (*types.UserInfo, error) {
	var user model.User
	if err := s.dbClient.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err, "query user")
	}

	updates := map[string]any{}

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Email != "" && req.Email != user.Email {
		var count int64
		if err := s.dbClient.WithContext(ctx).Model(&model.User{}).
			Where("email = ? AND id <> ?", req.Email, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}

		if count > 0 {
			return nil, ErrDuplicateEmail
		}

		updates["email"] = req.Email
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost())
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}

		updates["password"] = string(hash)
	}

	if len(updates) > 0 {
		if err := s.dbClient.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateEmail
			}

			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	info := toUserInfo(&user)

	return &info, nil
}

// TouchLastActive 刷新用户活跃时间.
func (s *UserService) TouchLastActive(ctx context.Context, id uint) error {
	return s.dbClient.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).Update("last_active", time.Now()).Error
}

// ListUsers 返回全部用户的公开信息.
func (s *UserService) ListUsers(ctx context.Context) ([]types.UserListItem, error) {
	var users []model.User
	if err := s.dbClient.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]types.UserListItem, 0, len(users))
	for i := range users {
		u := &users[i]
		items = append(items, types.UserListItem{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			LastActive: formatLastActive(u.LastActive),
		})
	}

	return items, nil
}

// formatLastActive 格式化活跃时间，从未活跃显示 "Never".
func formatLastActive(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}

	return t.Format("Jan 2, 2006")
}

// bcryptCost 返回配置的 bcrypt 代价，越界时回落默认值.
func (s *UserService) bcryptCost() int {
	cost := s.authCfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return configs.DefaultBcryptCost
	}

	return cost
}

// revokedTokenKey 令牌注销标记的 KV 键，存哈希避免明文令牌落入 KV.
func revokedTokenKey(tokenString string) string {
	return fmt.Sprintf("%s%x", revokedTokenKeyPrefix, xxhash.Sum64String(tokenString))
}

// toUserInfo 转换为对外用户信息.
func toUserInfo(u *model.User) types.UserInfo {
	return types.UserInfo{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		LastActive: u.LastActive,
		CreatedAt:  u.CreatedAt,
	}
}
