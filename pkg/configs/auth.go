package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultTokenTTLHours = 24 * 30 // 令牌有效期，默认30天
	DefaultBcryptCost    = 12      // bcrypt 哈希成本
)

// AuthConfig 身份认证配置：JWT 签名密钥与令牌生命周期.
// Secret 为空且认证开启时视为致命的启动错误，由 app 层检查.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`         // 开启认证校验
	Secret        string   `mapstructure:"secret"`          // JWT 签名密钥（HS256）
	TokenTTLHours int      `mapstructure:"token_ttl_hours"` // 令牌有效期（小时）
	BcryptCost    int      `mapstructure:"bcrypt_cost"`     // 密码哈希成本
	SkipPaths     []string `mapstructure:"skip_paths"`      // 跳过认证的路径前缀（如 /metrics、/api/v1/health）
}

// GetTokenTTL 返回令牌有效期作为 time.Duration.
func (c *AuthConfig) GetTokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl_hours", DefaultTokenTTLHours)
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
		"/api/users/register",
		"/api/users/login",
	})
}
