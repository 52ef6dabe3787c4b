package configs

import (
	"time"

	"github.com/spf13/viper"
)

// JobsConfig 后台定时任务配置.
type JobsConfig struct {
	ReconcileEnabled  bool          `mapstructure:"reconcile_enabled"`  // 是否启用文档引用对账任务
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"` // 对账执行间隔
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.reconcile_enabled", true)
	v.SetDefault("jobs.reconcile_interval", "1h")
}
