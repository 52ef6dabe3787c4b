package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	Document DocumentEventsConfig `mapstructure:"document"`
	Taxonomy TaxonomyEventsConfig `mapstructure:"taxonomy"`
}

// DocumentEventsConfig 针对文档领域的事件开关。
type DocumentEventsConfig struct {
	Stored  bool `mapstructure:"stored"`
	Deleted bool `mapstructure:"deleted"`
}

// TaxonomyEventsConfig 针对分类结构领域的事件开关。
type TaxonomyEventsConfig struct {
	Imported bool `mapstructure:"imported"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统（MQ 未启用时发布为空操作）
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.document.stored", true)
	v.SetDefault("events.document.deleted", true)
	v.SetDefault("events.taxonomy.imported", true)
}
