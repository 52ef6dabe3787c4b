package model

import "time"

// StructureSnapshot 导入时保存的原始分类结构快照.
// Version 为导入时生成的 ULID，按字典序即时间序.
type StructureSnapshot struct {
	ID      uint   `gorm:"primaryKey"          json:"id"`
	Version string `gorm:"size:26;uniqueIndex" json:"version"`
	// RawJSON 导入文件的原始内容，便于审计和回放
	RawJSON string `gorm:"type:text" json:"raw_json"`
	Source  string `gorm:"size:512"  json:"source"`

	CreatedAt time.Time `json:"created_at"`
}

// AllModels 返回需要迁移的全部模型，供 AutoMigrate 使用.
func AllModels() []any {
	return []any{
		&User{},
		&Zone{},
		&Section{},
		&Artifact{},
		&SubArtifact{},
		&Document{},
		&StructureSnapshot{},
	}
}
