package model

import (
	"time"
)

// 分类层级：Zone → Section → Artifact → SubArtifact.
// 每一级的编号在其父节点范围内唯一，Zone 编号全局唯一.
// 分类节点是引用数据，删除是物理删除：软删除的残留行会占住唯一索引，
// 使同编号节点无法重建.

// Zone 顶层分区.
type Zone struct {
	ID          uint   `gorm:"primaryKey"            json:"id"`
	ZoneNumber  string `gorm:"size:32;uniqueIndex"   json:"zoneNumber"`
	ZoneName    string `gorm:"size:255;not null"     json:"zoneName"`
	Description string `gorm:"type:text"             json:"description"`

	Sections []Section `gorm:"constraint:OnDelete:RESTRICT" json:"sections,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section 分区下的章节，编号在所属 Zone 内唯一.
type Section struct {
	ID            uint   `gorm:"primaryKey"                               json:"id"`
	SectionNumber string `gorm:"size:32;index:idx_section_zone,unique"    json:"sectionNumber"`
	ZoneID        uint   `gorm:"index:idx_section_zone,unique;not null"   json:"zoneId"`
	SectionName   string `gorm:"size:255;not null"                        json:"sectionName"`
	Description   string `gorm:"type:text"                                json:"description"`

	Artifacts []Artifact `gorm:"constraint:OnDelete:RESTRICT" json:"artifacts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artifact 章节下的制品，编号在所属 Section 内唯一.
type Artifact struct {
	ID             uint   `gorm:"primaryKey"                                 json:"id"`
	ArtifactNumber string `gorm:"size:32;index:idx_artifact_section,unique"  json:"artifactNumber"`
	SectionID      uint   `gorm:"index:idx_artifact_section,unique;not null" json:"sectionId"`
	ArtifactName   string `gorm:"size:255;not null"                          json:"artifactName"`
	Description    string `gorm:"type:text"                                  json:"description"`

	SubArtifacts []SubArtifact `gorm:"constraint:OnDelete:RESTRICT" json:"subArtifacts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubArtifact 生命周期阶段.
const (
	LifecycleDraft    = "Draft"
	LifecycleReview   = "Review"
	LifecycleApproved = "Approved"
	LifecycleArchived = "Archived"
)

// SubArtifact 制品下的子制品，编号在所属 Artifact 内唯一.
type SubArtifact struct {
	ID                uint   `gorm:"primaryKey"                                      json:"id"`
	SubArtifactNumber string `gorm:"size:32;index:idx_subartifact_artifact,unique"   json:"subArtifactNumber"`
	ArtifactID        uint   `gorm:"index:idx_subartifact_artifact,unique;not null"  json:"artifactId"`
	SubArtifactName   string `gorm:"size:255;not null"                               json:"subArtifactName"`
	Description       string `gorm:"type:text"                                       json:"description"`
	// PlaceholdersJSON 以 JSON 数组字符串存储占位文档名
	PlaceholdersJSON string `gorm:"type:text"                 json:"placeholders_json"`
	Lifecycle        string `gorm:"size:32;default:Draft"     json:"lifecycle"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
