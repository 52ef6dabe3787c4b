package model

import (
	"time"

	"gorm.io/gorm"
)

// Document 状态机取值.
const (
	StatusDraft      = "Draft"
	StatusInReview   = "In Review"
	StatusApproved   = "Approved"
	StatusEffective  = "Effective"
	StatusSuperseded = "Superseded"
	StatusWithdrawn  = "Withdrawn"
	StatusArchived   = "Archived"
)

// Document 访问级别取值.
const (
	AccessPublic       = "Public"
	AccessRestricted   = "Restricted"
	AccessConfidential = "Confidential"
)

// DocumentStatuses 全部合法状态.
var DocumentStatuses = []string{
	StatusDraft, StatusInReview, StatusApproved, StatusEffective,
	StatusSuperseded, StatusWithdrawn, StatusArchived,
}

// AccessLevels 全部合法访问级别.
var AccessLevels = []string{AccessPublic, AccessRestricted, AccessConfidential}

// Document 文档元数据. 分类编号是对分类节点的软引用：
// 节点被删除后引用保留，由对账任务标记悬空.
type Document struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Title string `gorm:"size:512;not null"  json:"title"`

	// 分类定位（按编号引用，非外键）
	ZoneNumber        string `gorm:"size:32;index" json:"zoneNumber"`
	SectionNumber     string `gorm:"size:32;index" json:"sectionNumber"`
	ArtifactNumber    string `gorm:"size:32;index" json:"artifactNumber"`
	SubArtifactNumber string `gorm:"size:32;index" json:"subArtifactNumber"`

	Status      string `gorm:"size:32;default:Draft;index"    json:"status"`
	AccessLevel string `gorm:"size:32;default:Restricted"     json:"accessLevel"`
	Version     int    `gorm:"default:1"                      json:"version"`

	// 对象存储定位与实际写入结果
	Bucket      string `gorm:"size:255"           json:"bucket"`
	ObjectKey   string `gorm:"size:1024;index"    json:"objectKey"`
	FileName    string `gorm:"size:512"           json:"fileName"`
	Size        int64  `json:"size"`
	ContentType string `gorm:"size:255"           json:"contentType"`

	// 审计
	CreatedBy      uint `gorm:"index" json:"createdBy"`
	LastModifiedBy uint `json:"lastModifiedBy"`
	// Orphaned 由对账任务维护：引用的分类节点不存在时置位
	Orphaned bool `gorm:"default:false;index" json:"orphaned"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidStatus 判断状态取值是否合法.
func ValidStatus(s string) bool {
	for _, v := range DocumentStatuses {
		if v == s {
			return true
		}
	}

	return false
}

// ValidAccessLevel 判断访问级别取值是否合法.
func ValidAccessLevel(s string) bool {
	for _, v := range AccessLevels {
		if v == s {
			return true
		}
	}

	return false
}
