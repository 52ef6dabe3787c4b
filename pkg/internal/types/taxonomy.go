package types

// CreateZoneRequest 创建分区请求.
type CreateZoneRequest struct {
	ZoneNumber  string `json:"zoneNumber"  rule:"required,tmfnumber"`
	ZoneName    string `json:"zoneName"    rule:"required,max=255"`
	Description string `json:"description" rule:"max=4096"`
}

// UpdateZoneRequest 更新分区请求，编号不可变.
type UpdateZoneRequest struct {
	ZoneName    string `json:"zoneName"    rule:"omitempty,max=255"`
	Description string `json:"description" rule:"max=4096"`
}

// CreateSectionRequest 创建章节请求.
type CreateSectionRequest struct {
	SectionNumber string `json:"sectionNumber" rule:"required,tmfnumber"`
	SectionName   string `json:"sectionName"   rule:"required,max=255"`
	Description   string `json:"description"   rule:"max=4096"`
}

// UpdateSectionRequest 更新章节请求.
type UpdateSectionRequest struct {
	SectionName string `json:"sectionName" rule:"omitempty,max=255"`
	Description string `json:"description" rule:"max=4096"`
}

// CreateArtifactRequest 创建制品请求.
type CreateArtifactRequest struct {
	ArtifactNumber string `json:"artifactNumber" rule:"required,tmfnumber"`
	ArtifactName   string `json:"artifactName"   rule:"required,max=255"`
	Description    string `json:"description"    rule:"max=4096"`
}

// UpdateArtifactRequest 更新制品请求.
type UpdateArtifactRequest struct {
	ArtifactName string `json:"artifactName" rule:"omitempty,max=255"`
	Description  string `json:"description"  rule:"max=4096"`
}

// CreateSubArtifactRequest 创建子制品请求.
type CreateSubArtifactRequest struct {
	SubArtifactNumber string   `json:"subArtifactNumber" rule:"required,tmfnumber"`
	SubArtifactName   string   `json:"subArtifactName"   rule:"required,max=255"`
	Description       string   `json:"description"       rule:"max=4096"`
	Placeholders      []string `json:"placeholders"      rule:"dive,max=512"`
	Lifecycle         string   `json:"lifecycle"         rule:"omitempty,oneof=Draft Review Approved Archived"`
}

// UpdateSubArtifactRequest 更新子制品请求.
type UpdateSubArtifactRequest struct {
	SubArtifactName string   `json:"subArtifactName" rule:"omitempty,max=255"`
	Description     string   `json:"description"     rule:"max=4096"`
	Placeholders    []string `json:"placeholders"    rule:"dive,max=512"`
	Lifecycle       string   `json:"lifecycle"       rule:"omitempty,oneof=Draft Review Approved Archived"`
}

// StructureTree 完整分类结构树，供只读查询和缓存.
type StructureTree struct {
	Version string     `json:"version,omitempty"` // 最近一次导入快照版本
	Zones   []ZoneNode `json:"zones"`
}

// ZoneNode 树形结构的分区节点.
type ZoneNode struct {
	ZoneNumber  string        `json:"zoneNumber"`
	ZoneName    string        `json:"zoneName"`
	Description string        `json:"description,omitempty"`
	Sections    []SectionNode `json:"sections"`
}

// SectionNode 树形结构的章节节点.
type SectionNode struct {
	SectionNumber string         `json:"sectionNumber"`
	SectionName   string         `json:"sectionName"`
	Description   string         `json:"description,omitempty"`
	Artifacts     []ArtifactNode `json:"artifacts"`
}

// ArtifactNode 树形结构的制品节点.
type ArtifactNode struct {
	ArtifactNumber string            `json:"artifactNumber"`
	ArtifactName   string            `json:"artifactName"`
	Description    string            `json:"description,omitempty"`
	SubArtifacts   []SubArtifactNode `json:"subArtifacts"`
}

// SubArtifactNode 树形结构的子制品节点.
type SubArtifactNode struct {
	SubArtifactNumber string   `json:"subArtifactNumber"`
	SubArtifactName   string   `json:"subArtifactName"`
	Description       string   `json:"description,omitempty"`
	Placeholders      []string `json:"placeholders,omitempty"`
	Lifecycle         string   `json:"lifecycle,omitempty"`
}
