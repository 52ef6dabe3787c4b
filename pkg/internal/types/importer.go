package types

// TMFStructureFile 导入文件的顶层结构，对应分类结构 JSON.
type TMFStructureFile struct {
	Zones []ZoneImport `json:"zones" rule:"required,dive"`
}

// ZoneImport 导入文件中的分区节点.
type ZoneImport struct {
	ZoneNumber  string          `json:"zoneNumber"  rule:"required"`
	ZoneName    string          `json:"zoneName"    rule:"required"`
	Description string          `json:"description"`
	Sections    []SectionImport `json:"sections"    rule:"dive"`
}

// SectionImport 导入文件中的章节节点.
type SectionImport struct {
	SectionNumber string           `json:"sectionNumber" rule:"required"`
	SectionName   string           `json:"sectionName"   rule:"required"`
	Description   string           `json:"description"`
	Artifacts     []ArtifactImport `json:"artifacts"     rule:"dive"`
}

// ArtifactImport 导入文件中的制品节点.
type ArtifactImport struct {
	ArtifactNumber string              `json:"artifactNumber" rule:"required"`
	ArtifactName   string              `json:"artifactName"   rule:"required"`
	Description    string              `json:"description"`
	SubArtifacts   []SubArtifactImport `json:"subArtifacts"   rule:"dive"`
}

// SubArtifactImport 导入文件中的子制品节点.
type SubArtifactImport struct {
	SubArtifactNumber string   `json:"subArtifactNumber" rule:"required"`
	SubArtifactName   string   `json:"subArtifactName"   rule:"required"`
	Description       string   `json:"description"`
	Placeholders      []string `json:"placeholders"`
	Lifecycle         string   `json:"lifecycle"`
}

// ImportError 单个节点的导入失败记录.
type ImportError struct {
	Level  string `json:"level"` // zone/section/artifact/subartifact
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// LevelCounts 单个层级的创建/更新计数.
type LevelCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportResult 导入结果汇总，失败节点不中断整体导入.
type ImportResult struct {
	SnapshotVersion string        `json:"snapshotVersion"`
	Zones           LevelCounts   `json:"zones"`
	Sections        LevelCounts   `json:"sections"`
	Artifacts       LevelCounts   `json:"artifacts"`
	SubArtifacts    LevelCounts   `json:"subArtifacts"`
	Created         int           `json:"created"`
	Updated         int           `json:"updated"`
	Failed          int           `json:"failed"`
	Errors          []ImportError `json:"errors,omitempty"`
}

// levelCounts 按层级名取对应计数器.
func (r *ImportResult) levelCounts(level string) *LevelCounts {
	switch level {
	case "zone":
		return &r.Zones
	case "section":
		return &r.Sections
	case "artifact":
		return &r.Artifacts
	default:
		return &r.SubArtifacts
	}
}

// CountCreated 记录一个新建节点.
func (r *ImportResult) CountCreated(level string) {
	r.Created++
	r.levelCounts(level).Created++
}

// CountUpdated 记录一个更新节点.
func (r *ImportResult) CountUpdated(level string) {
	r.Updated++
	r.levelCounts(level).Updated++
}
