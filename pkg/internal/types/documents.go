package types

import "time"

// DocumentMetadata 上传时随 multipart 提交的 metadata JSON 字段.
type DocumentMetadata struct {
	Title             string `json:"title"             rule:"required,max=512"`
	ZoneNumber        string `json:"zoneNumber"        rule:"required,tmfnumber"`
	SectionNumber     string `json:"sectionNumber"     rule:"omitempty,tmfnumber"`
	ArtifactNumber    string `json:"artifactNumber"    rule:"omitempty,tmfnumber"`
	SubArtifactNumber string `json:"subArtifactNumber" rule:"omitempty,tmfnumber"`
	Status            string `json:"status"            rule:"omitempty,oneof=Draft 'In Review' Approved Effective Superseded Withdrawn Archived"`
	AccessLevel       string `json:"accessLevel"       rule:"omitempty,oneof=Public Restricted Confidential"`
}

// UpdateDocumentRequest 更新文档元数据请求，不改动文件本体.
type UpdateDocumentRequest struct {
	Title             string `json:"title"             rule:"omitempty,max=512"`
	ZoneNumber        string `json:"zoneNumber"        rule:"omitempty,tmfnumber"`
	SectionNumber     string `json:"sectionNumber"     rule:"omitempty,tmfnumber"`
	ArtifactNumber    string `json:"artifactNumber"    rule:"omitempty,tmfnumber"`
	SubArtifactNumber string `json:"subArtifactNumber" rule:"omitempty,tmfnumber"`
	Status            string `json:"status"            rule:"omitempty,oneof=Draft 'In Review' Approved Effective Superseded Withdrawn Archived"`
	AccessLevel       string `json:"accessLevel"       rule:"omitempty,oneof=Public Restricted Confidential"`
}

// ListDocumentsQuery 文档列表查询参数.
type ListDocumentsQuery struct {
	ZoneNumber     string `form:"zoneNumber"`
	SectionNumber  string `form:"sectionNumber"`
	ArtifactNumber string `form:"artifactNumber"`
	Status         string `form:"status"`
	Page           int    `form:"page"     rule:"omitempty,min=1"`
	PageSize       int    `form:"pageSize" rule:"omitempty,min=1,max=200"`
}

// DocumentInfo 文档响应项.
type DocumentInfo struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	ZoneNumber        string    `json:"zoneNumber"`
	SectionNumber     string    `json:"sectionNumber,omitempty"`
	ArtifactNumber    string    `json:"artifactNumber,omitempty"`
	SubArtifactNumber string    `json:"subArtifactNumber,omitempty"`
	Status            string    `json:"status"`
	AccessLevel       string    `json:"accessLevel"`
	Version           int       `json:"version"`
	FileName          string    `json:"fileName"`
	Size              int64     `json:"size"`
	ContentType       string    `json:"contentType"`
	ObjectKey         string    `json:"objectKey"`
	// 读取时解析的展示名，不做反规范化存储
	ZoneName           string    `json:"zoneName,omitempty"`
	SectionName        string    `json:"sectionName,omitempty"`
	ArtifactName       string    `json:"artifactName,omitempty"`
	SubArtifactName    string    `json:"subArtifactName,omitempty"`
	CreatedByName      string    `json:"createdByName,omitempty"`
	LastModifiedByName string    `json:"lastModifiedByName,omitempty"`
	CreatedBy          uint      `json:"createdBy"`
	LastModifiedBy     uint      `json:"lastModifiedBy"`
	Orphaned           bool      `json:"orphaned,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ListDocumentsResponse 文档列表响应.
type ListDocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageSize  int            `json:"pageSize"`
}
