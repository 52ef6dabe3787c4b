package queue

import "time"

// DocumentStoredEvent 文档入库事件载荷.
type DocumentStoredEvent struct {
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	ZoneNumber string    `json:"zone_number"`
	ObjectKey  string    `json:"object_key"`
	Size       int64     `json:"size"`
	UploadedBy uint      `json:"uploaded_by"`
	StoredAt   time.Time `json:"stored_at"`
}

// DocumentDeletedEvent 文档删除事件载荷.
type DocumentDeletedEvent struct {
	DocumentID string    `json:"document_id"`
	ObjectKey  string    `json:"object_key"`
	DeletedBy  uint      `json:"deleted_by"`
	DeletedAt  time.Time `json:"deleted_at"`
}

// TaxonomyImportedEvent 分类结构导入事件载荷.
type TaxonomyImportedEvent struct {
	SnapshotVersion string    `json:"snapshot_version"`
	Created         int       `json:"created"`
	Updated         int       `json:"updated"`
	Failed          int       `json:"failed"`
	ImportedAt      time.Time `json:"imported_at"`
}
