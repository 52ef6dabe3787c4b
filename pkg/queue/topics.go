// Package queue 定义领域事件主题与载荷，并提供统一的发布入口.
// 事件通过 watermill 发往 NATS，MQ 未启用时发布为空操作.
package queue

// 领域事件主题.
const (
	// TopicDocumentStored 文档成功写入对象存储并入库.
	TopicDocumentStored = "tmf.document.stored"
	// TopicDocumentDeleted 文档记录被删除.
	TopicDocumentDeleted = "tmf.document.deleted"
	// TopicTaxonomyImported 分类结构导入完成.
	TopicTaxonomyImported = "tmf.taxonomy.imported"
)
