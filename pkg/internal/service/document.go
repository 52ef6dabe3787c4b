package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/internal/storage/mq"
	"github.com/yeisme/tmfvault/pkg/internal/storage/s3"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	nlog "github.com/yeisme/tmfvault/pkg/log"
	"github.com/yeisme/tmfvault/pkg/metrics"
	"github.com/yeisme/tmfvault/pkg/queue"
	"github.com/yeisme/tmfvault/pkg/rule"
)

const (
	defaultPageSize  = 50
	fallbackMIMEType = "application/octet-stream"
)

// DocumentService 负责文档上传、元数据管理和对象存储协调.
// 写入次序固定：先写对象存储，成功后才写数据库记录.
type DocumentService struct {
	dbClient *db.Client
	s3Client *s3.Client
	mqClient *mq.Client
}

// NewDocumentService 从 context 获取依赖实例.
func NewDocumentService(c context.Context) *DocumentService {
	dbc := ctxPkg.GetDBClient(c)
	s3c := ctxPkg.GetS3Client(c)

	if dbc == nil || dbc.DB == nil || s3c == nil || s3c.Client == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &DocumentService{
		dbClient: dbc,
		s3Client: s3c,
		mqClient: ctxPkg.GetMQClient(c),
	}
}

// Upload 接收 multipart 文件和 metadata JSON 字段.
// 处理次序固定：对象写入 → 元数据解析校验 → 记录落库，
// 后一步失败时清理已写入的对象. 大小与内容类型以实际写入结果为准.
func (s *DocumentService) Upload(ctx context.Context, uploaderID uint, rawMetadata []byte, fileHeader *multipart.FileHeader) (*types.DocumentInfo, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer func() { _ = file.Close() }()

	docID := uuid.NewString()
	objectKey := buildObjectKey(uploaderID, docID, fileHeader.Filename)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = fallbackMIMEType
	}

	written, err := s.s3Client.PutDocument(ctx, objectKey, file, fileHeader.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store document: %w: %v", ErrStorage, err)
	}

	meta, err := parseMetadata(rawMetadata)
	if err != nil {
		s.removeObject(ctx, objectKey)
		return nil, err
	}

	status := meta.Status
	if status == "" {
		status = model.StatusDraft
	}

	accessLevel := meta.AccessLevel
	if accessLevel == "" {
		accessLevel = model.AccessRestricted
	}

	doc := model.Document{
		ID:                docID,
		Title:             meta.Title,
		ZoneNumber:        meta.ZoneNumber,
		SectionNumber:     meta.SectionNumber,
		ArtifactNumber:    meta.ArtifactNumber,
		SubArtifactNumber: meta.SubArtifactNumber,
		Status:            status,
		AccessLevel:       accessLevel,
		Version:           1,
		Bucket:            s.s3Client.Bucket(),
		ObjectKey:         objectKey,
		FileName:          fileHeader.Filename,
		Size:              written,
		ContentType:       contentType,
		CreatedBy:         uploaderID,
		LastModifiedBy:    uploaderID,
	}

	if err := s.dbClient.WithContext(ctx).Create(&doc).Error; err != nil {
		s.removeObject(ctx, objectKey)
		return nil, fmt.Errorf("create document record: %w", err)
	}

	metrics.DocumentsUploaded.Inc()

	_ = queue.Publish(ctx, s.mqClient, queue.TopicDocumentStored, queue.DocumentStoredEvent{
		DocumentID: doc.ID,
		Title:      doc.Title,
		ZoneNumber: doc.ZoneNumber,
		ObjectKey:  doc.ObjectKey,
		Size:       doc.Size,
		UploadedBy: uploaderID,
		StoredAt:   time.Now(),
	})

	info := toDocumentInfo(&doc)

	return &info, nil
}

// Get 按ID查询文档.
func (s *DocumentService) Get(ctx context.Context, id string) (*types.DocumentInfo, error) {
	var doc model.Document
	if err := s.dbClient.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "query document")
	}

	names := s.resolveNames(ctx, []model.Document{doc})

	info := toDocumentInfo(&doc)
	applyNames(&info, &doc, names)

	return &info, nil
}

// List 分页查询文档，支持按分类编号和状态过滤.
func (s *DocumentService) List(ctx context.Context, q *types.ListDocumentsQuery) (*types.ListDocumentsResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	tx := s.dbClient.WithContext(ctx).Model(&model.Document{})

	if q.ZoneNumber != "" {
		tx = tx.Where("zone_number = ?", q.ZoneNumber)
	}

	if q.SectionNumber != "" {
		tx = tx.Where("section_number = ?", q.SectionNumber)
	}

	if q.ArtifactNumber != "" {
		tx = tx.Where("artifact_number = ?", q.ArtifactNumber)
	}

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	var docs []model.Document
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	// 读取时解析引用的展示名，不做反规范化存储
	names := s.resolveNames(ctx, docs)

	infos := make([]types.DocumentInfo, 0, len(docs))

	for i := range docs {
		info := toDocumentInfo(&docs[i])
		applyNames(&info, &docs[i], names)
		infos = append(infos, info)
	}

	return &types.ListDocumentsResponse{
		Documents: infos,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// Update 更新文档元数据，版本号递增. 文件本体不变.
func (s *DocumentService) Update(ctx context.Context, id string, modifierID uint, req *types.UpdateDocumentRequest) (*types.DocumentInfo, error) {
	var doc model.Document
	if err := s.dbClient.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "query document")
	}

	updates := map[string]any{
		"last_modified_by": modifierID,
		"version":          doc.Version + 1,
	}

	if req.Title != "" {
		updates["title"] = req.Title
	}

	if req.ZoneNumber != "" {
		updates["zone_number"] = req.ZoneNumber
	}

	if req.SectionNumber != "" {
		updates["section_number"] = req.SectionNumber
	}

	if req.ArtifactNumber != "" {
		updates["artifact_number"] = req.ArtifactNumber
	}

	if req.SubArtifactNumber != "" {
		updates["sub_artifact_number"] = req.SubArtifactNumber
	}

	if req.Status != "" {
		updates["status"] = req.Status
	}

	if req.AccessLevel != "" {
		updates["access_level"] = req.AccessLevel
	}

	if err := s.dbClient.WithContext(ctx).Model(&doc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	info := toDocumentInfo(&doc)

	return &info, nil
}

// Delete 删除文档记录并移除对象. 对象删除失败不阻塞记录删除，只记日志.
func (s *DocumentService) Delete(ctx context.Context, id string, deleterID uint) error {
	var doc model.Document
	if err := s.dbClient.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return wrapNotFound(err, "query document")
	}

	if err := s.dbClient.WithContext(ctx).Delete(&doc).Error; err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}

	if doc.ObjectKey != "" {
		if err := s.s3Client.RemoveDocument(ctx, doc.ObjectKey); err != nil {
			nlog.Logger().Warn().Err(err).Str("object_key", doc.ObjectKey).
				Msg("remove stored object failed")
		}
	}

	_ = queue.Publish(ctx, s.mqClient, queue.TopicDocumentDeleted, queue.DocumentDeletedEvent{
		DocumentID: doc.ID,
		ObjectKey:  doc.ObjectKey,
		DeletedBy:  deleterID,
		DeletedAt:  time.Now(),
	})

	return nil
}

// refNames 文档引用解析出的展示名，键是各级编号或用户ID.
type refNames struct {
	zones        map[string]string
	sections     map[string]string
	artifacts    map[string]string
	subArtifacts map[string]string
	users        map[uint]string
}

// resolveNames 批量查出文档引用的各级分类名和用户名.
// 解析失败不阻塞返回，缺失的引用留空.
func (s *DocumentService) resolveNames(ctx context.Context, docs []model.Document) *refNames {
	names := &refNames{
		zones:        map[string]string{},
		sections:     map[string]string{},
		artifacts:    map[string]string{},
		subArtifacts: map[string]string{},
		users:        map[uint]string{},
	}

	s.lookupNames(ctx, names.zones, &model.Zone{}, "zone_number", "zone_name",
		collectNumbers(docs, func(d *model.Document) string { return d.ZoneNumber }))
	s.lookupNames(ctx, names.sections, &model.Section{}, "section_number", "section_name",
		collectNumbers(docs, func(d *model.Document) string { return d.SectionNumber }))
	s.lookupNames(ctx, names.artifacts, &model.Artifact{}, "artifact_number", "artifact_name",
		collectNumbers(docs, func(d *model.Document) string { return d.ArtifactNumber }))
	s.lookupNames(ctx, names.subArtifacts, &model.SubArtifact{}, "sub_artifact_number", "sub_artifact_name",
		collectNumbers(docs, func(d *model.Document) string { return d.SubArtifactNumber }))

	userIDs := make([]uint, 0, len(docs)*2)
	seen := make(map[uint]struct{}, len(docs)*2)

	for i := range docs {
		for _, id := range []uint{docs[i].CreatedBy, docs[i].LastModifiedBy} {
			if id == 0 {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				userIDs = append(userIDs, id)
			}
		}
	}

	if len(userIDs) > 0 {
		var users []model.User
		if err := s.dbClient.WithContext(ctx).
			Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			nlog.Logger().Warn().Err(err).Msg("resolve user names failed")
		}

		for i := range users {
			names.users[users[i].ID] = users[i].Name
		}
	}

	return names
}

// lookupNames 按编号列批量查询某一层级的展示名并写入 dst.
func (s *DocumentService) lookupNames(ctx context.Context, dst map[string]string, mdl any, numberCol, nameCol string, numbers []string) {
	if len(numbers) == 0 {
		return
	}

	var rows []struct {
		Number string
		Name   string
	}

	if err := s.dbClient.WithContext(ctx).Model(mdl).
		Select(numberCol + " AS number, " + nameCol + " AS name").
		Where(numberCol+" IN ?", numbers).Scan(&rows).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("column", numberCol).Msg("resolve reference names failed")
		return
	}

	for i := range rows {
		dst[rows[i].Number] = rows[i].Name
	}
}

// collectNumbers 收集去重后的非空编号.
func collectNumbers(docs []model.Document, pick func(*model.Document) string) []string {
	numbers := make([]string, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))

	for i := range docs {
		n := pick(&docs[i])
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			numbers = append(numbers, n)
		}
	}

	return numbers
}

// applyNames 把解析出的展示名写入响应项.
func applyNames(info *types.DocumentInfo, d *model.Document, names *refNames) {
	info.ZoneName = names.zones[d.ZoneNumber]
	info.SectionName = names.sections[d.SectionNumber]
	info.ArtifactName = names.artifacts[d.ArtifactNumber]
	info.SubArtifactName = names.subArtifacts[d.SubArtifactNumber]
	info.CreatedByName = names.users[d.CreatedBy]
	info.LastModifiedByName = names.users[d.LastModifiedBy]
}

// parseMetadata 解析并校验 metadata JSON 字段.
func parseMetadata(raw []byte) (*types.DocumentMetadata, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: metadata field missing", ErrInvalidMetadata)
	}

	var meta types.DocumentMetadata
	if err := sonic.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	if err := rule.ValidateStruct(&meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	return &meta, nil
}

// removeObject 回滚已写入的对象，失败只记日志.
func (s *DocumentService) removeObject(ctx context.Context, objectKey string) {
	if err := s.s3Client.RemoveDocument(ctx, objectKey); err != nil {
		nlog.Logger().Error().Err(err).Str("object_key", objectKey).
			Msg("cleanup orphan object failed")
	}
}

// buildObjectKey 生成对象键：上传者/年/月/文档ID/原始文件名.
func buildObjectKey(uploaderID uint, docID, fileName string) string {
	now := time.Now().UTC()
	return path.Join(
		fmt.Sprintf("%d", uploaderID),
		fmt.Sprintf("%04d/%02d", now.Year(), int(now.Month())),
		docID,
		fileName,
	)
}

// toDocumentInfo 转换为对外文档信息.
func toDocumentInfo(d *model.Document) types.DocumentInfo {
	return types.DocumentInfo{
		ID:                d.ID,
		Title:             d.Title,
		ZoneNumber:        d.ZoneNumber,
		SectionNumber:     d.SectionNumber,
		ArtifactNumber:    d.ArtifactNumber,
		SubArtifactNumber: d.SubArtifactNumber,
		Status:            d.Status,
		AccessLevel:       d.AccessLevel,
		Version:           d.Version,
		FileName:          d.FileName,
		Size:              d.Size,
		ContentType:       d.ContentType,
		ObjectKey:         d.ObjectKey,
		CreatedBy:         d.CreatedBy,
		LastModifiedBy:    d.LastModifiedBy,
		Orphaned:          d.Orphaned,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
