package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/internal/storage/kv"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

// TaxonomyService 负责分类层级（Zone/Section/Artifact/SubArtifact）的增删改查.
// 删除不级联：存在子节点时拒绝.
type TaxonomyService struct {
	dbClient *db.Client
	kvClient *kv.Client
}

// NewTaxonomyService 从 context 获取依赖实例.
func NewTaxonomyService(c context.Context) *TaxonomyService {
	dbc := ctxPkg.GetDBClient(c)

	if dbc == nil || dbc.DB == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &TaxonomyService{
		dbClient: dbc,
		kvClient: ctxPkg.GetKVClient(c),
	}
}

// invalidateTree 写操作后使结构树缓存失效.
func (s *TaxonomyService) invalidateTree(ctx context.Context) {
	if s.kvClient == nil {
		return
	}

	if err := s.kvClient.Delete(ctx, StructureTreeCacheKey); err != nil {
		nlog.Logger().Warn().Err(err).Msg("invalidate structure tree cache failed")
	}
}

// ---- Zone ----

// ListZones 列出全部分区，按编号排序.
func (s *TaxonomyService) ListZones(ctx context.Context) ([]model.Zone, error) {
	var zones []model.Zone
	if err := s.dbClient.WithContext(ctx).Order("zone_number").Find(&zones).Error; err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}

	return zones, nil
}

// GetZone 按ID查询分区.
func (s *TaxonomyService) GetZone(ctx context.Context, id uint) (*model.Zone, error) {
	var zone model.Zone
	if err := s.dbClient.WithContext(ctx).First(&zone, id).Error; err != nil {
		return nil, wrapNotFound(err, "query zone")
	}

	return &zone, nil
}

// CreateZone 创建分区，编号全局唯一.
func (s *TaxonomyService) CreateZone(ctx context.Context, req *types.CreateZoneRequest) (*model.Zone, error) {
	zone := model.Zone{
		ZoneNumber:  req.ZoneNumber,
		ZoneName:    req.ZoneName,
		Description: req.Description,
	}

	var count int64
	if err := s.dbClient.WithContext(ctx).Model(&model.Zone{}).
		Where("zone_number = ?", req.ZoneNumber).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check zone number: %w", err)
	}

	if count > 0 {
		return nil, ErrDuplicateKey
	}

	if err := s.dbClient.WithContext(ctx).Create(&zone).Error; err != nil {
		return nil, wrapDuplicate(err, "create zone")
	}

	s.invalidateTree(ctx)

	return &zone, nil
}

// UpdateZone 更新分区名称和描述，编号不可变.
func (s *TaxonomyService) UpdateZone(ctx context.Context, id uint, req *types.UpdateZoneRequest) (*model.Zone, error) {
	zone, err := s.GetZone(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.ZoneName != "" {
		updates["zone_name"] = req.ZoneName
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if len(updates) > 0 {
		if err := s.dbClient.WithContext(ctx).Model(zone).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update zone: %w", err)
		}
	}

	s.invalidateTree(ctx)

	return zone, nil
}

// DeleteZone 删除分区. 仍有章节时返回 ErrHasChildren.
func (s *TaxonomyService) DeleteZone(ctx context.Context, id uint) error {
	zone, err := s.GetZone(ctx, id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.dbClient.WithContext(ctx).Model(&model.Section{}).
		Where("zone_id = ?", zone.ID).Count(&children).Error; err != nil {
		return fmt.Errorf("count sections: %w", err)
	}

	if children > 0 {
		return ErrHasChildren
	}

	if err := s.dbClient.WithContext(ctx).Delete(zone).Error; err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}

	s.invalidateTree(ctx)

	return nil
}

// ---- Section ----

// ListSections 列出某分区下全部章节.
func (s *TaxonomyService) ListSections(ctx context.Context, zoneID uint) ([]model.Section, error) {
	if _, err := s.GetZone(ctx, zoneID); err != nil {
		return nil, err
	}

	var sections []model.Section
	if err := s.dbClient.WithContext(ctx).
		Where("zone_id = ?", zoneID).Order("section_number").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	return sections, nil
}

// GetSection 按ID查询章节.
func (s *TaxonomyService) GetSection(ctx context.Context, id uint) (*model.Section, error) {
	var section model.Section
	if err := s.dbClient.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, wrapNotFound(err, "query section")
	}

	return &section, nil
}

// CreateSection 在分区下创建章节，编号在分区内唯一. 父分区不存在时返回 ErrParentNotFound.
func (s *TaxonomyService) CreateSection(ctx context.Context, zoneID uint, req *types.CreateSectionRequest) (*model.Section, error) {
	if _, err := s.GetZone(ctx, zoneID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrParentNotFound
		}

		return nil, err
	}

	var count int64
	if err := s.dbClient.WithContext(ctx).Model(&model.Section{}).
		Where("zone_id = ? AND section_number = ?", zoneID, req.SectionNumber).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check section number: %w", err)
	}

	if count > 0 {
		return nil, ErrDuplicateKey
	}

	section := model.Section{
		SectionNumber: req.SectionNumber,
		ZoneID:        zoneID,
		SectionName:   req.SectionName,
		Description:   req.Description,
	}

	if err := s.dbClient.WithContext(ctx).Create(&section).Error; err != nil {
		return nil, wrapDuplicate(err, "create section")
	}

	s.invalidateTree(ctx)

	return &section, nil
}

// UpdateSection 更新章节.
func (s *TaxonomyService) UpdateSection(ctx context.Context, id uint, req *types.UpdateSectionRequest) (*model.Section, error) {
	section, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.SectionName != "" {
		updates["section_name"] = req.SectionName
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if len(updates) > 0 {
		if err := s.dbClient.WithContext(ctx).Model(section).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update section: %w", err)
		}
	}

	s.invalidateTree(ctx)

	return section, nil
}

// DeleteSection 删除章节. 仍有制品时返回 ErrHasChildren.
func (s *TaxonomyService) DeleteSection(ctx context.Context, id uint) error {
	section, err := s.GetSection(ctx, id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.dbClient.WithContext(ctx).Model(&model.Artifact{}).
		Where("section_id = ?", section.ID).Count(&children).Error; err != nil {
		return fmt.Errorf("count artifacts: %w", err)
	}

	if children > 0 {
		return ErrHasChildren
	}

	if err := s.dbClient.WithContext(ctx).Delete(section).Error; err != nil {
		return fmt.Errorf("delete section: %w", err)
	}

	s.invalidateTree(ctx)

	return nil
}

// ---- Artifact ----

// ListArtifacts 列出某章节下全部制品.
func (s *TaxonomyService) ListArtifacts(ctx context.Context, sectionID uint) ([]model.Artifact, error) {
	if _, err := s.GetSection(ctx, sectionID); err != nil {
		return nil, err
	}

	var artifacts []model.Artifact
	if err := s.dbClient.WithContext(ctx).
		Where("section_id = ?", sectionID).Order("artifact_number").Find(&artifacts).Error; err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	return artifacts, nil
}

// GetArtifact 按ID查询制品.
func (s *TaxonomyService) GetArtifact(ctx context.Context, id uint) (*model.Artifact, error) {
	var artifact model.Artifact
	if err := s.dbClient.WithContext(ctx).First(&artifact, id).Error; err != nil {
		return nil, wrapNotFound(err, "query artifact")
	}

	return &artifact, nil
}

// CreateArtifact 在章节下创建制品，编号在章节内唯一.
func (s *TaxonomyService) CreateArtifact(ctx context.Context, sectionID uint, req *types.CreateArtifactRequest) (*model.Artifact, error) {
	if _, err := s.GetSection(ctx, sectionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrParentNotFound
		}

		return nil, err
	}

	var count int64
	if err := s.dbClient.WithContext(ctx).Model(&model.Artifact{}).
		Where("section_id = ? AND artifact_number = ?", sectionID, req.ArtifactNumber).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check artifact number: %w", err)
	}

	if count > 0 {
		return nil, ErrDuplicateKey
	}

	artifact := model.Artifact{
		ArtifactNumber: req.ArtifactNumber,
		SectionID:      sectionID,
		ArtifactName:   req.ArtifactName,
		Description:    req.Description,
	}

	if err := s.dbClient.WithContext(ctx).Create(&artifact).Error; err != nil {
		return nil, wrapDuplicate(err, "create artifact")
	}

	s.invalidateTree(ctx)

	return &artifact, nil
}

// UpdateArtifact 更新制品.
func (s *TaxonomyService) UpdateArtifact(ctx context.Context, id uint, req *types.UpdateArtifactRequest) (*model.Artifact, error) {
	artifact, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.ArtifactName != "" {
		updates["artifact_name"] = req.ArtifactName
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if len(updates) > 0 {
		if err := s.dbClient.WithContext(ctx).Model(artifact).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update artifact: %w", err)
		}
	}

	s.invalidateTree(ctx)

	return artifact, nil
}

// DeleteArtifact 删除制品. 仍有子制品时返回 ErrHasChildren.
func (s *TaxonomyService) DeleteArtifact(ctx context.Context, id uint) error {
	artifact, err := s.GetArtifact(ctx, id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.dbClient.WithContext(ctx).Model(&model.SubArtifact{}).
		Where("artifact_id = ?", artifact.ID).Count(&children).Error; err != nil {
		return fmt.Errorf("count subartifacts: %w", err)
	}

	if children > 0 {
		return ErrHasChildren
	}

	if err := s.dbClient.WithContext(ctx).Delete(artifact).Error; err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}

	s.invalidateTree(ctx)

	return nil
}

// ---- SubArtifact ----

// ListSubArtifacts 列出某制品下全部子制品.
func (s *TaxonomyService) ListSubArtifacts(ctx context.Context, artifactID uint) ([]model.SubArtifact, error) {
	if _, err := s.GetArtifact(ctx, artifactID); err != nil {
		return nil, err
	}

	var subs []model.SubArtifact
	if err := s.dbClient.WithContext(ctx).
		Where("artifact_id = ?", artifactID).Order("sub_artifact_number").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subartifacts: %w", err)
	}

	return subs, nil
}

// GetSubArtifact 按ID查询子制品.
func (s *TaxonomyService) GetSubArtifact(ctx context.Context, id uint) (*model.SubArtifact, error) {
	var sub model.SubArtifact
	if err := s.dbClient.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, wrapNotFound(err, "query subartifact")
	}

	return &sub, nil
}

// CreateSubArtifact 在制品下创建子制品，编号在制品内唯一.
func (s *TaxonomyService) CreateSubArtifact(ctx context.Context, artifactID uint, req *types.CreateSubArtifactRequest) (*model.SubArtifact, error) {
	if _, err := s.GetArtifact(ctx, artifactID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrParentNotFound
		}

		return nil, err
	}

	var count int64
	if err := s.dbClient.WithContext(ctx).Model(&model.SubArtifact{}).
		Where("artifact_id = ? AND sub_artifact_number = ?", artifactID, req.SubArtifactNumber).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check subartifact number: %w", err)
	}

	if count > 0 {
		return nil, ErrDuplicateKey
	}

	placeholders, err := marshalPlaceholders(req.Placeholders)
	if err != nil {
		return nil, err
	}

	lifecycle := req.Lifecycle
	if lifecycle == "" {
		lifecycle = model.LifecycleDraft
	}

	sub := model.SubArtifact{
		SubArtifactNumber: req.SubArtifactNumber,
		ArtifactID:        artifactID,
		SubArtifactName:   req.SubArtifactName,
		Description:       req.Description,
		PlaceholdersJSON:  placeholders,
		Lifecycle:         lifecycle,
	}

	if err := s.dbClient.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, wrapDuplicate(err, "create subartifact")
	}

	s.invalidateTree(ctx)

	return &sub, nil
}

// UpdateSubArtifact 更新子制品.
func (s *TaxonomyService) UpdateSubArtifact(ctx context.Context, id uint, req *types.UpdateSubArtifactRequest) (*model.SubArtifact, error) {
	sub, err := s.GetSubArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.SubArtifactName != "" {
		updates["sub_artifact_name"] = req.SubArtifactName
	}

	if req.Description != "" {
		updates["description"] = req.Description
	}

	if req.Lifecycle != "" {
		updates["lifecycle"] = req.Lifecycle
	}

	if req.Placeholders != nil {
		placeholders, err := marshalPlaceholders(req.Placeholders)
		if err != nil {
			return nil, err
		}

		updates["placeholders_json"] = placeholders
	}

	if len(updates) > 0 {
		if err := s.dbClient.WithContext(ctx).Model(sub).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update subartifact: %w", err)
		}
	}

	s.invalidateTree(ctx)

	return sub, nil
}

// DeleteSubArtifact 删除子制品. 子制品是叶子节点，无级联约束.
func (s *TaxonomyService) DeleteSubArtifact(ctx context.Context, id uint) error {
	sub, err := s.GetSubArtifact(ctx, id)
	if err != nil {
		return err
	}

	if err := s.dbClient.WithContext(ctx).Delete(sub).Error; err != nil {
		return fmt.Errorf("delete subartifact: %w", err)
	}

	s.invalidateTree(ctx)

	return nil
}

// ---- helpers ----

// marshalPlaceholders 序列化占位文档名.
func marshalPlaceholders(placeholders []string) (string, error) {
	if len(placeholders) == 0 {
		return "[]", nil
	}

	data, err := sonic.Marshal(placeholders)
	if err != nil {
		return "", fmt.Errorf("marshal placeholders: %w", err)
	}

	return string(data), nil
}

// UnmarshalPlaceholders 反序列化占位文档名.
func UnmarshalPlaceholders(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	if err := sonic.UnmarshalString(raw, &out); err != nil {
		return nil
	}

	return out
}

// wrapNotFound 把 gorm.ErrRecordNotFound 映射为 ErrNotFound.
func wrapNotFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return fmt.Errorf("%s: %w", op, err)
}

// wrapDuplicate 把 gorm.ErrDuplicatedKey 映射为 ErrDuplicateKey.
func wrapDuplicate(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}

	return fmt.Errorf("%s: %w", op, err)
}
