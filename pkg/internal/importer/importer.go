// Package importer 实现分类结构的幂等导入.
// 按自然键（编号 + 父节点）逐层 upsert：已存在则更新名称和描述，
// 不存在则创建；单个节点失败不中断整体导入，失败明细汇总在结果中.
// 每次导入保存一份原始 JSON 快照，版本号为 ULID.
package importer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid"
	"gorm.io/gorm"

	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/internal/storage/mq"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	nlog "github.com/yeisme/tmfvault/pkg/log"
	"github.com/yeisme/tmfvault/pkg/metrics"
	"github.com/yeisme/tmfvault/pkg/queue"
)

// Importer 分类结构导入器.
type Importer struct {
	dbClient *db.Client
	mqClient *mq.Client
}

// New 从 context 获取依赖实例.
func New(c context.Context) *Importer {
	dbc := ctxPkg.GetDBClient(c)

	if dbc == nil || dbc.DB == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &Importer{
		dbClient: dbc,
		mqClient: ctxPkg.GetMQClient(c),
	}
}

// ImportJSON 解析原始 JSON 并执行导入.
func (im *Importer) ImportJSON(ctx context.Context, raw []byte, source string) (*types.ImportResult, error) {
	var file types.TMFStructureFile
	if err := sonic.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse structure file: %w", err)
	}

	return im.Import(ctx, &file, raw, source)
}

// Import 执行导入. 先保存快照，再逐层 upsert.
func (im *Importer) Import(ctx context.Context, file *types.TMFStructureFile, raw []byte, source string) (*types.ImportResult, error) {
	version, err := newVersion()
	if err != nil {
		return nil, fmt.Errorf("generate snapshot version: %w", err)
	}

	snapshot := model.StructureSnapshot{
		Version: version,
		RawJSON: string(raw),
		Source:  source,
	}

	if err := im.dbClient.WithContext(ctx).Create(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("save structure snapshot: %w", err)
	}

	result := &types.ImportResult{SnapshotVersion: version}

	for i := range file.Zones {
		im.importZone(ctx, &file.Zones[i], result)
	}

	nlog.Logger().Info().
		Str("version", version).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("taxonomy import finished")

	// 结构变了，使缓存的结构树失效
	if kvc := ctxPkg.GetKVClient(ctx); kvc != nil {
		if err := kvc.Delete(ctx, service.StructureTreeCacheKey); err != nil {
			nlog.Logger().Warn().Err(err).Msg("invalidate structure tree cache failed")
		}
	}

	_ = queue.Publish(ctx, im.mqClient, queue.TopicTaxonomyImported, queue.TaxonomyImportedEvent{
		SnapshotVersion: version,
		Created:         result.Created,
		Updated:         result.Updated,
		Failed:          result.Failed,
		ImportedAt:      time.Now(),
	})

	return result, nil
}

// importZone upsert 一个分区及其子树.
func (im *Importer) importZone(ctx context.Context, z *types.ZoneImport, result *types.ImportResult) {
	var zone model.Zone

	err := im.dbClient.WithContext(ctx).
		Where("zone_number = ?", z.ZoneNumber).First(&zone).Error

	switch {
	case err == nil:
		updates := map[string]any{
			"zone_name":   z.ZoneName,
			"description": z.Description,
		}
		if e := im.dbClient.WithContext(ctx).Model(&zone).Updates(updates).Error; e != nil {
			im.fail(result, "zone", z.ZoneNumber, e)
			return
		}

		im.count(result, "zone", false)
	case errors.Is(err, gorm.ErrRecordNotFound):
		zone = model.Zone{
			ZoneNumber:  z.ZoneNumber,
			ZoneName:    z.ZoneName,
			Description: z.Description,
		}
		if e := im.dbClient.WithContext(ctx).Create(&zone).Error; e != nil {
			im.fail(result, "zone", z.ZoneNumber, e)
			return
		}

		im.count(result, "zone", true)
	default:
		im.fail(result, "zone", z.ZoneNumber, err)
		return
	}

	for i := range z.Sections {
		im.importSection(ctx, zone.ID, &z.Sections[i], result)
	}
}

// importSection upsert 一个章节及其子树.
func (im *Importer) importSection(ctx context.Context, zoneID uint, sec *types.SectionImport, result *types.ImportResult) {
	var section model.Section

	err := im.dbClient.WithContext(ctx).
		Where("zone_id = ? AND section_number = ?", zoneID, sec.SectionNumber).
		First(&section).Error

	switch {
	case err == nil:
		updates := map[string]any{
			"section_name": sec.SectionName,
			"description":  sec.Description,
		}
		if e := im.dbClient.WithContext(ctx).Model(&section).Updates(updates).Error; e != nil {
			im.fail(result, "section", sec.SectionNumber, e)
			return
		}

		im.count(result, "section", false)
	case errors.Is(err, gorm.ErrRecordNotFound):
		section = model.Section{
			SectionNumber: sec.SectionNumber,
			ZoneID:        zoneID,
			SectionName:   sec.SectionName,
			Description:   sec.Description,
		}
		if e := im.dbClient.WithContext(ctx).Create(&section).Error; e != nil {
			im.fail(result, "section", sec.SectionNumber, e)
			return
		}

		im.count(result, "section", true)
	default:
		im.fail(result, "section", sec.SectionNumber, err)
		return
	}

	for i := range sec.Artifacts {
		im.importArtifact(ctx, section.ID, &sec.Artifacts[i], result)
	}
}

// importArtifact upsert 一个制品及其子树.
func (im *Importer) importArtifact(ctx context.Context, sectionID uint, art *types.ArtifactImport, result *types.ImportResult) {
	var artifact model.Artifact

	err := im.dbClient.WithContext(ctx).
		Where("section_id = ? AND artifact_number = ?", sectionID, art.ArtifactNumber).
		First(&artifact).Error

	switch {
	case err == nil:
		updates := map[string]any{
			"artifact_name": art.ArtifactName,
			"description":   art.Description,
		}
		if e := im.dbClient.WithContext(ctx).Model(&artifact).Updates(updates).Error; e != nil {
			im.fail(result, "artifact", art.ArtifactNumber, e)
			return
		}

		im.count(result, "artifact", false)
	case errors.Is(err, gorm.ErrRecordNotFound):
		artifact = model.Artifact{
			ArtifactNumber: art.ArtifactNumber,
			SectionID:      sectionID,
			ArtifactName:   art.ArtifactName,
			Description:    art.Description,
		}
		if e := im.dbClient.WithContext(ctx).Create(&artifact).Error; e != nil {
			im.fail(result, "artifact", art.ArtifactNumber, e)
			return
		}

		im.count(result, "artifact", true)
	default:
		im.fail(result, "artifact", art.ArtifactNumber, err)
		return
	}

	for i := range art.SubArtifacts {
		im.importSubArtifact(ctx, artifact.ID, &art.SubArtifacts[i], result)
	}
}

// importSubArtifact upsert 一个子制品.
func (im *Importer) importSubArtifact(ctx context.Context, artifactID uint, sub *types.SubArtifactImport, result *types.ImportResult) {
	placeholders, err := sonic.Marshal(sub.Placeholders)
	if err != nil {
		im.fail(result, "subartifact", sub.SubArtifactNumber, err)
		return
	}

	lifecycle := sub.Lifecycle
	if lifecycle == "" {
		lifecycle = model.LifecycleDraft
	}

	var existing model.SubArtifact

	err = im.dbClient.WithContext(ctx).
		Where("artifact_id = ? AND sub_artifact_number = ?", artifactID, sub.SubArtifactNumber).
		First(&existing).Error

	switch {
	case err == nil:
		updates := map[string]any{
			"sub_artifact_name": sub.SubArtifactName,
			"description":       sub.Description,
			"placeholders_json": string(placeholders),
			"lifecycle":         lifecycle,
		}
		if e := im.dbClient.WithContext(ctx).Model(&existing).Updates(updates).Error; e != nil {
			im.fail(result, "subartifact", sub.SubArtifactNumber, e)
			return
		}

		im.count(result, "subartifact", false)
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := model.SubArtifact{
			SubArtifactNumber: sub.SubArtifactNumber,
			ArtifactID:        artifactID,
			SubArtifactName:   sub.SubArtifactName,
			Description:       sub.Description,
			PlaceholdersJSON:  string(placeholders),
			Lifecycle:         lifecycle,
		}
		if e := im.dbClient.WithContext(ctx).Create(&created).Error; e != nil {
			im.fail(result, "subartifact", sub.SubArtifactNumber, e)
			return
		}

		im.count(result, "subartifact", true)
	default:
		im.fail(result, "subartifact", sub.SubArtifactNumber, err)
	}
}

// count 记录成功节点.
func (im *Importer) count(result *types.ImportResult, level string, created bool) {
	if created {
		result.CountCreated(level)

		metrics.ImportedNodes.WithLabelValues(level, "created").Inc()

		return
	}

	result.CountUpdated(level)

	metrics.ImportedNodes.WithLabelValues(level, "updated").Inc()
}

// fail 记录失败节点，导入继续.
func (im *Importer) fail(result *types.ImportResult, level, number string, err error) {
	result.Failed++
	result.Errors = append(result.Errors, types.ImportError{
		Level:  level,
		Number: number,
		Reason: err.Error(),
	})

	metrics.ImportedNodes.WithLabelValues(level, "failed").Inc()

	nlog.Logger().Warn().Err(err).
		Str("level", level).Str("number", number).
		Msg("import node failed")
}

// newVersion 生成单调的 ULID 版本号.
func newVersion() (string, error) {
	now := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)

	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
