// Package jobs 提供后台定时任务的实现.
//
// 文档对分类节点的引用是软引用：分类删除不级联到文档.
// 对账任务周期性扫描文档表，把指向已不存在节点的文档标记为悬空，
// 恢复引用后再次扫描会清除标记.
package jobs

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	nlog "github.com/yeisme/tmfvault/pkg/log"
	"github.com/yeisme/tmfvault/pkg/metrics"
)

const reconcileBatchSize = 500

// ReconcileOrphans 扫描全部文档，核对其分类引用并维护 orphaned 标记.
// 返回本次发现的悬空文档数.
func ReconcileOrphans(ctx context.Context) (int64, error) {
	dbc := ctxPkg.GetDBClient(ctx)
	if dbc == nil || dbc.DB == nil {
		return 0, fmt.Errorf("db client not initialized")
	}

	known, err := loadKnownNumbers(ctx, dbc.DB)
	if err != nil {
		return 0, err
	}

	var (
		orphaned int64
		docs     []model.Document
	)

	result := dbc.WithContext(ctx).FindInBatches(&docs, reconcileBatchSize, func(tx *gorm.DB, _ int) error {
		for i := range docs {
			doc := &docs[i]

			isOrphan := !known.resolves(doc)
			if isOrphan {
				orphaned++
			}

			if isOrphan == doc.Orphaned {
				continue
			}

			if err := tx.Model(&model.Document{}).Where("id = ?", doc.ID).
				Update("orphaned", isOrphan).Error; err != nil {
				return fmt.Errorf("update orphaned flag for %s: %w", doc.ID, err)
			}
		}

		return nil
	})
	if result.Error != nil {
		return 0, fmt.Errorf("scan documents: %w", result.Error)
	}

	metrics.OrphanedReferences.Set(float64(orphaned))

	nlog.Logger().Info().Int64("orphaned", orphaned).Int64("scanned", result.RowsAffected).
		Msg("document reference reconciliation finished")

	return orphaned, nil
}

// knownNumbers 各级分类的现存编号集合.
type knownNumbers struct {
	zones        map[string]struct{}
	sections     map[string]struct{}
	artifacts    map[string]struct{}
	subArtifacts map[string]struct{}
}

// resolves 判断文档的分类引用是否全部仍可解析. 空引用视为可解析.
func (k *knownNumbers) resolves(doc *model.Document) bool {
	if doc.ZoneNumber != "" {
		if _, ok := k.zones[doc.ZoneNumber]; !ok {
			return false
		}
	}

	if doc.SectionNumber != "" {
		if _, ok := k.sections[doc.SectionNumber]; !ok {
			return false
		}
	}

	if doc.ArtifactNumber != "" {
		if _, ok := k.artifacts[doc.ArtifactNumber]; !ok {
			return false
		}
	}

	if doc.SubArtifactNumber != "" {
		if _, ok := k.subArtifacts[doc.SubArtifactNumber]; !ok {
			return false
		}
	}

	return true
}

// loadKnownNumbers 一次性装载四级分类的全部编号.
func loadKnownNumbers(ctx context.Context, tx *gorm.DB) (*knownNumbers, error) {
	known := &knownNumbers{
		zones:        make(map[string]struct{}),
		sections:     make(map[string]struct{}),
		artifacts:    make(map[string]struct{}),
		subArtifacts: make(map[string]struct{}),
	}

	for _, load := range []struct {
		model  any
		column string
		into   map[string]struct{}
	}{
		{&model.Zone{}, "zone_number", known.zones},
		{&model.Section{}, "section_number", known.sections},
		{&model.Artifact{}, "artifact_number", known.artifacts},
		{&model.SubArtifact{}, "sub_artifact_number", known.subArtifacts},
	} {
		var numbers []string
		if err := tx.WithContext(ctx).Model(load.model).
			Pluck(load.column, &numbers).Error; err != nil {
			return nil, fmt.Errorf("load %s: %w", load.column, err)
		}

		for _, n := range numbers {
			load.into[n] = struct{}{}
		}
	}

	return known, nil
}
