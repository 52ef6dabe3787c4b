package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"

	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/internal/storage/kv"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

// StructureTreeCacheKey 结构树在 KV 中的缓存键.
const StructureTreeCacheKey = "tmf:structure:tree"

// structureTreeCacheTTL 缓存过期时间，写操作会主动失效，TTL 只是兜底.
const structureTreeCacheTTL = 5 * time.Minute

// StructureService 负责只读的完整分类结构树查询，带 KV 缓存.
type StructureService struct {
	dbClient *db.Client
	kvClient *kv.Client
}

// NewStructureService 从 context 获取依赖实例.
func NewStructureService(c context.Context) *StructureService {
	dbc := ctxPkg.GetDBClient(c)

	if dbc == nil || dbc.DB == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &StructureService{
		dbClient: dbc,
		kvClient: ctxPkg.GetKVClient(c),
	}
}

// GetTree 返回完整结构树的 JSON 编码和内容哈希 ETag.
// 优先读 KV 缓存，未命中时从数据库重建并回填.
func (s *StructureService) GetTree(ctx context.Context) ([]byte, string, error) {
	if s.kvClient != nil {
		if data, err := s.kvClient.Get(ctx, StructureTreeCacheKey); err == nil {
			return data, etagOf(data), nil
		}
	}

	tree, err := s.BuildTree(ctx)
	if err != nil {
		return nil, "", err
	}

	data, err := sonic.Marshal(tree)
	if err != nil {
		return nil, "", fmt.Errorf("marshal structure tree: %w", err)
	}

	if s.kvClient != nil {
		if err := s.kvClient.Set(ctx, StructureTreeCacheKey, data, structureTreeCacheTTL); err != nil {
			nlog.Logger().Warn().Err(err).Msg("cache structure tree failed")
		}
	}

	return data, etagOf(data), nil
}

// BuildTree 从数据库组装完整结构树. 四级各查一次，在内存中按父ID拼接.
func (s *StructureService) BuildTree(ctx context.Context) (*types.StructureTree, error) {
	var (
		zones    []model.Zone
		sections []model.Section
		arts     []model.Artifact
		subs     []model.SubArtifact
	)

	tx := s.dbClient.WithContext(ctx)

	if err := tx.Order("zone_number").Find(&zones).Error; err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}

	if err := tx.Order("section_number").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}

	if err := tx.Order("artifact_number").Find(&arts).Error; err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}

	if err := tx.Order("sub_artifact_number").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("load subartifacts: %w", err)
	}

	subsByArtifact := make(map[uint][]types.SubArtifactNode)
	for i := range subs {
		sub := &subs[i]
		subsByArtifact[sub.ArtifactID] = append(subsByArtifact[sub.ArtifactID], types.SubArtifactNode{
			SubArtifactNumber: sub.SubArtifactNumber,
			SubArtifactName:   sub.SubArtifactName,
			Description:       sub.Description,
			Placeholders:      UnmarshalPlaceholders(sub.PlaceholdersJSON),
			Lifecycle:         sub.Lifecycle,
		})
	}

	artsBySection := make(map[uint][]types.ArtifactNode)
	for i := range arts {
		art := &arts[i]
		artsBySection[art.SectionID] = append(artsBySection[art.SectionID], types.ArtifactNode{
			ArtifactNumber: art.ArtifactNumber,
			ArtifactName:   art.ArtifactName,
			Description:    art.Description,
			SubArtifacts:   orEmptySubs(subsByArtifact[art.ID]),
		})
	}

	sectionsByZone := make(map[uint][]types.SectionNode)
	for i := range sections {
		sec := &sections[i]
		sectionsByZone[sec.ZoneID] = append(sectionsByZone[sec.ZoneID], types.SectionNode{
			SectionNumber: sec.SectionNumber,
			SectionName:   sec.SectionName,
			Description:   sec.Description,
			Artifacts:     orEmptyArts(artsBySection[sec.ID]),
		})
	}

	tree := &types.StructureTree{
		Version: s.latestSnapshotVersion(ctx),
		Zones:   make([]types.ZoneNode, 0, len(zones)),
	}

	for i := range zones {
		z := &zones[i]
		tree.Zones = append(tree.Zones, types.ZoneNode{
			ZoneNumber:  z.ZoneNumber,
			ZoneName:    z.ZoneName,
			Description: z.Description,
			Sections:    orEmptySections(sectionsByZone[z.ID]),
		})
	}

	return tree, nil
}

// latestSnapshotVersion 返回最近一次导入快照的版本号，没有导入记录时为空.
func (s *StructureService) latestSnapshotVersion(ctx context.Context) string {
	var snap model.StructureSnapshot
	if err := s.dbClient.WithContext(ctx).
		Order("version DESC").First(&snap).Error; err != nil {
		return ""
	}

	return snap.Version
}

// etagOf 基于内容计算弱校验 ETag.
func etagOf(data []byte) string {
	return fmt.Sprintf(`"%x"`, xxhash.Sum64(data))
}

func orEmptySubs(in []types.SubArtifactNode) []types.SubArtifactNode {
	if in == nil {
		return []types.SubArtifactNode{}
	}

	return in
}

func orEmptyArts(in []types.ArtifactNode) []types.ArtifactNode {
	if in == nil {
		return []types.ArtifactNode{}
	}

	return in
}

func orEmptySections(in []types.SectionNode) []types.SectionNode {
	if in == nil {
		return []types.SectionNode{}
	}

	return in
}
