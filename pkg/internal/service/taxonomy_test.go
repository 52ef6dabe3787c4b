package service_test

import (
	"errors"
	"testing"

	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

func TestCreateZoneRejectsDuplicateNumber(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewTaxonomyService(ctx)

	req := &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Trial Management"}

	if _, err := svc.CreateZone(ctx, req); err != nil {
		t.Fatalf("first create: %v", err)
	}

	if _, err := svc.CreateZone(ctx, req); !errors.Is(err, service.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestSectionNumberScopedToZone(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewTaxonomyService(ctx)

	z1, err := svc.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Zone 1"})
	if err != nil {
		t.Fatalf("create zone 1: %v", err)
	}

	z2, err := svc.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "02", ZoneName: "Zone 2"})
	if err != nil {
		t.Fatalf("create zone 2: %v", err)
	}

	secReq := &types.CreateSectionRequest{SectionNumber: "01.01", SectionName: "Oversight"}

	if _, err := svc.CreateSection(ctx, z1.ID, secReq); err != nil {
		t.Fatalf("create section in zone 1: %v", err)
	}

	// 同编号在另一个分区下允许
	if _, err := svc.CreateSection(ctx, z2.ID, secReq); err != nil {
		t.Fatalf("same number in other zone should work: %v", err)
	}

	// 同分区下重复编号拒绝
	if _, err := svc.CreateSection(ctx, z1.ID, secReq); !errors.Is(err, service.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestRecreateZoneAfterDelete(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewTaxonomyService(ctx)

	zone, err := svc.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Trial Management"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteZone(ctx, zone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// 删除后同编号必须能重建，唯一索引不能被已删除行占住
	if _, err := svc.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Trial Management"}); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}

func TestCreateSectionRequiresParent(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewTaxonomyService(ctx)

	_, err := svc.CreateSection(ctx, 9999, &types.CreateSectionRequest{
		SectionNumber: "01.01", SectionName: "Orphan",
	})
	if !errors.Is(err, service.ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
}

func TestDeleteZoneWithSectionsFails(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewTaxonomyService(ctx)

	zone, err := svc.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Zone"})
	if err != nil {
		t.Fatalf("create zone: %v", err)
	}

	if _, err := svc.CreateSection(ctx, zone.ID, &types.CreateSectionRequest{
		SectionNumber: "01.01", SectionName: "Section",
	}); err != nil {
		t.Fatalf("create section: %v", err)
	}

	if err := svc.DeleteZone(ctx, zone.ID); !errors.Is(err, service.ErrHasChildren) {
		t.Fatalf("expected ErrHasChildren, got %v", err)
	}

	// 删除子节点后分区可删除
	sections, err := svc.ListSections(ctx, zone.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}

	if err := svc.DeleteSection(ctx, sections[0].ID); err != nil {
		t.Fatalf("delete section: %v", err)
	}

	if err := svc.DeleteZone(ctx, zone.ID); err != nil {
		t.Fatalf("delete empty zone: %v", err)
	}
}

func TestUpdateZoneKeepsNumber(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewTaxonomyService(ctx)

	zone, err := svc.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Before"})
	if err != nil {
		t.Fatalf("create zone: %v", err)
	}

	updated, err := svc.UpdateZone(ctx, zone.ID, &types.UpdateZoneRequest{ZoneName: "After"})
	if err != nil {
		t.Fatalf("update zone: %v", err)
	}

	got, err := svc.GetZone(ctx, updated.ID)
	if err != nil {
		t.Fatalf("get zone: %v", err)
	}

	if got.ZoneName != "After" || got.ZoneNumber != "01" {
		t.Fatalf("zone = %+v", got)
	}
}

func TestDeleteMissingNodeReturnsNotFound(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewTaxonomyService(ctx)

	if err := svc.DeleteZone(ctx, 404); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStructureTreeBuildsNestedLevels(t *testing.T) {
	ctx := newTestContext(t)
	tax := service.NewTaxonomyService(ctx)

	zone, err := tax.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Zone"})
	if err != nil {
		t.Fatalf("create zone: %v", err)
	}

	section, err := tax.CreateSection(ctx, zone.ID, &types.CreateSectionRequest{
		SectionNumber: "01.01", SectionName: "Section",
	})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}

	artifact, err := tax.CreateArtifact(ctx, section.ID, &types.CreateArtifactRequest{
		ArtifactNumber: "01.01.01", ArtifactName: "Artifact",
	})
	if err != nil {
		t.Fatalf("create artifact: %v", err)
	}

	if _, err := tax.CreateSubArtifact(ctx, artifact.ID, &types.CreateSubArtifactRequest{
		SubArtifactNumber: "01.01.01.01",
		SubArtifactName:   "SubArtifact",
		Placeholders:      []string{"plan.pdf"},
	}); err != nil {
		t.Fatalf("create subartifact: %v", err)
	}

	tree, err := service.NewStructureService(ctx).BuildTree(ctx)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	if len(tree.Zones) != 1 {
		t.Fatalf("zones = %d, want 1", len(tree.Zones))
	}

	z := tree.Zones[0]
	if len(z.Sections) != 1 || len(z.Sections[0].Artifacts) != 1 {
		t.Fatalf("unexpected tree shape: %+v", z)
	}

	sub := z.Sections[0].Artifacts[0].SubArtifacts
	if len(sub) != 1 || sub[0].Lifecycle != "Draft" {
		t.Fatalf("unexpected subartifacts: %+v", sub)
	}

	if len(sub[0].Placeholders) != 1 || sub[0].Placeholders[0] != "plan.pdf" {
		t.Fatalf("placeholders = %+v", sub[0].Placeholders)
	}
}

func TestStructureTreeCachedAndInvalidated(t *testing.T) {
	ctx := newTestContext(t)
	tax := service.NewTaxonomyService(ctx)
	structure := service.NewStructureService(ctx)

	if _, err := tax.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "01", ZoneName: "Zone"}); err != nil {
		t.Fatalf("create zone: %v", err)
	}

	first, etag1, err := structure.GetTree(ctx)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}

	// 命中缓存：内容与 ETag 不变
	second, etag2, err := structure.GetTree(ctx)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}

	if string(first) != string(second) || etag1 != etag2 {
		t.Fatal("cached tree should be stable")
	}

	// 写操作后缓存失效，新树包含新分区
	if _, err := tax.CreateZone(ctx, &types.CreateZoneRequest{ZoneNumber: "02", ZoneName: "Zone 2"}); err != nil {
		t.Fatalf("create second zone: %v", err)
	}

	third, etag3, err := structure.GetTree(ctx)
	if err != nil {
		t.Fatalf("third get: %v", err)
	}

	if string(third) == string(first) || etag3 == etag1 {
		t.Fatal("tree should change after write")
	}
}
