package importer_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/importer"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage"
	dbc "github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

// newTestContext 构造挂了内存数据库的 context.
func newTestContext(t *testing.T) context.Context {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := gdb.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mgr := storage.NewManager(&dbc.Client{DB: gdb}, nil, nil, nil)

	return ctxPkg.WithStorageManager(context.Background(), mgr)
}

func sampleStructure() *types.TMFStructureFile {
	return &types.TMFStructureFile{
		Zones: []types.ZoneImport{
			{
				ZoneNumber: "01",
				ZoneName:   "Trial Management",
				Sections: []types.SectionImport{
					{
						SectionNumber: "01.01",
						SectionName:   "Trial Oversight",
						Artifacts: []types.ArtifactImport{
							{
								ArtifactNumber: "01.01.01",
								ArtifactName:   "Trial Master File Plan",
								SubArtifacts: []types.SubArtifactImport{
									{
										SubArtifactNumber: "01.01.01.01",
										SubArtifactName:   "TMF Plan",
										Placeholders:      []string{"tmf-plan.pdf"},
									},
								},
							},
						},
					},
				},
			},
			{
				ZoneNumber: "02",
				ZoneName:   "Central Trial Documents",
			},
		},
	}
}

func TestImportCreatesHierarchy(t *testing.T) {
	ctx := newTestContext(t)
	im := importer.New(ctx)

	result, err := im.Import(ctx, sampleStructure(), []byte(`{}`), "test")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	// 2 zones + 1 section + 1 artifact + 1 subartifact
	if result.Created != 5 {
		t.Fatalf("created = %d, want 5", result.Created)
	}

	if result.Updated != 0 || result.Failed != 0 {
		t.Fatalf("updated=%d failed=%d, want 0/0", result.Updated, result.Failed)
	}

	if result.Zones.Created != 2 || result.Sections.Created != 1 ||
		result.Artifacts.Created != 1 || result.SubArtifacts.Created != 1 {
		t.Fatalf("per-level created = %+v/%+v/%+v/%+v, want 2/1/1/1",
			result.Zones, result.Sections, result.Artifacts, result.SubArtifacts)
	}

	if result.SnapshotVersion == "" {
		t.Fatal("snapshot version empty")
	}

	db := ctxPkg.GetDBClient(ctx)

	var zones int64
	if err := db.Model(&model.Zone{}).Count(&zones).Error; err != nil {
		t.Fatalf("count zones: %v", err)
	}

	if zones != 2 {
		t.Fatalf("zones = %d, want 2", zones)
	}

	var snaps int64
	if err := db.Model(&model.StructureSnapshot{}).Count(&snaps).Error; err != nil {
		t.Fatalf("count snapshots: %v", err)
	}

	if snaps != 1 {
		t.Fatalf("snapshots = %d, want 1", snaps)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := newTestContext(t)
	im := importer.New(ctx)

	if _, err := im.Import(ctx, sampleStructure(), []byte(`{}`), "first"); err != nil {
		t.Fatalf("first import: %v", err)
	}

	second, err := im.Import(ctx, sampleStructure(), []byte(`{}`), "second")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if second.Created != 0 {
		t.Fatalf("second created = %d, want 0", second.Created)
	}

	if second.Updated != 5 {
		t.Fatalf("second updated = %d, want 5", second.Updated)
	}

	// 节点数量不变
	db := ctxPkg.GetDBClient(ctx)

	var zones int64
	if err := db.Model(&model.Zone{}).Count(&zones).Error; err != nil {
		t.Fatalf("count zones: %v", err)
	}

	if zones != 2 {
		t.Fatalf("zones = %d, want 2", zones)
	}

	// 每次导入都有独立快照
	var snaps int64
	if err := db.Model(&model.StructureSnapshot{}).Count(&snaps).Error; err != nil {
		t.Fatalf("count snapshots: %v", err)
	}

	if snaps != 2 {
		t.Fatalf("snapshots = %d, want 2", snaps)
	}
}

func TestImportUpdatesChangedNames(t *testing.T) {
	ctx := newTestContext(t)
	im := importer.New(ctx)

	if _, err := im.Import(ctx, sampleStructure(), []byte(`{}`), "first"); err != nil {
		t.Fatalf("first import: %v", err)
	}

	changed := sampleStructure()
	changed.Zones[0].ZoneName = "Trial Management (renamed)"

	if _, err := im.Import(ctx, changed, []byte(`{}`), "second"); err != nil {
		t.Fatalf("second import: %v", err)
	}

	db := ctxPkg.GetDBClient(ctx)

	var zone model.Zone
	if err := db.Where("zone_number = ?", "01").First(&zone).Error; err != nil {
		t.Fatalf("query zone: %v", err)
	}

	if zone.ZoneName != "Trial Management (renamed)" {
		t.Fatalf("zone name = %q, not updated", zone.ZoneName)
	}
}

func TestImportJSONRejectsMalformedInput(t *testing.T) {
	ctx := newTestContext(t)
	im := importer.New(ctx)

	if _, err := im.ImportJSON(ctx, []byte(`{not json`), "bad"); err == nil {
		t.Fatal("expected parse error")
	}
}
