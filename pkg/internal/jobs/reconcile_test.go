package jobs_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/jobs"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage"
	dbc "github.com/yeisme/tmfvault/pkg/internal/storage/db"
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

func seedDocument(t *testing.T, ctx context.Context, id, zone, section string) {
	t.Helper()

	db := ctxPkg.GetDBClient(ctx)

	doc := model.Document{
		ID:            id,
		Title:         "doc " + id,
		ZoneNumber:    zone,
		SectionNumber: section,
		Status:        model.StatusDraft,
		AccessLevel:   model.AccessRestricted,
		Version:       1,
	}

	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func TestReconcileFlagsDanglingReferences(t *testing.T) {
	ctx := newTestContext(t)
	db := ctxPkg.GetDBClient(ctx)

	if err := db.Create(&model.Zone{ZoneNumber: "01", ZoneName: "Trial Management"}).Error; err != nil {
		t.Fatalf("seed zone: %v", err)
	}

	seedDocument(t, ctx, "doc-ok", "01", "")
	seedDocument(t, ctx, "doc-dangling", "99", "")

	orphaned, err := jobs.ReconcileOrphans(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if orphaned != 1 {
		t.Fatalf("orphaned = %d, want 1", orphaned)
	}

	var doc model.Document
	if err := db.First(&doc, "id = ?", "doc-dangling").Error; err != nil {
		t.Fatalf("query: %v", err)
	}

	if !doc.Orphaned {
		t.Fatal("dangling document not flagged")
	}

	doc = model.Document{}
	if err := db.First(&doc, "id = ?", "doc-ok").Error; err != nil {
		t.Fatalf("query: %v", err)
	}

	if doc.Orphaned {
		t.Fatal("resolvable document wrongly flagged")
	}
}

func TestReconcileClearsFlagWhenReferenceRestored(t *testing.T) {
	ctx := newTestContext(t)
	db := ctxPkg.GetDBClient(ctx)

	seedDocument(t, ctx, "doc-1", "03", "")

	if orphaned, err := jobs.ReconcileOrphans(ctx); err != nil || orphaned != 1 {
		t.Fatalf("first reconcile: orphaned=%d err=%v", orphaned, err)
	}

	// 补齐引用的分区后标记应被清除
	if err := db.Create(&model.Zone{ZoneNumber: "03", ZoneName: "Regulatory"}).Error; err != nil {
		t.Fatalf("seed zone: %v", err)
	}

	if orphaned, err := jobs.ReconcileOrphans(ctx); err != nil || orphaned != 0 {
		t.Fatalf("second reconcile: orphaned=%d err=%v", orphaned, err)
	}

	var doc model.Document
	if err := db.First(&doc, "id = ?", "doc-1").Error; err != nil {
		t.Fatalf("query: %v", err)
	}

	if doc.Orphaned {
		t.Fatal("flag not cleared after reference restored")
	}
}

func TestReconcileChecksEveryLevel(t *testing.T) {
	ctx := newTestContext(t)
	db := ctxPkg.GetDBClient(ctx)

	zone := model.Zone{ZoneNumber: "01", ZoneName: "Trial Management"}
	if err := db.Create(&zone).Error; err != nil {
		t.Fatalf("seed zone: %v", err)
	}

	// 分区存在但章节不存在，仍算悬空
	seedDocument(t, ctx, "doc-partial", "01", "01.99")

	orphaned, err := jobs.ReconcileOrphans(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if orphaned != 1 {
		t.Fatalf("orphaned = %d, want 1", orphaned)
	}
}
