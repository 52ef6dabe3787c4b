package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage/db"
)

func TestParseMetadataDefaultsAndValidation(t *testing.T) {
	meta, err := parseMetadata([]byte(`{"title":"Protocol v1","zoneNumber":"01.02"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if meta.Title != "Protocol v1" || meta.ZoneNumber != "01.02" {
		t.Fatalf("meta = %+v", meta)
	}

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"malformed json", `{not json`},
		{"missing title", `{"zoneNumber":"01"}`},
		{"bad zone number", `{"title":"x","zoneNumber":"zone-one"}`},
		{"unknown status", `{"title":"x","zoneNumber":"01","status":"Pending"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseMetadata([]byte(tc.raw)); !errors.Is(err, ErrInvalidMetadata) {
				t.Fatalf("err = %v, want ErrInvalidMetadata", err)
			}
		})
	}
}

// metadata 中不存在大小和类型字段，文件属性只能来自实际写入
func TestParseMetadataIgnoresFileAttributes(t *testing.T) {
	meta, err := parseMetadata([]byte(`{"title":"x","zoneNumber":"01","size":999,"contentType":"text/html"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if meta.Title != "x" {
		t.Fatalf("title = %q", meta.Title)
	}
}

func TestResolveNamesExpandsAllReferenceLevels(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := gdb.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	zone := model.Zone{ZoneNumber: "01", ZoneName: "Trial Management"}
	if err := gdb.Create(&zone).Error; err != nil {
		t.Fatalf("seed zone: %v", err)
	}

	section := model.Section{SectionNumber: "01.01", ZoneID: zone.ID, SectionName: "Trial Oversight"}
	if err := gdb.Create(&section).Error; err != nil {
		t.Fatalf("seed section: %v", err)
	}

	artifact := model.Artifact{ArtifactNumber: "01.01.01", SectionID: section.ID, ArtifactName: "TMF Plan"}
	if err := gdb.Create(&artifact).Error; err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	user := model.User{Name: "Ada", Email: "ada@example.com", Password: "x", Role: "member"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := &DocumentService{dbClient: &db.Client{DB: gdb}}

	docs := []model.Document{{
		ZoneNumber:     "01",
		SectionNumber:  "01.01",
		ArtifactNumber: "01.01.01",
		CreatedBy:      user.ID,
		LastModifiedBy: user.ID,
	}}

	names := svc.resolveNames(context.Background(), docs)

	if names.zones["01"] != "Trial Management" {
		t.Fatalf("zone name = %q", names.zones["01"])
	}

	if names.sections["01.01"] != "Trial Oversight" {
		t.Fatalf("section name = %q", names.sections["01.01"])
	}

	if names.artifacts["01.01.01"] != "TMF Plan" {
		t.Fatalf("artifact name = %q", names.artifacts["01.01.01"])
	}

	if names.users[user.ID] != "Ada" {
		t.Fatalf("user name = %q", names.users[user.ID])
	}

	// 悬空引用留空，不报错
	info := toDocumentInfo(&docs[0])
	applyNames(&info, &docs[0], names)

	if info.SubArtifactName != "" {
		t.Fatalf("subartifact name = %q, want empty", info.SubArtifactName)
	}

	if info.ZoneName != "Trial Management" || info.CreatedByName != "Ada" {
		t.Fatalf("info names = %q/%q", info.ZoneName, info.CreatedByName)
	}
}

func TestBuildObjectKeyLayout(t *testing.T) {
	key := buildObjectKey(42, "doc-id", "protocol.pdf")

	now := time.Now().UTC()
	prefix := fmt.Sprintf("42/%04d/%02d/doc-id/", now.Year(), int(now.Month()))

	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "protocol.pdf") {
		t.Fatalf("key = %q, want prefix %q", key, prefix)
	}
}
