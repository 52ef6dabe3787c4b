package handle_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/tmfvault/pkg/internal/handle"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage"
	dbc "github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/internal/types"
	"github.com/yeisme/tmfvault/pkg/middleware"
)

// newTestEngine 构造挂了内存数据库的 gin 引擎. 不带对象存储，
// 只覆盖在触达存储之前就应返回的路径.
func newTestEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)

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

	engine := gin.New()
	engine.Use(middleware.StorageMiddleware(mgr))

	engine.POST("/api/tmf/documents/:userId", handle.UploadDocument)
	engine.GET("/api/tmf/structure", handle.GetStructure)

	return engine, gdb
}

func decodeResponse(t *testing.T, body []byte) types.Response {
	t.Helper()

	var resp types.Response
	if err := sonic.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return resp
}

func TestUploadWithoutFileFailsBeforeAnythingElse(t *testing.T) {
	engine, gdb := newTestEngine(t)

	// metadata 字段齐全但缺 file，必须在触达对象存储之前就拒绝
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("metadata", `{"title":"Protocol","zoneNumber":"01"}`); err != nil {
		t.Fatalf("write field: %v", err)
	}

	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/tmf/documents/1", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	resp := decodeResponse(t, rec.Body.Bytes())
	if resp.Code != "NO_FILE" {
		t.Fatalf("code = %q, want NO_FILE", resp.Code)
	}

	var count int64
	if err := gdb.Model(&model.Document{}).Count(&count).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}

	if count != 0 {
		t.Fatalf("documents = %d, want 0", count)
	}
}

func TestUploadRejectsInvalidUserID(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tmf/documents/abc", strings.NewReader(""))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	resp := decodeResponse(t, rec.Body.Bytes())
	if resp.Code != "INVALID_ID" {
		t.Fatalf("code = %q, want INVALID_ID", resp.Code)
	}
}

func TestStructureEndpointHonorsETag(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tmf/structure", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag header")
	}

	// 同内容的条件请求应命中 304
	req = httptest.NewRequest(http.MethodGet, "/api/tmf/structure", nil)
	req.Header.Set("If-None-Match", etag)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("conditional status = %d, want 304", rec.Code)
	}
}
