package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/tmfvault/pkg/configs"
	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/service"
	"github.com/yeisme/tmfvault/pkg/internal/storage"
	dbc "github.com/yeisme/tmfvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/tmfvault/pkg/internal/storage/kv"
	"github.com/yeisme/tmfvault/pkg/internal/types"
)

// initTestConfig 写入测试配置：低 bcrypt 成本加速测试.
func initTestConfig(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	cfg := []byte(`
auth:
  secret: test-secret
  bcrypt_cost: 4
`)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, cfg, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := configs.InitConfig(path); err != nil {
		t.Fatalf("init config: %v", err)
	}
}

// newTestContext 构造挂了内存数据库和内存 KV 的 context.
func newTestContext(t *testing.T) context.Context {
	t.Helper()

	initTestConfig(t)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := gdb.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	kvClient, err := kvc.New(context.Background(), &configs.KVConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("create kv: %v", err)
	}

	mgr := storage.NewManager(&dbc.Client{DB: gdb}, nil, kvClient, nil)

	return ctxPkg.WithStorageManager(context.Background(), mgr)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewUserService(ctx)

	reg, err := svc.Register(ctx, &types.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if reg.User.Email != "ada@example.com" || reg.User.ID == 0 {
		t.Fatalf("unexpected user info: %+v", reg.User)
	}

	// 注册即签发可用令牌
	if reg.Token == "" {
		t.Fatal("register returned no token")
	}

	regClaims, err := svc.VerifyToken(ctx, reg.Token)
	if err != nil {
		t.Fatalf("verify register token: %v", err)
	}

	if regClaims.Email != "ada@example.com" {
		t.Fatalf("register claims email = %q", regClaims.Email)
	}

	resp, err := svc.Login(ctx, &types.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if resp.Token == "" {
		t.Fatal("empty token")
	}

	claims, err := svc.VerifyToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if claims.Email != "ada@example.com" {
		t.Fatalf("claims email = %q", claims.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewUserService(ctx)

	req := &types.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}

	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	if _, err := svc.Register(ctx, req); !errors.Is(err, service.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewUserService(ctx)

	if _, err := svc.Register(ctx, &types.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// 密码错误和用户不存在必须返回同一个错误，避免枚举
	if _, err := svc.Login(ctx, &types.LoginRequest{
		Email: "ada@example.com", Password: "wrong",
	}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.Login(ctx, &types.LoginRequest{
		Email: "nobody@example.com", Password: "correct horse",
	}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewUserService(ctx)

	if _, err := svc.VerifyToken(ctx, "not.a.token"); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewUserService(ctx)

	if _, err := svc.Register(ctx, &types.RegisterRequest{
		Name: "Grace", Email: "grace@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(ctx, &types.LoginRequest{
		Email: "grace@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.VerifyToken(ctx, resp.Token); err != nil {
		t.Fatalf("verify before revoke: %v", err)
	}

	if err := svc.RevokeToken(ctx, resp.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := svc.VerifyToken(ctx, resp.Token); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after revoke, got %v", err)
	}
}

func TestUpdateProfileChangesEmail(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewUserService(ctx)

	reg, err := svc.Register(ctx, &types.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Register(ctx, &types.RegisterRequest{
		Name: "Grace", Email: "grace@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register second: %v", err)
	}

	info, err := svc.UpdateProfile(ctx, reg.User.ID, &types.UpdateProfileRequest{
		Email: "lovelace@example.com",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}

	if info.Email != "lovelace@example.com" {
		t.Fatalf("email = %q, not updated", info.Email)
	}

	// 改成他人已占用的邮箱必须拒绝
	if _, err := svc.UpdateProfile(ctx, reg.User.ID, &types.UpdateProfileRequest{
		Email: "grace@example.com",
	}); !errors.Is(err, service.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestPasswordIsNotStoredInPlaintext(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewUserService(ctx)

	if _, err := svc.Register(ctx, &types.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	db := ctxPkg.GetDBClient(ctx)

	var user model.User
	if err := db.Where("email = ?", "ada@example.com").First(&user).Error; err != nil {
		t.Fatalf("query user: %v", err)
	}

	if user.Password == "correct horse" || user.Password == "" {
		t.Fatalf("password stored incorrectly: %q", user.Password)
	}
}
