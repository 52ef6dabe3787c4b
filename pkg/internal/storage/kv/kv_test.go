package kv_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/tmfvault/pkg/configs"
	"github.com/yeisme/tmfvault/pkg/internal/storage/kv"
)

func newMemoryStore(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), &configs.KVConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestMemoryKVSetGet(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	want := []byte(`{"zones":[]}`)
	if err := store.Set(ctx, "structure:tree", want, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := store.Get(ctx, "structure:tree")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}

	// 返回的是副本，改写不应影响存储内容
	got[0] = 'X'

	again, err := store.Get(ctx, "structure:tree")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}

	if !bytes.Equal(again, want) {
		t.Fatalf("stored value mutated: %q", again)
	}
}

func TestMemoryKVMissingKey(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	exists, err := store.Exists(ctx, "nope")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}

	if exists {
		t.Fatal("key should not exist")
	}
}

func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	if err := store.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
}

func TestMemoryKVDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "k"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := kv.New(context.Background(), &configs.KVConfig{Type: "etcd"})
	if err == nil {
		t.Fatal("expected error for unsupported kv type")
	}
}
