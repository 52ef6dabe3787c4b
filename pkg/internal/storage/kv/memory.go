package kv

import (
	"context"
	"sync"
	"time"

	"github.com/yeisme/tmfvault/pkg/configs"
)

// memoryEntry 带过期时间的值.
type memoryEntry struct {
	data      []byte
	expiresAt time.Time // 零值表示不过期
}

// expired 判断条目是否已过期.
func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryKV 基于 sync.Map 的内存 KV 实现，过期条目在读取时惰性清理.
type MemoryKV struct {
	data sync.Map
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(ctx context.Context, _ *configs.KVConfig) (KVStore, error) {
	// 内存实现不需要特殊配置
	return &MemoryKV{}, nil
}

// Get 获取键的值.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, exists := m.data.Load(key)
	if !exists {
		return nil, ErrKeyNotFound
	}

	entry, ok := value.(*memoryEntry)
	if !ok {
		return nil, ErrKeyNotFound
	}

	if entry.expired(time.Now()) {
		m.data.Delete(key)
		return nil, ErrKeyNotFound
	}

	// 返回副本
	result := make([]byte, len(entry.data))
	copy(result, entry.data)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	entry := &memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.data.Store(key, entry)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	value, exists := m.data.Load(key)
	if !exists {
		return false, nil
	}

	entry, ok := value.(*memoryEntry)
	if !ok {
		return false, nil
	}

	if entry.expired(time.Now()) {
		m.data.Delete(key)
		return false, nil
	}

	return true, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
