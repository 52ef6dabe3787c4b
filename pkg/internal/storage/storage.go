// Package storage 聚合存储资源：关系库、对象存储、KV 缓存和消息队列.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	s3Client := mgr.GetS3Client()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/tmfvault/pkg/configs"
	dbc "github.com/yeisme/tmfvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/tmfvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/tmfvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/tmfvault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

// Manager 聚合所有存储资源. MQ 可按配置关闭，此时字段为 nil.
type Manager struct {
	S3 *s3c.Client
	DB *dbc.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx, &cfg.DB)
		if e != nil {
			err = e
			return
		}

		m.DB = dbi

		// S3
		s3i, e := s3c.New(ctx, &cfg.S3)
		if e != nil {
			err = e
			return
		}

		m.S3 = s3i

		// KV
		kvi, e := kvc.New(ctx, &cfg.KV)
		if e != nil {
			err = e
			return
		}

		m.KV = kvi

		// MQ（可选）
		if cfg.MQ.Enabled {
			mqi, e := mqc.New(ctx, &cfg.MQ)
			if e != nil {
				err = e
				return
			}

			m.MQ = mqi
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// NewManager 从显式客户端组装 Manager，供测试注入使用.
func NewManager(db *dbc.Client, s3 *s3c.Client, kv *kvc.Client, mq *mqc.Client) *Manager {
	return &Manager{DB: db, S3: s3, KV: kv, MQ: mq}
}

// Close 依次关闭所有存储资源.
func (m *Manager) Close() error {
	var err error

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	if m.KV != nil {
		if e := m.KV.Close(); e != nil {
			err = e
		}
	}

	if m.S3 != nil {
		if e := m.S3.Close(); e != nil {
			err = e
		}
	}

	if m.DB != nil {
		if e := m.DB.Close(); e != nil {
			err = e
		}
	}

	return err
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端，未启用时返回 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}
