package queue

import (
	"context"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"

	"github.com/yeisme/tmfvault/pkg/configs"
	"github.com/yeisme/tmfvault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/tmfvault/pkg/log"
)

// topicEnabled 根据配置判断某主题是否发布.
func topicEnabled(cfg *configs.EventsConfig, topic string) bool {
	if !cfg.Enabled {
		return false
	}

	switch topic {
	case TopicDocumentStored:
		return cfg.Document.Stored
	case TopicDocumentDeleted:
		return cfg.Document.Deleted
	case TopicTaxonomyImported:
		return cfg.Taxonomy.Imported
	default:
		return true
	}
}

// Publish 序列化载荷并发布到指定主题.
// MQ 客户端为 nil 或主题被配置关闭时直接返回 nil，不影响主流程.
// 发布失败只记日志：事件是尽力而为，不回滚业务写入.
func Publish(ctx context.Context, client *mq.Client, topic string, payload any) error {
	if client == nil {
		return nil
	}

	cfg := configs.GetConfig().Events
	if !topicEnabled(&cfg, topic) {
		return nil
	}

	data, err := sonic.Marshal(payload)
	if err != nil {
		nlog.Logger().Error().Err(err).Str("topic", topic).Msg("marshal event payload failed")
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)

	if err := client.Publish(ctx, topic, msg); err != nil {
		nlog.Logger().Error().Err(err).Str("topic", topic).Msg("publish event failed")
		return err
	}

	nlog.Logger().Debug().Str("topic", topic).Str("msg_id", msg.UUID).Msg("event published")

	return nil
}
