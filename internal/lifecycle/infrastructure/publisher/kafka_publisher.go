// Package publisher 提供退市事件的 Kafka 发布实现。
package publisher

import (
	"context"

	"github.com/wyfcoding/optionlifecycle/internal/lifecycle/domain"
	"github.com/wyfcoding/optionlifecycle/pkg/mq"
)

// KafkaDelistingPublisher 将退市事件发布到 Kafka
type KafkaDelistingPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaDelistingPublisher 构造函数
func NewKafkaDelistingPublisher(producer *mq.KafkaProducer, topic string) domain.DelistingPublisher {
	return &KafkaDelistingPublisher{
		producer: producer,
		topic:    topic,
	}
}

// PublishContractDelisted 实现 domain.DelistingPublisher
func (p *KafkaDelistingPublisher) PublishContractDelisted(ctx context.Context, event domain.ContractDelistedEvent) error {
	return p.producer.SendMessage(ctx, p.topic, event.ContractID, event)
}
