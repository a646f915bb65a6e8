package interaction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiebiao/bookhub/pkg/logger"
	"github.com/xiebiao/bookhub/pkg/metrics"
	"github.com/xiebiao/bookhub/pkg/mq"
)

// Journal 变更事件的消费端：逐条写入结构化日志
// 无法解析的消息直接丢弃（ACK），避免毒消息反复入队
type Journal struct {
	queue string
	seen  func(Event)
}

// NewJournal seen可为nil，用于接入下游统计
func NewJournal(queue string, seen func(Event)) *Journal {
	return &Journal{queue: queue, seen: seen}
}

// Handle 实现mq.Handler
func (j *Journal) Handle(ctx context.Context, routingKey string, body []byte) error {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		logger.C(ctx).Error().Err(err).Str("routing_key", routingKey).Bytes("body", body).Msg("事件格式错误，丢弃")
		metrics.MessagesConsumedTotal.WithLabelValues(j.queue, routingKey, "dropped").Inc()
		return nil
	}
	if e.RoutingKey() != routingKey {
		err := fmt.Errorf("routing key不一致: %s != %s", e.RoutingKey(), routingKey)
		logger.C(ctx).Error().Err(err).Msg("事件格式错误，丢弃")
		metrics.MessagesConsumedTotal.WithLabelValues(j.queue, routingKey, "dropped").Inc()
		return nil
	}

	ev := logger.C(ctx).Info().
		Str("resource", e.Resource).
		Str("action", e.Action).
		Str("id", e.ID.String()).
		Str("account_id", e.AccountID.String()).
		Time("occurred_at", e.OccurredAt)
	if e.TargetID != nil {
		ev = ev.Str("target_type", e.TargetType).Str("target_id", e.TargetID.String())
	}
	ev.Msg("互动事件")

	if j.seen != nil {
		j.seen(e)
	}
	metrics.MessagesConsumedTotal.WithLabelValues(j.queue, routingKey, "success").Inc()
	return nil
}

var _ mq.Handler = (*Journal)(nil).Handle
