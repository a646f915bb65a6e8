// Package interaction 评论、投票、收藏变更事件
//
// 变更成功后发布到RabbitMQ，routing key为 interaction.<resource>.<action>，
// 例如 interaction.vote.saved、interaction.comment.deleted
package interaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/pkg/logger"
	"github.com/xiebiao/bookhub/pkg/mq"
)

const (
	ActionSaved   = "saved"
	ActionDeleted = "deleted"
)

// Event 变更事件
type Event struct {
	Resource   string     `json:"resource"`
	Action     string     `json:"action"`
	ID         uuid.UUID  `json:"id"`
	AccountID  uuid.UUID  `json:"accountId"`
	TargetType string     `json:"targetType,omitempty"`
	TargetID   *uuid.UUID `json:"targetId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// RoutingKey 事件的routing key
func (e Event) RoutingKey() string {
	return "interaction." + e.Resource + "." + e.Action
}

// Notifier 事件发布
// 事件是尽力投递的，发布失败不影响已完成的写操作
type Notifier struct {
	pub mq.EventPublisher
	now func() time.Time
}

// NewNotifier pub为nil时不发布
func NewNotifier(pub mq.EventPublisher) *Notifier {
	if pub == nil {
		pub = mq.NopPublisher{}
	}
	return &Notifier{pub: pub, now: time.Now}
}

// Notify 补全时间后发布
func (n *Notifier) Notify(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = n.now().UTC()
	}
	if err := n.pub.Publish(ctx, e.RoutingKey(), e); err != nil {
		logger.C(ctx).Warn().Err(err).Str("routing_key", e.RoutingKey()).Msg("事件发布失败")
	}
}

// Saved 保存成功
func (n *Notifier) Saved(ctx context.Context, resource string, id, accountID uuid.UUID, targetType string, targetID *uuid.UUID) {
	n.Notify(ctx, Event{
		Resource:   resource,
		Action:     ActionSaved,
		ID:         id,
		AccountID:  accountID,
		TargetType: targetType,
		TargetID:   targetID,
	})
}

// Deleted 删除成功
func (n *Notifier) Deleted(ctx context.Context, resource string, id, accountID uuid.UUID) {
	n.Notify(ctx, Event{
		Resource:  resource,
		Action:    ActionDeleted,
		ID:        id,
		AccountID: accountID,
	})
}
