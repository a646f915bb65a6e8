package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/bookhub/pkg/circuitbreaker"
)

type recordingPublisher struct {
	keys []string
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	r.keys = append(r.keys, routingKey)
	return r.err
}

func TestNopPublisher(t *testing.T) {
	var p EventPublisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "interaction.comment.saved", map[string]string{"id": "1"}))
}

func TestGuardedPublisher_Forwards(t *testing.T) {
	next := &recordingPublisher{}
	cb := circuitbreaker.NewCircuitBreaker("mq-test-forward", circuitbreaker.Config{Timeout: time.Minute})
	p := NewGuardedPublisher(next, cb, "bookhub.events")

	assert.NoError(t, p.Publish(context.Background(), "interaction.vote.saved", struct{}{}))
	assert.Equal(t, []string{"interaction.vote.saved"}, next.keys)
}

func TestGuardedPublisher_SwallowsFailureAndTrips(t *testing.T) {
	next := &recordingPublisher{err: errors.New("channel/connection is not open")}
	cb := circuitbreaker.NewCircuitBreaker("mq-test-trip", circuitbreaker.Config{
		Timeout:     time.Minute,
		ReadyToTrip: func(c circuitbreaker.Counts) bool { return c.ConsecutiveFailures >= 2 },
	})
	p := NewGuardedPublisher(next, cb, "bookhub.events")

	for i := 0; i < 4; i++ {
		assert.NoError(t, p.Publish(context.Background(), "interaction.favourite.saved", nil), "发布失败不应影响主流程")
	}

	assert.Len(t, next.keys, 2, "熔断后不再调用下游")
	assert.Equal(t, circuitbreaker.StateOpen, cb.State())
}
