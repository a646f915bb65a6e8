package interaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	keys     []string
	messages []interface{}
	err      error
}

func (r *recorder) Publish(_ context.Context, routingKey string, message interface{}) error {
	r.keys = append(r.keys, routingKey)
	r.messages = append(r.messages, message)
	return r.err
}

func TestNotifier_Saved(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier(rec)
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	id, account, book := uuid.New(), uuid.New(), uuid.New()
	n.Saved(context.Background(), "vote", id, account, "BOOK", &book)

	require.Equal(t, []string{"interaction.vote.saved"}, rec.keys)
	ev := rec.messages[0].(Event)
	assert.Equal(t, id, ev.ID)
	assert.Equal(t, account, ev.AccountID)
	assert.Equal(t, "BOOK", ev.TargetType)
	assert.Equal(t, &book, ev.TargetID)
	assert.Equal(t, fixed, ev.OccurredAt)
}

func TestNotifier_Deleted(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	n := NewNotifier(rec)

	// 发布失败不panic、不返回错误
	n.Deleted(context.Background(), "comment", uuid.New(), uuid.New())
	assert.Equal(t, []string{"interaction.comment.deleted"}, rec.keys)
}

func TestNotifier_NilPublisher(t *testing.T) {
	n := NewNotifier(nil)
	assert.NotPanics(t, func() {
		n.Saved(context.Background(), "favourite", uuid.New(), uuid.New(), "", nil)
	})
}
