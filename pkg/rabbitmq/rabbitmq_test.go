package rabbitmq

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewPublishing(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := newPublishing([]byte(`{"to":"a@b.c"}`), now)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, now, msg.Timestamp)
	_, err := ulid.ParseStrict(msg.MessageId)
	assert.NoError(t, err)
	assert.NotEqual(t, msg.MessageId, newPublishing(nil, now).MessageId)
}

func TestClientWithoutChannel(t *testing.T) {
	c := &Client{logger: zap.NewNop()}
	assert.Error(t, c.Publish(context.Background(), "mail", []byte("{}")))
	assert.Error(t, c.Consume(context.Background(), "mail", func(context.Context, []byte) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Publish(ctx, "mail", nil), context.Canceled)
	assert.NoError(t, c.Close())
}
