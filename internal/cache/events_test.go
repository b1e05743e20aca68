package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketeria/ticketeria/internal/domain"
)

func TestEventCache_NilReceiver(t *testing.T) {
	var c *EventCache

	_, err := c.GetEvents(context.Background())
	assert.ErrorIs(t, err, ErrMiss)

	// Writes on a nil cache must be silent no-ops.
	c.SetEvents(context.Background(), []domain.Event{{ID: 1}})
	c.Invalidate(context.Background())
}

func TestEventCache_GetEvents(t *testing.T) {
	events := []domain.Event{
		{ID: 1, Title: "Summer Concert", Location: "Town Hall"},
	}
	payload, err := json.Marshal(events)
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(eventListKey).SetVal(string(payload))

		c := NewEventCacheWithClient(client, time.Minute)

		got, err := c.GetEvents(context.Background())

		require.NoError(t, err)
		assert.Equal(t, events, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(eventListKey).RedisNil()

		c := NewEventCacheWithClient(client, time.Minute)

		_, err := c.GetEvents(context.Background())

		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(eventListKey).SetVal("{not json")

		c := NewEventCacheWithClient(client, time.Minute)

		_, err := c.GetEvents(context.Background())

		assert.ErrorIs(t, err, ErrMiss)
	})
}

func TestEventCache_SetAndInvalidate(t *testing.T) {
	events := []domain.Event{{ID: 1, Title: "Summer Concert"}}
	payload, err := json.Marshal(events)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectSet(eventListKey, payload, time.Minute).SetVal("OK")
	mock.ExpectDel(eventListKey).SetVal(1)

	c := NewEventCacheWithClient(client, time.Minute)

	c.SetEvents(context.Background(), events)
	c.Invalidate(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}
