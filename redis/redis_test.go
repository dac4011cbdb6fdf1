package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*RedisClient, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	return &RedisClient{Client: client}, mock
}

func TestSetTyping(t *testing.T) {
	r, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectSet("helpdesk:typing:7:user", "1", 5*time.Second).SetVal("OK")
	require.NoError(t, r.SetTyping(ctx, 7, "user", true))

	// Clearing deletes the key instead of writing a tombstone.
	mock.ExpectDel("helpdesk:typing:7:user").SetVal(1)
	require.NoError(t, r.SetTyping(ctx, 7, "user", false))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTyping(t *testing.T) {
	r, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectGet("helpdesk:typing:3:agent").SetVal("1")
	typing, err := r.GetTyping(ctx, 3, "agent")
	require.NoError(t, err)
	assert.True(t, typing)

	// Expired or never set reads as not typing, not an error.
	mock.ExpectGet("helpdesk:typing:3:user").RedisNil()
	typing, err = r.GetTyping(ctx, 3, "user")
	require.NoError(t, err)
	assert.False(t, typing)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoundRobinCursor(t *testing.T) {
	r, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectSet("helpdesk:rr:dept:2", "14", 24*time.Hour).SetVal("OK")
	require.NoError(t, r.SetLastAgent(ctx, 2, 14))

	mock.ExpectGet("helpdesk:rr:dept:2").SetVal("14")
	id, err := r.LastAgent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(14), id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastAgentUnset(t *testing.T) {
	r, mock := newMockClient(t)
	ctx := context.Background()

	mock.ExpectGet("helpdesk:rr:dept:0").RedisNil()
	id, err := r.LastAgent(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, id)

	// Garbage cursor values reset the rotation rather than erroring.
	mock.ExpectGet("helpdesk:rr:dept:5").SetVal("not-a-number")
	id, err = r.LastAgent(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}
