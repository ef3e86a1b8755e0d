package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendWritesStreamEntry(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	a := New(rdc)

	at := time.Unix(1700000000, 0)
	a.now = func() time.Time { return at }

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: Stream,
		Values: []any{
			"room", "ABCD",
			"name", "alice",
			"msg", "hi",
			"at", "1700000000",
		},
	}).SetVal("1700000000-0")

	err := a.Append(context.Background(), "ABCD", "alice", "hi")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendSurfacesRedisErrors(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	a := New(rdc)
	a.now = func() time.Time { return time.Unix(42, 0) }

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: Stream,
		Values: []any{
			"room", "ABCD",
			"name", "alice",
			"msg", "hi",
			"at", "42",
		},
	}).SetErr(errors.New("redis down"))

	err := a.Append(context.Background(), "ABCD", "alice", "hi")
	assert.Error(t, err)
}
