// Package archive mirrors every published chat message into a Redis stream.
// The stream is an off-to-the-side audit feed (tailed by syncmsg into
// Postgres); the registry remains the authoritative history.
package archive

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const Stream = "messages_stream"

type Archiver struct {
	rdc *redis.Client
	now func() time.Time // swappable in tests
}

func New(rdc *redis.Client) *Archiver { return &Archiver{rdc: rdc, now: time.Now} }

// Append XADDs one message. Best-effort: callers log and move on when it
// fails, broadcast must never stall on the archive.
func (a *Archiver) Append(ctx context.Context, room, name, body string) error {
	// Slice form keeps the field order stable on the wire.
	return a.rdc.XAdd(ctx, &redis.XAddArgs{
		Stream: Stream,
		Values: []any{
			"room", room,
			"name", name,
			"msg", body,
			"at", strconv.FormatInt(a.now().Unix(), 10),
		},
	}).Err()
}
