// Package syncmsg tails the message archive stream and persists every chat
// message into Postgres. It is the durable half of the optional archive
// pipeline; the in-memory registry stays authoritative for live history.
package syncmsg

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/archive"
)

// Run tails the Redis stream and persists every message.
func Run(ctx context.Context, rdc *redis.Client, db *sql.DB) {
	go func() {
		lastID := "0-0"
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			// block up to 2 s for new entries
			res, err := rdc.XRead(ctx, &redis.XReadArgs{
				Streams: []string{archive.Stream, lastID},
				Count:   100,
				Block:   2000 * time.Millisecond,
			}).Result()
			if err != nil && err != redis.Nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Warn("syncmsg.xread", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			if len(res) == 0 {
				continue
			}
			entries := res[0].Messages
			if err := persist(ctx, db, entries); err != nil {
				zap.L().Warn("syncmsg.persist", zap.Error(err))
				continue
			}
			lastID = entries[len(entries)-1].ID
		}
	}()
}

func persist(ctx context.Context, db *sql.DB, msgs []redis.XMessage) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const ins = `INSERT INTO messages (stream_id, room_code, author, body, sent_at)
	             VALUES ($1, $2, $3, $4, to_timestamp($5))
	             ON CONFLICT (stream_id) DO NOTHING`
	for _, m := range msgs {
		room, _ := m.Values["room"].(string)
		name, _ := m.Values["name"].(string)
		body, _ := m.Values["msg"].(string)
		at, _ := m.Values["at"].(string)

		ts, _ := strconv.ParseInt(at, 10, 64)
		if _, err := tx.ExecContext(ctx, ins, m.ID, room, name, body, ts); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
