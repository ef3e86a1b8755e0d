package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Varunv003/chatroom-zkp-protocol/internal/archive"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/config"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/database/db_client"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/http/http_server"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/keys"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/proof"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/redis/redis_client"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/registry"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/services/chat"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/syncmsg"
	"github.com/Varunv003/chatroom-zkp-protocol/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Process key pair — the service must not start without one
	keyPair, err := keys.Generate()
	if err != nil {
		Log.Fatal("Failed to generate service key pair", zap.Error(err))
	}
	proofService := proof.NewService(keyPair)

	// 4. Room registry + idle-room janitor
	roomRegistry := registry.New(cfg.RoomCodeLength)
	registry.RunReaper(ctx, roomRegistry, cfg.RoomReapInterval, cfg.RoomMaxIdle)

	// 5. Optional archive pipeline: Redis stream ➜ Postgres
	var archiver *archive.Archiver
	if cfg.MessageArchiveEnabled {
		redisClient, err := redis_client.NewRedisClient(cfg.RedisMessagesHost, int(cfg.RedisMessagesPort))
		if err != nil {
			Log.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()

		pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort,
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			Log.Fatal("pg-open", zap.Error(err))
		}
		defer pgDb.Close()

		archiver = archive.New(redisClient)
		syncmsg.Run(ctx, redisClient, pgDb)
	}

	// 6. WebSockets hub (fan-out)
	hub := ws.NewHub()

	// 7. Chat service: rooms, admission proofs, broadcast
	chatService := chat.NewChatService(roomRegistry, proofService, hub, archiver)

	// 8. Initialize the WS server
	wsSrv := ws.NewWsServer(hub, chatService)

	// 9. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, chatService)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
