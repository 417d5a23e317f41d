package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/ticketboard/bot/internal/app/boardsync"
	"github.com/ticketboard/bot/internal/discord"
	"github.com/ticketboard/bot/internal/platform/dbpool"
	"github.com/ticketboard/bot/internal/platform/env"
	"github.com/ticketboard/bot/internal/platform/metrics"
	"github.com/ticketboard/bot/internal/platform/natsutil"
	"github.com/ticketboard/bot/internal/store"
)

func main() {
	ctx := context.Background()

	addr := env.String("SYNCER_ADDR", env.DefaultSyncerAddr)
	natsURL := env.String("NATS_URL", env.DefaultNATSURL)
	pgURL := env.String("DATABASE_URL", env.DefaultDatabaseURL)
	apiURL := env.String("DISCORD_API_URL", env.DefaultDiscordAPIURL)
	botToken := env.String("DISCORD_BOT_TOKEN", "")
	if botToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
	}

	pool, err := dbpool.New(ctx, pgURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repo := store.NewRepository(pool)
	if err := waitForPostgres(ctx, pool, repo, 30*time.Second); err != nil {
		log.Fatal(err)
	}
	service := boardsync.NewService(repo, discord.NewClient(apiURL, botToken))

	client, err := natsutil.ConnectJetStreamWithRetry(natsURL, 20*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	sub, err := client.JS.QueueSubscribe(natsutil.RefreshSubjects, "board-syncer", func(msg *nats.Msg) {
		handleCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := service.Handle(handleCtx, msg.Data); err != nil {
			if errors.Is(err, boardsync.ErrInvalidRefreshPayload) {
				log.Printf("discarding invalid refresh payload: %v", err)
				_ = msg.Term()
				return
			}
			log.Printf("board refresh failed: %v", err)
			_ = msg.Nak()
			return
		}

		_ = msg.Ack()
	}, nats.ManualAck())
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Board Syncer listening on subject:", sub.Subject)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if client.Conn.Status() != nats.CONNECTED {
			http.Error(w, "nats not connected", http.StatusServiceUnavailable)
			return
		}
		pingCtx, cancel := context.WithTimeout(r.Context(), 1500*time.Millisecond)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			http.Error(w, "postgres not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", metrics.DefaultHandler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Println("Board Syncer metrics on", addr)
	log.Fatal(server.ListenAndServe())
}

func waitForPostgres(ctx context.Context, pool *pgxpool.Pool, repo *store.Repository, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = pool.Ping(attemptCtx)
		if lastErr == nil {
			lastErr = repo.EnsureSchema(attemptCtx)
		}
		cancel()

		if lastErr == nil {
			return nil
		}
		log.Printf("waiting for postgres readiness: %v", lastErr)
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}
