package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/ticketboard/bot/internal/app/interactions"
	"github.com/ticketboard/bot/internal/discord"
	"github.com/ticketboard/bot/internal/platform/dbpool"
	"github.com/ticketboard/bot/internal/platform/env"
	"github.com/ticketboard/bot/internal/platform/natsutil"
	"github.com/ticketboard/bot/internal/store"
	"github.com/ticketboard/bot/internal/tracker"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := env.String("INTERACTIONS_ADDR", env.DefaultInteractionsAddr)
	pgURL := env.String("DATABASE_URL", env.DefaultDatabaseURL)
	natsURL := env.String("NATS_URL", env.DefaultNATSURL)
	apiURL := env.String("DISCORD_API_URL", env.DefaultDiscordAPIURL)
	botToken := env.String("DISCORD_BOT_TOKEN", "")
	publicKeyHex := env.String("DISCORD_PUBLIC_KEY", "")
	appID := env.String("DISCORD_APP_ID", "")
	guildID := env.String("DISCORD_GUILD_ID", "")
	shutdownTimeout := env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second)

	publicKey, err := parsePublicKey(publicKeyHex)
	if err != nil {
		log.Fatal(err)
	}
	if botToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
	}

	pool, err := dbpool.New(runCtx, pgURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repo := store.NewRepository(pool)
	if err := waitForPostgres(runCtx, pool, repo, 30*time.Second); err != nil {
		log.Fatal(err)
	}

	client, err := natsutil.ConnectJetStreamWithRetry(natsURL, 20*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	discordClient := discord.NewClient(apiURL, botToken)
	if appID != "" {
		registerCtx, cancel := context.WithTimeout(runCtx, 15*time.Second)
		err := discordClient.RegisterCommands(registerCtx, appID, guildID, discord.Commands())
		cancel()
		if err != nil {
			log.Fatalf("registering commands: %v", err)
		}
	}

	publisher := natsutil.JetStreamPublisher{JS: client.JS}
	service := interactions.NewService(tracker.NewService(repo), discordClient, publisher.Publish)
	handler := interactions.NewHandler(service, publicKey, func(ctx context.Context) error {
		return checkReadiness(ctx, pool, client.Conn)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	fmt.Printf("Interactions API listening on %s\n", addr)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Fatal(err)
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("interactions-api graceful shutdown failed: %v", err)
	}
}

func parsePublicKey(raw string) (ed25519.PublicKey, error) {
	if raw == "" {
		return nil, errors.New("DISCORD_PUBLIC_KEY is required")
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("DISCORD_PUBLIC_KEY is not valid hex: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("DISCORD_PUBLIC_KEY must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return ed25519.PublicKey(key), nil
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

func checkReadiness(ctx context.Context, pool *pgxpool.Pool, conn *nats.Conn) error {
	if conn == nil {
		return errors.New("nats connection is nil")
	}
	if conn.Status() != nats.CONNECTED {
		return fmt.Errorf("nats is not connected: %s", conn.Status().String())
	}

	checkCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
	defer cancel()
	if err := pool.Ping(checkCtx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}
