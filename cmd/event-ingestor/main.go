package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/shoppulse/internal/config"
	"github.com/MikeMC777/shoppulse/internal/event"
)

func main() {
	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	log.Printf("event-ingestor brokers=%s topic=%s", strings.Join(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
	event.NewConsumer(event.NewPGRepo(pool), cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID).Run(ctx)
}
