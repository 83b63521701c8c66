package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/shoppulse/internal/analytics"
	"github.com/MikeMC777/shoppulse/internal/auth"
	"github.com/MikeMC777/shoppulse/internal/config"
	"github.com/MikeMC777/shoppulse/internal/event"
	"github.com/MikeMC777/shoppulse/internal/grpcx"
	"github.com/MikeMC777/shoppulse/internal/httpx"
	"github.com/MikeMC777/shoppulse/internal/order"
	"github.com/MikeMC777/shoppulse/internal/product"
	"github.com/MikeMC777/shoppulse/internal/user"
)

// @title           ShopPulse Analytics API
// @version         1.0
// @description     Admin analytics and storefront event intake.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	healthcheck := flag.Bool("healthcheck", false, "probe the gRPC health service and exit")
	flag.Parse()

	cfg := config.Load()
	if *healthcheck {
		os.Exit(probe(cfg.GRPCAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	orders := order.NewPGRepo(pool)
	products := product.NewPGRepo(pool)
	users := user.NewPGRepo(pool)
	events := event.NewPGRepo(pool)

	var reporter analytics.Reporter = analytics.NewAggregator(orders, products, users, events, analytics.Options{
		Location:    cfg.Location,
		Timeout:     cfg.ReportTimeout,
		Concurrency: cfg.QueryConcurrency,
	})
	var cache reportInvalidator
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		cached := analytics.NewCachedReporter(reporter, analytics.NewRedisCache(rdb, cfg.ReportCacheTTL))
		reporter, cache = cached, cached
	}

	policy, err := auth.NewPolicy()
	if err != nil {
		log.Fatalf("auth policy: %v", err)
	}
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	r := newRouter(deps{
		reporter: reporter,
		cache:    cache,
		login:    auth.NewService(users, issuer),
		issuer:   issuer,
		policy:   policy,
		orders:   orders,
		products: products,
		events:   events,
		now:      time.Now,
	})

	if cfg.GRPCAddr != "" {
		go func() {
			if err := grpcx.NewHealth(pool, 10*time.Second).ListenAndServe(ctx, cfg.GRPCAddr); err != nil {
				log.Printf("[grpc] health server: %v", err)
			}
		}()
	}

	if err := httpx.NewServer(cfg.HTTPAddr, r).Run(ctx, 15*time.Second); err != nil {
		log.Fatal(err)
	}
	log.Printf("analytics-service stopped")
}

func probe(addr string) int {
	if addr == "" {
		log.Printf("[health] GRPC_ADDR is empty")
		return 1
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	st, err := grpcx.Probe(ctx, addr)
	if err != nil {
		log.Printf("[health] probe %s: %v", addr, err)
		return 1
	}
	log.Printf("[health] %s", st)
	if st != healthpb.HealthCheckResponse_SERVING {
		return 1
	}
	return 0
}
