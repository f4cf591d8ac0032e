package main

import (
	"context"   // Shutdown and ping contexts
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Exit codes
	"os/signal" // SIGINT handling
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"wallet_booking/internal/api"     // HTTP handlers and routes
	"wallet_booking/internal/config"  // Configuration
	"wallet_booking/internal/db"      // Database connection
	"wallet_booking/internal/mailer"  // Outbound email
	"wallet_booking/internal/quote"   // Price quotes
	"wallet_booking/internal/service" // Use cases
	"wallet_booking/internal/store"   // Persistence
	"wallet_booking/internal/utils"   // Logger and cache

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/sync/errgroup"   // Server and shutdown goroutines
)

const shutdownTimeout = 15 * time.Second

// Main function to set up and run the server
func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Server stopped with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		return err
	}
	utils.SetupLogger(cfg.LogLevel, cfg.IsProd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	st := store.New(gdb)

	// Setup Redis client, an empty address runs without a cache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	cache := utils.NewCache(rdb, cfg.CacheTTL)

	quotes := quote.New(cfg.QuoteAPIURL, cfg.QuoteTimeout, cache, cfg.QuoteCacheTTL)
	mail := mailer.New(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom, cfg.MailTimeout)

	checks := map[string]api.Pinger{"database": st}
	if rdb != nil {
		checks["redis"] = api.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Users: service.NewUsers(st, mail, cache, service.UsersConfig{
			JWTSecret:     cfg.JWTSecret,
			JWTTTL:        cfg.JWTTTL,
			ReferralBonus: cfg.ReferralBonus,
		}),
		Wallet:    service.NewWallet(st, quotes, mail, cache),
		Flights:   service.NewFlights(st, mail, cache),
		Accounts:  service.NewAccounts(st, cache),
		Roles:     st,
		JWTSecret: cfg.JWTSecret,
		Checks:    checks,
	})
	// Set trusted proxies for Gin
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", cfg.AppPort).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
