package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/lead-relay/internal/api"
	"github.com/ignite/lead-relay/internal/channel/twilio"
	"github.com/ignite/lead-relay/internal/config"
	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/pkg/logger"
	"github.com/ignite/lead-relay/internal/repository/memory"
	"github.com/ignite/lead-relay/internal/repository/postgres"
	"github.com/ignite/lead-relay/internal/service/activity"
	"github.com/ignite/lead-relay/internal/service/deliverylog"
	"github.com/ignite/lead-relay/internal/service/dispatch"
	"github.com/ignite/lead-relay/internal/service/registry"
	"github.com/ignite/lead-relay/internal/template"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func parseLevel(s string) logger.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}

func main() {
	log.Println("Lead Relay — CRM lead notification dispatcher")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(parseLevel(cfg.Logging.Level))

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	// Delivery log: Postgres when configured, in-memory otherwise
	var repo deliverylog.Repository
	if dsn := cfg.Storage.DatabaseURL; dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Fatalf("Database unreachable (%s): %v", extractHost(dsn), err)
		}
		cancel()
		if _, err := db.Exec(postgres.Schema); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		repo = postgres.NewDeliveryRepo(db)
		log.Printf("Delivery log: PostgreSQL at %s", extractHost(dsn))
	} else {
		repo = memory.NewDeliveryRepo()
		log.Println("Delivery log: in-memory (DATABASE_URL not set, records are lost on restart)")
	}
	logSvc := deliverylog.NewLog(repo)

	// Activity feed: Redis when configured, in-memory otherwise
	var feed activity.Feed
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — using in-memory feed", cfg.Redis.Addr, err)
			client.Close()
			feed = activity.NewMemoryFeed(cfg.Redis.FeedSize)
		} else {
			feed = activity.NewRedisFeed(client, cfg.Redis.FeedSize)
			log.Printf("Activity feed: Redis at %s", cfg.Redis.Addr)
		}
		cancel()
	} else {
		feed = activity.NewMemoryFeed(cfg.Redis.FeedSize)
		log.Println("Activity feed: in-memory (REDIS_ADDR not set)")
	}

	// Vendor registry seeded from config
	seed := make([]domain.Recipient, 0, len(cfg.Vendors))
	for _, v := range cfg.Vendors {
		seed = append(seed, domain.Recipient{
			Name:        v.Name,
			Destination: v.Number,
			Active:      v.IsActive(),
		})
	}
	reg := registry.New(seed)
	log.Printf("Vendor registry seeded with %d vendors", len(seed))

	store := template.NewStore(cfg.Template.Message)
	renderer := template.NewRenderer(cfg.Template.Fallback)

	monitor := activity.NewMonitor(activity.NewTracker(), feed)

	sender := twilio.New(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.MaxRetries)
	if cfg.Twilio.AccountSID == "" {
		log.Println("Warning: Twilio credentials not configured — sends will fail until TWILIO_ACCOUNT_SID is set")
	}

	engine := dispatch.NewEngine(reg, store, renderer, logSvc, sender, monitor, dispatch.Options{
		MaxConcurrent: cfg.Dispatch.MaxConcurrent,
		SendTimeout:   cfg.Dispatch.SendTimeout(),
	})

	handlers := api.NewHandlers(engine, logSvc, reg, store, renderer, monitor)
	router := api.SetupRoutes(handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
