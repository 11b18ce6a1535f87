package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acsgmao/mcp/internal/adapter/agentclient"
	"github.com/acsgmao/mcp/internal/adapter/callback"
	"github.com/acsgmao/mcp/internal/config"
	"github.com/acsgmao/mcp/internal/dispatch"
	"github.com/acsgmao/mcp/internal/registry"
	"github.com/acsgmao/mcp/internal/service"
	"github.com/acsgmao/mcp/internal/store"
	transport "github.com/acsgmao/mcp/internal/transport/http"
	"github.com/acsgmao/mcp/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting MCP...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Analysis capability: %s", cfg.AnalysisCapability)
	if cfg.WebhookAPIKey == "" {
		log.Printf("WARN: GMAO_WEBHOOK_API_KEY is not set; webhook ingress will reject all requests")
	}

	// Initialize audit store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize agent registry and staleness janitor
	reg := registry.New()
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	reg.StartJanitor(janitorCtx, cfg.HeartbeatTTL)

	// Initialize dispatcher
	agents := agentclient.NewClient()
	dispatcher := dispatch.New(reg, agents, cfg.AgentTimeout)

	// Initialize callback notifier
	notifier := callback.NewClient(cfg.CallbackURL, cfg.CallbackAPIKey, cfg.CallbackTimeout, cfg.CallbackBackoff, cfg.CallbackMaxAttempts)

	// Initialize admission policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(reg, dispatcher, db, notifier, policyEngine, cfg)

	// Create HTTP server
	server := transport.NewServer(svc)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("MCP API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down MCP...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	// Let in-flight incident forwards finish before closing the store.
	svc.Drain()

	log.Println("MCP stopped")
}
