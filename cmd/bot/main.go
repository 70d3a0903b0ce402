package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillm/debate-bot/internal/ai"
	"github.com/kirillm/debate-bot/internal/api"
	"github.com/kirillm/debate-bot/internal/collector"
	"github.com/kirillm/debate-bot/internal/config"
	"github.com/kirillm/debate-bot/internal/exchange"
	"github.com/kirillm/debate-bot/internal/execution"
	"github.com/kirillm/debate-bot/internal/notify"
	"github.com/kirillm/debate-bot/internal/orchestrator"
	"github.com/kirillm/debate-bot/internal/registry"
	"github.com/kirillm/debate-bot/internal/storage"
	"github.com/kirillm/debate-bot/internal/venue"
	"github.com/kirillm/debate-bot/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewPostgresStorage(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password,
		cfg.Database.DBName, cfg.Database.SSLMode,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		log.Fatalf("❌ Failed to init storage: %v", err)
	}
	defer store.Close()

	// Панель агентов задается YAML-файлом и синхронизируется в БД на старте
	panel, err := config.LoadPanel(cfg.Engine.AgentsFile)
	if err != nil {
		log.Fatalf("❌ Failed to load agent panel: %v", err)
	}

	reg := registry.NewRegistry(store)
	if err := reg.Sync(ctx, panel); err != nil {
		log.Fatalf("❌ Failed to sync agent panel: %v", err)
	}

	aiClient := ai.NewClient(cfg.AI.Provider, cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.RequestsPerMinute)
	col := collector.NewCollector(aiClient, store, cfg.AI.AgentTimeout)

	wallet := exchange.NewWalletEngine(cfg.Venues.WalletEngineURL, cfg.Venues.VenueTimeout)
	perp := exchange.NewPerpClient(cfg.Venues.HyperliquidAPIKey, cfg.Venues.HyperliquidAPISecret,
		cfg.Venues.HyperliquidBaseURL, cfg.Venues.VenueTimeout)
	jupiter := exchange.NewJupiterClient(cfg.Venues.JupiterBaseURL, wallet, cfg.Venues.VenueTimeout)
	oneInch := exchange.NewOneInchClient(cfg.Venues.OneInchBaseURL, cfg.Venues.OneInchAPIKey,
		wallet, cfg.Venues.VenueTimeout)

	venueCfg := venue.DefaultConfig()
	venueCfg.SizeThreshold = cfg.Engine.PerpSizeThreshold
	venueCfg.HighLeverage = cfg.Engine.HighLeverage
	venueCfg.LowLeverage = cfg.Engine.LowLeverage
	selector := venue.NewSelector(venueCfg)

	execCfg := execution.DefaultConfig()
	execCfg.SlippageBps = cfg.Engine.SlippageBps
	execCfg.VenueTimeout = cfg.Venues.VenueTimeout
	executor := execution.NewExecutor(perp, jupiter, oneInch, perp, store, execCfg)

	var notifier orchestrator.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("⚠️ Telegram notifier disabled: %v", err)
		} else {
			notifier = tg
		}
	}

	orch := orchestrator.New(reg, col, selector, executor, store, notifier, cfg.Engine.ConsensusThreshold)

	// Доисполняем решения, оборванные рестартом
	if err := orch.ResumeUnexecuted(ctx); err != nil {
		log.Printf("⚠️ Recovery sweep failed: %v", err)
	}

	server := api.NewServer(logger, orch, store, cfg.APIPort)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	}()

	log.Printf("🚀 Debate bot started: %d agents, API on :%d", len(panel), cfg.APIPort)

	<-ctx.Done()

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ HTTP server shutdown error: %v", err)
	}
	log.Println("✅ Debate bot stopped")
}
