package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bellhop/bellhop/internal/ai"
	"github.com/bellhop/bellhop/internal/api"
	"github.com/bellhop/bellhop/internal/bot"
	"github.com/bellhop/bellhop/internal/channel"
	"github.com/bellhop/bellhop/internal/config"
	"github.com/bellhop/bellhop/internal/db"
	"github.com/bellhop/bellhop/internal/matcher"
	"github.com/bellhop/bellhop/internal/models"
	"github.com/bellhop/bellhop/internal/session"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// aiKeyEnv names the environment variable the AI API key is read from.
const aiKeyEnv = "BELLHOP_AI_API_KEY"

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chatbot server",
		Long:  "Starts the webhook and management HTTP server plus the session expiry scheduler. Blocks until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bellhop.yaml", "path to Bellhop config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Database.Database, err)
	}

	store, err := session.NewStore(gormDB)
	if err != nil {
		return err
	}

	sender, err := channel.NewTwilioSender(cfg.Channel.From)
	if err != nil {
		return err
	}

	responder, err := buildResponder(cfg)
	if err != nil {
		return err
	}

	registry := matcher.NewRegistry()
	var rules []models.KeywordReply
	if err := gormDB.Where("enabled = ?", true).Find(&rules).Error; err != nil {
		return fmt.Errorf("load keyword rules: %w", err)
	}
	if err := matcher.ValidateRules(rules, registry); err != nil {
		return err
	}

	processor, err := bot.NewProcessor(bot.ProcessorOpts{
		DB:        gormDB,
		Store:     store,
		Sender:    sender,
		Responder: responder,
		Registry:  registry,
		Account:   cfg.Account,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Session expiry sweep.
	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Session.SweepCron, func() {
		if _, err := store.ExpireStale(ttl); err != nil {
			log.Printf("serve: expire sweep: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", cfg.Session.SweepCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bellhop serving account %q\n", cfg.Account)

	return api.Start(ctx, api.StartOpts{
		DB:        gormDB,
		Store:     store,
		Processor: processor,
		Account:   cfg.Account,
		Port:      cfg.Server.Port,
		Out:       out,
	})
}

// buildResponder constructs the AI fallback from config and environment.
// An empty provider disables the fallback entirely.
func buildResponder(cfg *config.Config) (*ai.Responder, error) {
	if cfg.AI.Provider == "" {
		return nil, nil
	}

	apiKey := os.Getenv(aiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("ai.provider is %q but %s is not set", cfg.AI.Provider, aiKeyEnv)
	}

	timeout := time.Duration(cfg.AI.TimeoutSecs) * time.Second
	var provider ai.Provider
	var err error
	switch cfg.AI.Provider {
	case "openai":
		provider, err = ai.NewOpenAIClient(apiKey, cfg.AI.BaseURL, timeout)
	case "anthropic":
		provider, err = ai.NewAnthropicClient(apiKey, cfg.AI.BaseURL, timeout)
	default:
		return nil, fmt.Errorf("ai.provider %q is not supported", cfg.AI.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &ai.Responder{
		Provider:   provider,
		Cache:      ai.NewCache(0, ai.DefaultCacheTTL),
		MaxRetries: cfg.AI.MaxRetries,
	}, nil
}
