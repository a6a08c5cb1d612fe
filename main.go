package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/stockpilot-poc/server/internal/agent/graph"
	"github.com/stockpilot-poc/server/internal/agent/graph/conversations"
	"github.com/stockpilot-poc/server/internal/agent/model"
	"github.com/stockpilot-poc/server/internal/agent/repo"
	"github.com/stockpilot-poc/server/internal/core"
	"github.com/stockpilot-poc/server/internal/inventory"
	logx "github.com/stockpilot-poc/server/pkg/logger"
	pkgpostgres "github.com/stockpilot-poc/server/pkg/postgres"
	pkgredis "github.com/stockpilot-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the inventory agent,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment    string `envconfig:"ENVIRONMENT" default:"development"`
	ConversationID string `envconfig:"CONVERSATION_ID" default:"local-cli"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierModelConfig
	Extractor    model.ExtractorModelConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	db, err := cfg.Postgres.New()
	if err != nil {
		log.Fatalf("Failed to initialise Postgres client: %v", err)
	}
	defer db.Close()

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", cfg.Conversation.TTL, err)
	}

	store := inventory.NewPostgresStore(db)
	history := conversations.NewHistoryManager(
		repo.NewRedisHistoryRepository(rdb, ttl),
		cfg.Conversation,
	)

	runner, err := graph.BuildTurnGraph(ctx, graph.Config{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		ClassifierModel: cfg.Classifier,
		ExtractorModel:  cfg.Extractor,
		Store:           store,
	})
	if err != nil {
		log.Fatalf("Failed to build turn workflow: %v", err)
	}

	printHeader()
	printHelp()
	printInventory(ctx, store)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			return
		case "help":
			printHelp()
			continue
		case "inventory":
			printInventory(ctx, store)
			continue
		case "clear":
			if n, err := history.Reset(ctx, cfg.ConversationID); err != nil {
				fmt.Printf("Error clearing history: %v\n", err)
			} else {
				fmt.Printf("Cleared %d stored turn(s).\n", n)
			}
			continue
		}

		fmt.Println("Processing...")

		snapshot, err := store.List(ctx)
		if err != nil {
			fmt.Printf("Error loading inventory: %v\n", err)
			continue
		}
		turns, err := history.RecentTurns(ctx, cfg.ConversationID)
		if err != nil {
			logx.Warn().Err(err).Msg("could not load chat history; continuing without it")
			turns = nil
		}

		result := runner.RunTurn(ctx, model.TurnInput{
			Message:   input,
			Inventory: snapshot,
			History:   turns,
		})

		fmt.Printf("Response: %s\n", result.Response)

		if err := history.RecordTurn(ctx, cfg.ConversationID, input, result.Response); err != nil {
			logx.Warn().Err(err).Msg("could not record chat turn")
		}
	}
}

func printHeader() {
	fmt.Println(`
	╔═══════════════════════════════════════════════════╗
	║             INVENTORY MANAGEMENT SYSTEM           ║
	╚═══════════════════════════════════════════════════╝`)
}

func printHelp() {
	fmt.Println(`
	Commands:
	---------
	- Type your question or command about inventory
	- Examples:
	    "How many laptops do we have?"
	    "Add 5 new monitors to the inventory"
	    "Delete HDMI cables from inventory"
	- Type 'inventory' to print the current table
	- Type 'clear' to wipe this session's chat history
	- Type 'exit', 'quit', or 'q' to exit
	- Type 'help' to see this help information`)
}

func printInventory(ctx context.Context, store inventory.Store) {
	items, err := store.List(ctx)
	if err != nil {
		fmt.Printf("Error loading inventory: %v\n", err)
		return
	}
	if len(items) == 0 {
		fmt.Println("\nInventory is empty.")
		return
	}

	fmt.Printf("\nCurrent Inventory (%d items):\n", len(items))
	fmt.Println(strings.Repeat("-", 74))
	fmt.Printf("%-20s %-10s %-40s\n", "Item Name", "Quantity", "Description")
	fmt.Println(strings.Repeat("-", 74))
	for _, item := range items {
		fmt.Printf("%-20s %-10d %-40s\n", item.Name, item.Quantity, item.Description)
	}
	fmt.Println(strings.Repeat("-", 74))
}
