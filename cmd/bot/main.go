package main

import (
	"context"
	"os"

	"github.com/hoavien/restaurant-bot/internal/bot"
	"github.com/hoavien/restaurant-bot/internal/extract"
	"github.com/hoavien/restaurant-bot/internal/ingest"
	"github.com/hoavien/restaurant-bot/internal/llm"
	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/menu"
	"github.com/hoavien/restaurant-bot/internal/order"
	"github.com/hoavien/restaurant-bot/internal/rag"
	"github.com/hoavien/restaurant-bot/internal/vectorstore"
)

type Config struct {
	TelegramToken string
	MenuPath      string
	InfoPath      string
	OrderLogPath  string
	VocabPath     string
	LogMode       string
}

func main() {
	log, err := logger.New(getEnvOrDefault("LOG_MODE", "dev"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting Hòa Viên restaurant bot")
	config := loadConfig(log)

	ctx := context.Background()

	menuIndex := menu.Load(config.MenuPath, log)
	orderLog := order.NewLog(config.OrderLogPath, log)
	store := order.NewStore(menuIndex, orderLog, log)

	vocab := extract.DefaultVocab()
	if config.VocabPath != "" {
		vocab, err = extract.LoadVocab(config.VocabPath)
		if err != nil {
			log.Warn("vocab file not loaded, using defaults", "path", config.VocabPath, "error", err)
		}
	}
	extractor := extract.New(vocab)

	llmClient, err := llm.NewClient(log)
	if err != nil {
		log.Fatal("failed to initialize llm client", "error", err)
	}

	qdrant, err := vectorstore.NewQdrant(log, vectorstore.ConfigFromEnv())
	if err != nil {
		log.Fatal("failed to initialize qdrant store", "error", err)
	}

	log.Info("ingesting restaurant data")
	ingestor := ingest.New(log, qdrant, llmClient)
	if err := ingestor.Run(ctx, config.MenuPath, config.InfoPath); err != nil {
		log.Fatal("ingestion failed", "error", err)
	}

	engine := rag.NewEngine(
		log,
		rag.NewPlanner(log, llmClient),
		rag.NewRetriever(log, llmClient, qdrant),
		rag.NewReader(log, llmClient, extractor),
		llmClient,
		store,
		extractor,
		menuIndex,
	)

	log.Info("starting telegram bot")
	telegramBot, err := bot.New(bot.Config{Token: config.TelegramToken}, engine, log)
	if err != nil {
		log.Fatal("failed to initialize bot", "error", err)
	}

	if err := telegramBot.Run(ctx); err != nil {
		log.Fatal("bot stopped", "error", err)
	}
}

func loadConfig(log *logger.Logger) Config {
	return Config{
		TelegramToken: mustGetEnv(log, "TELEGRAM_BOT_TOKEN"),
		MenuPath:      getEnvOrDefault("MENU_PATH", "./data/menu.json"),
		InfoPath:      getEnvOrDefault("INFO_PATH", "./data/restaurant_info.txt"),
		OrderLogPath:  getEnvOrDefault("ORDER_LOG_PATH", "./data/orders_log.jsonl"),
		VocabPath:     os.Getenv("VOCAB_PATH"), // Optional - overrides the built-in word tables
		LogMode:       getEnvOrDefault("LOG_MODE", "dev"),
	}
}

func mustGetEnv(log *logger.Logger, key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal("required environment variable is not set", "key", key)
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
