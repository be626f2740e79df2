// Command assistant runs the ordering assistant without Telegram: batch mode
// answers every line of sentences.txt into answer.txt, interactive mode reads
// from stdin. Batch mode is used for offline evaluation of the dialogue loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoavien/restaurant-bot/internal/extract"
	"github.com/hoavien/restaurant-bot/internal/ingest"
	"github.com/hoavien/restaurant-bot/internal/llm"
	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/menu"
	"github.com/hoavien/restaurant-bot/internal/order"
	"github.com/hoavien/restaurant-bot/internal/rag"
	"github.com/hoavien/restaurant-bot/internal/vectorstore"
)

const batchUserID = "batch_user"

func main() {
	log, err := logger.New(getEnvOrDefault("LOG_MODE", "dev"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	menuPath := getEnvOrDefault("MENU_PATH", "./data/menu.json")
	infoPath := getEnvOrDefault("INFO_PATH", "./data/restaurant_info.txt")
	orderLogPath := getEnvOrDefault("ORDER_LOG_PATH", "./data/orders_log.jsonl")
	inputDir := getEnvOrDefault("INPUT_DIR", ".")
	outputDir := getEnvOrDefault("OUTPUT_DIR", ".")

	ctx := context.Background()

	menuIndex := menu.Load(menuPath, log)
	store := order.NewStore(menuIndex, order.NewLog(orderLogPath, log), log)
	extractor := extract.New(extract.DefaultVocab())

	llmClient, err := llm.NewClient(log)
	if err != nil {
		log.Fatal("failed to initialize llm client", "error", err)
	}

	qdrant, err := vectorstore.NewQdrant(log, vectorstore.ConfigFromEnv())
	if err != nil {
		log.Fatal("failed to initialize qdrant store", "error", err)
	}

	if err := ingest.New(log, qdrant, llmClient).Run(ctx, menuPath, infoPath); err != nil {
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

	inputPath := filepath.Join(inputDir, "sentences.txt")
	if _, err := os.Stat(inputPath); err == nil {
		if err := runBatch(ctx, log, engine, inputPath, filepath.Join(outputDir, "answer.txt")); err != nil {
			log.Fatal("batch run failed", "error", err)
		}
		return
	}
	runInteractive(ctx, engine)
}

// runBatch answers every non-empty input line in order, sharing one session so
// an order built up by earlier lines is visible to later ones.
func runBatch(ctx context.Context, log *logger.Logger, engine *rag.Engine, inputPath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var sb strings.Builder
	count := 0
	for _, line := range strings.Split(string(raw), "\n") {
		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		answer := engine.Process(ctx, batchUserID, query)
		sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n", query, answer))
		sb.WriteString(strings.Repeat("-", 4))
		sb.WriteString("\n")
		count++
	}

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("batch complete", "questions", count, "output", outputPath)
	return nil
}

func runInteractive(ctx context.Context, engine *rag.Engine) {
	fmt.Println("Trợ lý đặt món Hòa Viên. Gõ 'exit' để thoát.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			return
		}
		fmt.Println(engine.Process(ctx, batchUserID, query))
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
