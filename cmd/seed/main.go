package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/embedding"
	"github.com/krishivaani/krishivaani/src/store"
)

// seed embeds an English question/answer CSV and loads it into the
// knowledge base. Expected columns: question,answer (header row skipped).
func main() {
	csvPath := flag.String("csv", "data/knowledge_base.csv", "path to the question,answer CSV")
	source := flag.String("source", "manual", "source tag recorded on each entry")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := store.Open(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *csvPath, err)
	}
	defer f.Close()

	clientCfg := goopenai.DefaultConfig(cfg.Embedding.APIKey)
	if cfg.Embedding.Endpoint != "" {
		clientCfg.BaseURL = cfg.Embedding.Endpoint
	}
	client := goopenai.NewClientWithConfig(clientCfg)

	knowledge := store.NewKnowledgeStore(db)
	ctx := context.Background()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows []store.KnowledgeRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read CSV line %d: %v", line+1, err)
		}
		line++
		if line == 1 || len(record) < 2 || record[0] == "" {
			continue
		}

		question, answer := record[0], record[1]

		embedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		resp, err := client.CreateEmbeddings(embedCtx, goopenai.EmbeddingRequest{
			Input:          []string{question},
			Model:          goopenai.EmbeddingModel(cfg.Embedding.Model),
			EncodingFormat: goopenai.EmbeddingEncodingFormatFloat,
		})
		cancel()
		if err != nil {
			log.Fatalf("Failed to embed line %d: %v", line, err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) != cfg.Embedding.Dimension {
			log.Fatalf("Unexpected embedding shape on line %d", line)
		}

		rows = append(rows, store.KnowledgeRow{
			Question:  question,
			Answer:    answer,
			Language:  "en",
			Embedding: pgvector.NewVector(embedding.Normalize(resp.Data[0].Embedding)),
			Source:    *source,
		})

		if line%50 == 0 {
			log.Printf("Embedded %d entries...", len(rows))
		}
	}

	if err := knowledge.Insert(ctx, rows); err != nil {
		log.Fatalf("Failed to insert entries: %v", err)
	}

	total, err := knowledge.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count entries: %v", err)
	}

	log.Printf("Seeded %d entries (%d total in knowledge_base)", len(rows), total)
}
