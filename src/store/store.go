package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/krishivaani/krishivaani/src/config"
)

// Open connects to Postgres with the configured DSN.
func Open(cfg *config.PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Migrate installs pgvector and creates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to install pgvector extension: %w", err)
	}

	return db.AutoMigrate(
		&User{},
		&CommunityQuestion{},
		&CommunityAnswer{},
		&UserVote{},
		&ChatSession{},
		&ChatMessage{},
		&KnowledgeRow{},
	)
}

// CheckEmbeddingDimension verifies that the knowledge_base embedding
// column matches the embedding model's output width. It reads the
// declared column width (the vector typmod), so a fresh, empty database
// fails fast too instead of surfacing the mismatch on first insert.
func CheckEmbeddingDimension(db *gorm.DB, want int) error {
	var dim int
	err := db.Raw(
		"SELECT atttypmod FROM pg_attribute WHERE attrelid = 'knowledge_base'::regclass AND attname = 'embedding'",
	).Scan(&dim).Error
	if err != nil {
		return fmt.Errorf("failed to inspect knowledge_base embedding column: %w", err)
	}
	if dim != want {
		return fmt.Errorf("knowledge_base embedding column is vector(%d), embedding model produces %d", dim, want)
	}
	return nil
}
