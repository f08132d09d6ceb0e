package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// KnowledgeStore writes knowledge-base entries. Only the seeding tool
// uses it; the serving path reads through the retriever.
type KnowledgeStore struct {
	db *gorm.DB
}

func NewKnowledgeStore(db *gorm.DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

func (s *KnowledgeStore) Insert(ctx context.Context, rows []KnowledgeRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("failed to insert knowledge entries: %w", err)
	}
	return nil
}

func (s *KnowledgeStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&KnowledgeRow{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count knowledge entries: %w", err)
	}
	return count, nil
}
