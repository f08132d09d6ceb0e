package retrieval

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krishivaani/krishivaani/src/models"
)

// searchSQL ranks by cosine distance with ascending id as the tie-break,
// so repeated calls over a fixed knowledge base return the same order.
const searchSQL = `
SELECT id, question, answer, language, source, 1 - (embedding <=> ?) AS score
FROM knowledge_base
ORDER BY embedding <=> ?, id ASC
LIMIT ?`

// PgvectorRetriever finds the top-k knowledge-base entries most similar
// to a query vector using the pgvector cosine distance operator. Entry
// embeddings are L2-normalized at ingestion, matching the query side.
type PgvectorRetriever struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPgvectorRetriever(db *gorm.DB, logger *zap.Logger) *PgvectorRetriever {
	return &PgvectorRetriever{
		db:     db,
		logger: logger,
	}
}

type entryRow struct {
	ID       uint
	Question string
	Answer   string
	Language string
	Source   string
	Score    float64
}

func (r *PgvectorRetriever) Search(ctx context.Context, vector []float32, k int) (models.RetrievalResult, error) {
	if k <= 0 {
		k = 3
	}

	vec := pgvector.NewVector(vector)

	var rows []entryRow
	err := r.db.WithContext(ctx).Raw(searchSQL, vec, vec, k).Scan(&rows).Error
	if err != nil {
		r.logger.Error("vector search failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrRetrievalUnavailable, err)
	}

	return toResult(rows), nil
}

func toResult(rows []entryRow) models.RetrievalResult {
	result := make(models.RetrievalResult, len(rows))
	for i, row := range rows {
		result[i] = models.KnowledgeEntry{
			ID:       row.ID,
			Question: row.Question,
			Answer:   row.Answer,
			Language: models.Language(row.Language),
			Source:   row.Source,
			Score:    row.Score,
		}
	}
	return result
}
