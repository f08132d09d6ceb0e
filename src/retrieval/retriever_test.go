package retrieval

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/krishivaani/krishivaani/src/models"
	"github.com/krishivaani/krishivaani/src/store"
)

func TestSearchSQLDeterministicOrder(t *testing.T) {
	normalized := strings.Join(strings.Fields(searchSQL), " ")

	assert.Contains(t, normalized, "ORDER BY embedding <=> ?, id ASC",
		"equal distances must resolve by ascending id")
	assert.Contains(t, normalized, "1 - (embedding <=> ?) AS score")
	assert.Contains(t, normalized, "LIMIT ?")
}

func TestSearchWrapsStoreFailure(t *testing.T) {
	// A database without the vector operator or the knowledge_base table:
	// the failure must surface as a retrieval outage, not a raw driver error.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	r := NewPgvectorRetriever(db, zap.NewNop())
	_, err = r.Search(context.Background(), []float32{0.1, 0.2}, 3)
	assert.ErrorIs(t, err, models.ErrRetrievalUnavailable)
}

func TestToResultMapping(t *testing.T) {
	rows := []entryRow{
		{ID: 7, Question: "q1", Answer: "a1", Language: "en", Source: "icar", Score: 0.91},
		{ID: 3, Question: "q2", Answer: "a2", Language: "en", Source: "icar", Score: 0.87},
	}

	result := toResult(rows)

	require.Len(t, result, 2)
	assert.Equal(t, models.KnowledgeEntry{
		ID: 7, Question: "q1", Answer: "a1", Language: models.LangEnglish, Source: "icar", Score: 0.91,
	}, result[0])
	assert.Equal(t, uint(3), result[1].ID, "row order preserved")
}

// Runs only against a real pgvector database, e.g.
// TEST_DATABASE_URL=postgres://... go test ./src/retrieval/
func TestSearchTieBreakIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	require.NoError(t, store.CheckEmbeddingDimension(db, 768),
		"a freshly migrated column must pass the width check")

	ctx := context.Background()
	require.NoError(t, db.Exec("DELETE FROM knowledge_base").Error)

	vec := make([]float32, 768)
	vec[0] = 1

	knowledge := store.NewKnowledgeStore(db)
	require.NoError(t, knowledge.Insert(ctx, []store.KnowledgeRow{
		{Question: "first at this distance", Answer: "a", Language: "en", Embedding: pgvector.NewVector(vec)},
		{Question: "second at this distance", Answer: "b", Language: "en", Embedding: pgvector.NewVector(vec)},
	}))

	r := NewPgvectorRetriever(db, zap.NewNop())
	result, err := r.Search(ctx, vec, 2)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Identical embeddings tie on distance; ascending id decides.
	assert.Less(t, result[0].ID, result[1].ID)
	assert.InDelta(t, 1.0, result[0].Score, 1e-6)
}
