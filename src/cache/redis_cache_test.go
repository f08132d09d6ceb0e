package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/models"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(&config.RedisConfig{
		Address:  mr.Addr(),
		CacheTTL: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("How to grow rice?", models.LangHindi, models.LangHindi)
	k2 := Key("How to grow rice?", models.LangHindi, models.LangHindi)
	assert.Equal(t, k1, k2)
	assert.Equal(t, "query:How to grow rice?:hi:hi", k1)
}

func TestKeyDistinguishesLanguages(t *testing.T) {
	base := Key("How to grow rice?", models.LangEnglish, models.LangEnglish)
	assert.NotEqual(t, base, Key("How to grow rice?", models.LangHindi, models.LangEnglish))
	assert.NotEqual(t, base, Key("How to grow rice?", models.LangEnglish, models.LangTelugu))
	assert.NotEqual(t, base, Key("How to grow wheat?", models.LangEnglish, models.LangEnglish))
}

func TestSetAndGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	payload := &models.AnswerPayload{
		GeneratedAnswer: "Water twice a week in summer.",
		Status:          models.StatusComplete,
	}

	key := Key("How often to water tomatoes?", models.LangEnglish, models.LangEnglish)
	require.NoError(t, c.Set(ctx, key, payload, 0))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, payload.GeneratedAnswer, got.GeneratedAnswer)
	assert.Equal(t, models.StatusComplete, got.Status)
}

func TestGetMiss(t *testing.T) {
	c, _ := setupTestCache(t)

	got, err := c.Get(context.Background(), "query:never stored:en:en")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntryExpires(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	key := Key("short lived", models.LangEnglish, models.LangEnglish)
	require.NoError(t, c.Set(ctx, key, &models.AnswerPayload{
		GeneratedAnswer: "answer",
		Status:          models.StatusComplete,
	}, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must read as a miss")
}

func TestGetOutage(t *testing.T) {
	c, mr := setupTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "query:any:en:en")
	assert.ErrorIs(t, err, models.ErrCacheUnavailable)
}
