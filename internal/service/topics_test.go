package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/snapshot"
)

type fakeGenerator struct {
	available bool
	topics    []models.Topic
	err       error

	mu    sync.Mutex
	calls int
}

func (g *fakeGenerator) Available() bool { return g.available }

func (g *fakeGenerator) GenerateDailyTopics(ctx context.Context, now time.Time) ([]models.Topic, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.topics, g.err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func aiTopics(n int) []models.Topic {
	topics := make([]models.Topic, n)
	for i := range topics {
		topics[i] = models.Topic{
			ID:       fmt.Sprintf("aitopic%d", i),
			Tag:      fmt.Sprintf("#AITopic%d", i),
			Position: i + 1,
		}
	}
	return topics
}

func fixedDate(day int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC)
	}
}

func TestShuffledFallback_DeterministicPerDate(t *testing.T) {
	date := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC).Format(dateLayout)

	first := shuffledFallback(date)
	second := shuffledFallback(date)

	require.Len(t, first, len(fallbackTopics))
	assert.Equal(t, first, second)

	for i, topic := range first {
		assert.Equal(t, i+1, topic.Position)
		assert.Equal(t, i < 3, topic.Trending)
		assert.False(t, topic.AIGenerated)
	}
}

func TestShuffledFallback_OrderVariesAcrossDates(t *testing.T) {
	d1 := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).Format(dateLayout)
	d2 := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC).Format(dateLayout)

	first := shuffledFallback(d1)
	second := shuffledFallback(d2)

	ids := func(topics []models.Topic) []string {
		out := make([]string, len(topics))
		for i, topic := range topics {
			out[i] = topic.ID
		}
		return out
	}

	assert.ElementsMatch(t, ids(first), ids(second))
	assert.NotEqual(t, ids(first), ids(second))
}

func TestRegenerate_FallbackWhenGeneratorFails(t *testing.T) {
	gen := &fakeGenerator{available: true, err: errors.New("rate limited")}
	svc := NewTopicService(gen, nil)
	svc.now = fixedDate(5)

	ok := svc.Regenerate(context.Background(), false)

	require.True(t, ok)
	assert.False(t, svc.AIGenerated())
	assert.Len(t, svc.DailyTopics(context.Background()), len(fallbackTopics))
}

func TestRegenerate_ForceAIFailureLeavesTopicsUntouched(t *testing.T) {
	gen := &fakeGenerator{available: true, err: errors.New("rate limited")}
	svc := NewTopicService(gen, nil)
	svc.now = fixedDate(5)

	require.True(t, svc.Regenerate(context.Background(), false))
	before := svc.DailyTopics(context.Background())

	ok := svc.Regenerate(context.Background(), true)

	assert.False(t, ok)
	assert.Equal(t, before, svc.DailyTopics(context.Background()))
}

func TestRegenerate_AcceptsFullAIGeneration(t *testing.T) {
	gen := &fakeGenerator{available: true, topics: aiTopics(minAITopics)}
	svc := NewTopicService(gen, nil)
	svc.now = fixedDate(5)

	ok := svc.Regenerate(context.Background(), false)

	require.True(t, ok)
	assert.True(t, svc.AIGenerated())
	topics := svc.DailyTopics(context.Background())
	require.Len(t, topics, minAITopics)
	assert.Equal(t, "aitopic0", topics[0].ID)
}

func TestRegenerate_RejectsShortAIGeneration(t *testing.T) {
	gen := &fakeGenerator{available: true, topics: aiTopics(7)}
	svc := NewTopicService(gen, nil)
	svc.now = fixedDate(5)

	ok := svc.Regenerate(context.Background(), false)

	require.True(t, ok)
	assert.False(t, svc.AIGenerated())
	assert.Len(t, svc.DailyTopics(context.Background()), len(fallbackTopics))
}

func TestRegenerate_CarriesVideoCountsByID(t *testing.T) {
	svc := NewTopicService(nil, nil)
	svc.now = fixedDate(5)

	require.True(t, svc.Regenerate(context.Background(), false))
	svc.IncrementVideoCount("dancetrend")
	svc.IncrementVideoCount("dancetrend")

	require.True(t, svc.Regenerate(context.Background(), false))

	topic, ok := svc.TopicByID("dancetrend")
	require.True(t, ok)
	assert.Equal(t, 2, topic.VideoCount)
}

func TestDailyTopics_RegeneratesAcrossMidnight(t *testing.T) {
	svc := NewTopicService(nil, nil)
	svc.now = fixedDate(1)

	require.True(t, svc.Regenerate(context.Background(), false))
	dayOne := svc.DailyTopics(context.Background())
	require.NotEmpty(t, dayOne)

	svc.now = fixedDate(2)

	dayTwo := shuffledFallback(fixedDate(2)().Format(dateLayout))
	require.NotEqual(t, dayOne[0].ID, dayTwo[0].ID)

	require.Eventually(t, func() bool {
		topics := svc.DailyTopics(context.Background())
		return len(topics) > 0 && topics[0].ID == dayTwo[0].ID
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDailyTopics_SameDayRepeatsGenerateOnce(t *testing.T) {
	gen := &fakeGenerator{available: true, topics: aiTopics(minAITopics)}
	svc := NewTopicService(gen, nil)
	svc.now = fixedDate(5)

	require.Eventually(t, func() bool {
		return len(svc.DailyTopics(context.Background())) == minAITopics
	}, 2*time.Second, 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.Len(t, svc.DailyTopics(context.Background()), minAITopics)
	}

	assert.Equal(t, 1, gen.callCount())
}

func TestUpdateVideoCounts_RecomputesFromScratch(t *testing.T) {
	svc := NewTopicService(nil, nil)
	svc.now = fixedDate(5)
	require.True(t, svc.Regenerate(context.Background(), false))

	svc.IncrementVideoCount("yemekshow")
	svc.UpdateVideoCounts([]*models.Video{
		{HashtagID: "dancetrend"},
		{HashtagID: "dancetrend"},
		{HashtagID: "artattack"},
		{HashtagID: ""},
	})

	assert.Equal(t, 2, svc.VideoCount("dancetrend"))
	assert.Equal(t, 1, svc.VideoCount("artattack"))
	assert.Equal(t, 0, svc.VideoCount("yemekshow"))
}

func TestTrendingTopics_RanksByCountThenPosition(t *testing.T) {
	svc := NewTopicService(nil, nil)
	svc.now = fixedDate(5)
	require.True(t, svc.Regenerate(context.Background(), false))

	all := svc.DailyTopics(context.Background())
	require.GreaterOrEqual(t, len(all), 4)

	svc.UpdateVideoCounts([]*models.Video{
		{HashtagID: all[3].ID},
		{HashtagID: all[3].ID},
		{HashtagID: all[1].ID},
	})

	trending := svc.TrendingTopics()
	require.Len(t, trending, 3)
	assert.Equal(t, all[3].ID, trending[0].ID)
	assert.Equal(t, all[1].ID, trending[1].ID)
	// remaining tie broken by rotation position
	assert.Equal(t, all[0].ID, trending[2].ID)
}

func TestSelectHashtag(t *testing.T) {
	svc := NewTopicService(nil, nil)

	assert.Empty(t, svc.SelectedHashtag())

	svc.SelectHashtag("dancetrend")
	assert.Equal(t, "dancetrend", svc.SelectedHashtag())

	svc.ClearSelection()
	assert.Empty(t, svc.SelectedHashtag())
}

func TestTopicService_RestoresSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.json")
	store := snapshot.NewStore(path)

	first := NewTopicService(nil, store)
	first.now = fixedDate(5)
	require.True(t, first.Regenerate(context.Background(), false))
	want := first.DailyTopics(context.Background())

	second := NewTopicService(nil, store)
	second.now = fixedDate(5)

	assert.Equal(t, want, second.DailyTopics(context.Background()))
	assert.False(t, second.AIGenerated())
}
