// Package service contains the core application services: topic rotation,
// the video catalog, arena sessions, identity/progression and their
// supporting caches and publishers.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/snapshot"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

// dateLayout matches the calendar-day granularity used for topic rotation.
const dateLayout = "Mon Jan 02 2006"

// minAITopics is the minimum distinct topic count an AI generation must
// produce to be accepted.
const minAITopics = 15

// fallbackTopics is the fixed list used when AI generation is unavailable.
var fallbackTopics = []models.Topic{
	{ID: "dancetrend", Tag: "#DansTrend", Title: "Dans Trendi", Emoji: "💃", Color: "#ec4899", Category: "dance"},
	{ID: "komedishow", Tag: "#KomediShow", Title: "Komedi Gösterisi", Emoji: "😂", Color: "#f59e0b", Category: "comedy"},
	{ID: "yetenekzamani", Tag: "#YetenekZamanı", Title: "Yetenek Zamanı", Emoji: "🌟", Color: "#8b5cf6", Category: "talent"},
	{ID: "lipsyncbattle", Tag: "#LipSyncBattle", Title: "Lip Sync Savaşı", Emoji: "🎤", Color: "#3b82f6", Category: "music"},
	{ID: "sporchallenge", Tag: "#SporChallenge", Title: "Spor Challenge", Emoji: "💪", Color: "#22c55e", Category: "sports"},
	{ID: "yemekshow", Tag: "#YemekShow", Title: "Yemek Şovu", Emoji: "🍕", Color: "#ef4444", Category: "food"},
	{ID: "petmoments", Tag: "#PetMoments", Title: "Evcil Hayvan Anları", Emoji: "🐶", Color: "#06b6d4", Category: "pets"},
	{ID: "artattack", Tag: "#ArtAttack", Title: "Sanat Atağı", Emoji: "🎨", Color: "#a855f7", Category: "art"},
	{ID: "gunlukrutini", Tag: "#GünlükRutin", Title: "Günlük Rutin", Emoji: "☀️", Color: "#fbbf24", Category: "lifestyle"},
	{ID: "makyajdegisimi", Tag: "#MakyajDeğişimi", Title: "Makyaj Değişimi", Emoji: "💄", Color: "#f472b6", Category: "beauty"},
	{ID: "modatrend", Tag: "#ModaTrend", Title: "Moda Trendi", Emoji: "👗", Color: "#c084fc", Category: "fashion"},
	{ID: "teknoloji", Tag: "#TeknolojiAnı", Title: "Teknoloji Anı", Emoji: "📱", Color: "#60a5fa", Category: "tech"},
	{ID: "geziseyahat", Tag: "#GeziSeyahat", Title: "Gezi & Seyahat", Emoji: "✈️", Color: "#34d399", Category: "travel"},
	{ID: "fitnessgoals", Tag: "#FitnessGoals", Title: "Fitness Hedefleri", Emoji: "🏋️", Color: "#fb923c", Category: "fitness"},
	{ID: "muzikanlik", Tag: "#MüzikAnlık", Title: "Müzik Anlık", Emoji: "🎵", Color: "#818cf8", Category: "music"},
}

// TopicGenerator produces a fresh topic set from an external text-generation
// collaborator. A nil result with nil error means "unavailable".
type TopicGenerator interface {
	Available() bool
	GenerateDailyTopics(ctx context.Context, now time.Time) ([]models.Topic, error)
}

// TopicService owns the daily topic set: once-per-day rotation, AI
// generation with a deterministic fallback shuffle, derived video counts and
// the single selected hashtag filter.
type TopicService struct {
	generator TopicGenerator // nil disables AI generation
	store     *snapshot.Store
	now       func() time.Time

	mu            sync.Mutex
	topics        []models.Topic
	generatedDate string
	aiGenerated   bool
	videoCounts   map[string]int
	selected      string
	regenerating  bool
}

// NewTopicService creates the topic engine and restores any persisted
// snapshot. Both generator and store may be nil.
func NewTopicService(generator TopicGenerator, store *snapshot.Store) *TopicService {
	s := &TopicService{
		generator:   generator,
		store:       store,
		now:         time.Now,
		videoCounts: make(map[string]int),
	}

	if store != nil {
		state, err := store.Load()
		if err != nil {
			logger.Log.Warn("topic snapshot load failed", zap.Error(err))
		} else if state != nil {
			s.topics = state.Topics
			s.generatedDate = state.LastGeneratedDate
			s.aiGenerated = state.AIGenerated
		}
	}

	return s
}

func (s *TopicService) today() string {
	return s.now().Format(dateLayout)
}

// DailyTopics returns the current day's topics. When the stored generation
// date differs from today, or no topics exist, a regeneration is kicked off
// asynchronously and whatever is currently cached is returned.
func (s *TopicService) DailyTopics(ctx context.Context) []models.Topic {
	s.mu.Lock()
	stale := s.generatedDate != s.today() || len(s.topics) == 0
	launch := stale && !s.regenerating
	if launch {
		s.regenerating = true
	}
	current := copyTopics(s.topics)
	s.mu.Unlock()

	if launch {
		go func() {
			defer func() {
				s.mu.Lock()
				s.regenerating = false
				s.mu.Unlock()
			}()
			s.Regenerate(context.WithoutCancel(ctx), false)
		}()
	}

	return current
}

// Regenerate replaces the topic set for today. It attempts AI generation
// first; an AI failure is absorbed and the deterministic fallback shuffle is
// used instead, which is a normal outcome. With forceAI set, a failed AI
// attempt leaves the current set untouched and Regenerate reports false.
// Regeneration is idempotent within a calendar day for the non-forced path.
func (s *TopicService) Regenerate(ctx context.Context, forceAI bool) bool {
	today := s.today()

	if s.generator != nil && s.generator.Available() {
		generated, err := s.generator.GenerateDailyTopics(ctx, s.now())
		if err != nil {
			logger.Log.Warn("AI topic generation failed, using fallback", zap.Error(err))
		} else if len(distinctByID(generated)) >= minAITopics {
			s.install(generated[:minAITopics], today, true)
			logger.Log.Info("AI-generated topics installed", zap.Int("count", minAITopics))
			return true
		} else if generated != nil {
			logger.Log.Warn("AI generation returned too few topics",
				zap.Int("count", len(generated)))
		}
	}

	if forceAI {
		return false
	}

	s.install(shuffledFallback(today), today, false)
	logger.Log.Info("fallback topics installed", zap.String("date", today))
	return true
}

// install swaps in a new topic set, carrying over known video counts by id.
func (s *TopicService) install(topics []models.Topic, date string, ai bool) {
	s.mu.Lock()
	for i := range topics {
		topics[i].VideoCount = s.videoCounts[topics[i].ID]
	}
	s.topics = topics
	s.generatedDate = date
	s.aiGenerated = ai
	store := s.store
	state := &snapshot.TopicState{
		Topics:            copyTopics(topics),
		LastGeneratedDate: date,
		AIGenerated:       ai,
	}
	s.mu.Unlock()

	if store != nil {
		if err := store.Save(state); err != nil {
			logger.Log.Warn("topic snapshot save failed", zap.Error(err))
		}
	}
}

// shuffledFallback orders the fixed topic list deterministically for the
// given date string: seed is the sum of the date's byte values, each topic is
// keyed by (seed * first byte of its id) mod 1000, ascending, ties stable.
func shuffledFallback(date string) []models.Topic {
	seed := 0
	for i := 0; i < len(date); i++ {
		seed += int(date[i])
	}

	shuffled := make([]models.Topic, len(fallbackTopics))
	copy(shuffled, fallbackTopics)
	sort.SliceStable(shuffled, func(i, j int) bool {
		return (seed*int(shuffled[i].ID[0]))%1000 < (seed*int(shuffled[j].ID[0]))%1000
	})

	for i := range shuffled {
		shuffled[i].Position = i + 1
		shuffled[i].Trending = i < 3
		shuffled[i].AIGenerated = false
	}
	return shuffled
}

// UpdateVideoCounts recomputes every topic's video count by grouping the
// given videos by hashtag id. Topics with no matching videos get zero. This
// is the sole recomputation writer of counts.
func (s *TopicService) UpdateVideoCounts(videos []*models.Video) {
	counts := make(map[string]int)
	for _, v := range videos {
		if v.HashtagID != "" {
			counts[v.HashtagID]++
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoCounts = counts
	for i := range s.topics {
		s.topics[i].VideoCount = counts[s.topics[i].ID]
	}
}

// IncrementVideoCount optimistically bumps one topic's count right after a
// local submission, avoiding a refetch round trip.
func (s *TopicService) IncrementVideoCount(hashtagID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoCounts[hashtagID]++
	for i := range s.topics {
		if s.topics[i].ID == hashtagID {
			s.topics[i].VideoCount++
		}
	}
}

// ResetCounts zeroes all video counts.
func (s *TopicService) ResetCounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoCounts = make(map[string]int)
	for i := range s.topics {
		s.topics[i].VideoCount = 0
	}
}

// TrendingTopics returns the top 3 topics by video count descending,
// position ascending on ties.
func (s *TopicService) TrendingTopics() []models.Topic {
	s.mu.Lock()
	topics := copyTopics(s.topics)
	s.mu.Unlock()

	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].VideoCount != topics[j].VideoCount {
			return topics[i].VideoCount > topics[j].VideoCount
		}
		return topics[i].Position < topics[j].Position
	})

	if len(topics) > 3 {
		topics = topics[:3]
	}
	return topics
}

// TopicByID returns the topic with the given id, if present today.
func (s *TopicService) TopicByID(id string) (models.Topic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.topics {
		if t.ID == id {
			return t, true
		}
	}
	return models.Topic{}, false
}

// VideoCount returns the derived video count for a hashtag id.
func (s *TopicService) VideoCount(hashtagID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoCounts[hashtagID]
}

// SelectHashtag sets the single currently-selected filter.
func (s *TopicService) SelectHashtag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// ClearSelection clears the filter.
func (s *TopicService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// SelectedHashtag returns the current filter, empty when none.
func (s *TopicService) SelectedHashtag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// AIGenerated reports whether today's set came from the AI collaborator.
func (s *TopicService) AIGenerated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aiGenerated
}

func copyTopics(topics []models.Topic) []models.Topic {
	out := make([]models.Topic, len(topics))
	copy(out, topics)
	return out
}

func distinctByID(topics []models.Topic) map[string]struct{} {
	seen := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		seen[t.ID] = struct{}{}
	}
	return seen
}
