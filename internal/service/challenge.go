package service

import (
	"fmt"
	"sync"
	"time"
)

// ChallengeCategory labels a daily challenge.
type ChallengeCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// Challenge is the daily prompt all participants compete on.
type Challenge struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Category    ChallengeCategory `json:"category"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	MaxDuration int               `json:"max_duration"`
}

// TimeRemaining is the countdown until the challenge closes.
type TimeRemaining struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

var challengeCategories = []ChallengeCategory{
	{ID: "dance", Name: "Dans", Emoji: "💃", Color: "#ec4899"},
	{ID: "comedy", Name: "Komedi", Emoji: "😂", Color: "#f59e0b"},
	{ID: "talent", Name: "Yetenek", Emoji: "🌟", Color: "#8b5cf6"},
	{ID: "lip_sync", Name: "Lip Sync", Emoji: "🎤", Color: "#3b82f6"},
	{ID: "sport", Name: "Spor", Emoji: "⚽", Color: "#22c55e"},
	{ID: "food", Name: "Yemek", Emoji: "🍕", Color: "#ef4444"},
	{ID: "pet", Name: "Evcil Hayvan", Emoji: "🐶", Color: "#06b6d4"},
	{ID: "creative", Name: "Yaratıcı", Emoji: "🎨", Color: "#a855f7"},
}

var challengeTemplates = map[string][]string{
	"dance": {
		"Kendine özgü dans hareketinle bizi eğlendir!",
		"Evdeki eşyalarla dans koreografisi yap!",
		"Yavaş çekimde dans challenge!",
	},
	"comedy": {
		"En komik yüz ifadeni göster!",
		"Sessiz film challenge - konuşmadan hikaye anlat!",
		"Dublaj challenge - bir sahneyi kendin seslendir!",
	},
	"talent": {
		"Gizli yeteneğini 6 saniyede göster!",
		"El becerisi challenge!",
		"Taklit yeteneğini konuştur!",
	},
	"lip_sync": {
		"Favori şarkına lip sync yap!",
		"Film repliği lip sync challenge!",
		"Duygusal şarkı lip sync!",
	},
	"sport": {
		"Freestyle trick challenge!",
		"Fitness hareketi challenge!",
		"Top becerisi göster!",
	},
	"food": {
		"En hızlı yeme challenge!",
		"Yiyecek reaksiyonu challenge!",
		"Yaratıcı yemek sunumu!",
	},
	"pet": {
		"Evcil hayvanınla eğlenceli anlar!",
		"Pet trick challenge!",
		"Evcil hayvan reaksiyon videosu!",
	},
	"creative": {
		"6 saniyede sanat eseri yap!",
		"Dönüşüm challenge - önce/sonra!",
		"Optik illüzyon challenge!",
	},
}

// maxSubmissionSeconds caps entry length.
const maxSubmissionSeconds = 6

// ChallengeService derives the challenge of the day deterministically from
// the calendar date, so every instance agrees on it without coordination.
// Refresh across midnight is driven by the rotation worker.
type ChallengeService struct {
	now func() time.Time

	mu      sync.Mutex
	current *Challenge
}

// NewChallengeService creates the service with today's challenge in place.
func NewChallengeService() *ChallengeService {
	s := &ChallengeService{now: time.Now}
	s.Refresh()
	return s
}

// Current returns the challenge of the day, rolling it over first when the
// cached one refers to an earlier date.
func (s *ChallengeService) Current() Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format(dateLayout)
	if s.current == nil || s.current.StartTime.Format(dateLayout) != today {
		s.current = s.generate()
	}
	return *s.current
}

// Refresh recomputes the challenge for the current date.
func (s *ChallengeService) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.generate()
}

// TimeRemaining returns the countdown to local end-of-day, zero once the
// challenge has closed.
func (s *ChallengeService) TimeRemaining() TimeRemaining {
	challenge := s.Current()
	diff := challenge.EndTime.Sub(s.now())
	if diff <= 0 {
		return TimeRemaining{}
	}
	return TimeRemaining{
		Hours:   int(diff / time.Hour),
		Minutes: int(diff % time.Hour / time.Minute),
		Seconds: int(diff % time.Minute / time.Second),
	}
}

// generate derives the challenge from the date seed. Same scheme as the
// fallback topic shuffle: seed is the sum of the date string's byte values.
func (s *ChallengeService) generate() *Challenge {
	now := s.now()
	date := now.Format(dateLayout)

	seed := 0
	for i := 0; i < len(date); i++ {
		seed += int(date[i])
	}

	category := challengeCategories[seed%len(challengeCategories)]
	templates := challengeTemplates[category.ID]
	title := templates[seed%len(templates)]

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	return &Challenge{
		ID:          fmt.Sprintf("challenge_%s", startOfDay.Format("2006-01-02")),
		Title:       title,
		Category:    category,
		StartTime:   startOfDay,
		EndTime:     endOfDay,
		MaxDuration: maxSubmissionSeconds,
	}
}
