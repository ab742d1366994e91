package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/doit-app/challenge-arena-go/internal/models"
)

// VoteEvent is the value returned by an arena vote so the caller can apply
// point and XP side effects exactly once, against the video that was current
// before the cursor advanced.
type VoteEvent struct {
	Kind  models.VoteKind
	Video models.Video
}

// ArenaStats is a point-in-time copy of the session tallies.
type ArenaStats struct {
	VotesGiven int `json:"votes_given"`
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	Skipped    int `json:"skipped"`
}

// ArenaSession walks a fixed snapshot of videos with vote/skip/undo
// semantics. The cursor stays within [0, len(videos)]; cursor == len means
// the session is exhausted. The session performs no remote I/O; all side
// effects are driven by the caller from returned VoteEvents.
type ArenaSession struct {
	mu      sync.Mutex
	videos  []models.Video
	cursor  int
	votes   int
	upvotes int
	downs   int
	skipped int
}

// NewArenaSession creates an empty session; call Initialize to seed it.
func NewArenaSession() *ArenaSession {
	return &ArenaSession{}
}

// Initialize snapshots the given list and zeroes the cursor and counters.
// Valid from any state.
func (s *ArenaSession) Initialize(videos []models.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshotCopy := make([]models.Video, len(videos))
	copy(snapshotCopy, videos)
	s.videos = snapshotCopy
	s.cursor = 0
	s.votes = 0
	s.upvotes = 0
	s.downs = 0
	s.skipped = 0
}

// CurrentVideo returns the video at the cursor, or false when the session is
// empty or exhausted.
func (s *ArenaSession) CurrentVideo() (models.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.videos) {
		return models.Video{}, false
	}
	return s.videos[s.cursor], true
}

// Upvote records an upvote on the current video and advances the cursor.
// The returned event carries the video that was current before the advance;
// ok is false when the session was already exhausted and nothing happened.
func (s *ArenaSession) Upvote() (VoteEvent, bool) {
	return s.vote(models.VoteUp)
}

// Downvote records a downvote on the current video and advances the cursor.
func (s *ArenaSession) Downvote() (VoteEvent, bool) {
	return s.vote(models.VoteDown)
}

func (s *ArenaSession) vote(kind models.VoteKind) (VoteEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.videos) {
		return VoteEvent{}, false
	}

	voted := s.videos[s.cursor]
	s.cursor++
	if s.cursor > len(s.videos) {
		s.cursor = len(s.videos)
	}
	s.votes++
	if kind == models.VoteUp {
		s.upvotes++
	} else {
		s.downs++
	}

	return VoteEvent{Kind: kind, Video: voted}, true
}

// Next skips forward without voting and increments the skipped counter.
// No-op at the last index.
func (s *ArenaSession) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.videos)-1 {
		return
	}
	s.cursor++
	s.skipped++
}

// Prev moves the cursor back one position. No-op at index 0; the skipped
// counter is not decremented.
func (s *ArenaSession) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor <= 0 {
		return
	}
	s.cursor--
}

// Remaining returns how many videos are left including the current one.
func (s *ArenaSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rem := len(s.videos) - s.cursor; rem > 0 {
		return rem
	}
	return 0
}

// Cursor returns the current position.
func (s *ArenaSession) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Len returns the snapshot length.
func (s *ArenaSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.videos)
}

// Stats returns a copy of the session tallies.
func (s *ArenaSession) Stats() ArenaStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ArenaStats{
		VotesGiven: s.votes,
		Upvotes:    s.upvotes,
		Downvotes:  s.downs,
		Skipped:    s.skipped,
	}
}

// Reset zeroes the cursor and counters but keeps the snapshot. Callers
// re-seed with Initialize to change the video list.
func (s *ArenaSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = 0
	s.votes = 0
	s.upvotes = 0
	s.downs = 0
	s.skipped = 0
}

// ArenaManager hosts one arena session per user.
type ArenaManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*ArenaSession
}

// NewArenaManager creates an empty manager.
func NewArenaManager() *ArenaManager {
	return &ArenaManager{sessions: make(map[uuid.UUID]*ArenaSession)}
}

// Session returns the user's session, creating an empty one on first use.
func (m *ArenaManager) Session(userID uuid.UUID) *ArenaSession {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = NewArenaSession()
	m.sessions[userID] = s
	return s
}

// Drop discards the user's session entirely.
func (m *ArenaManager) Drop(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
