package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

func init() {
	_ = logger.Init("error", "")
}

func arenaVideos(n int) []models.Video {
	videos := make([]models.Video, n)
	for i := range videos {
		videos[i] = models.Video{ID: uuid.New(), UserID: uuid.New()}
	}
	return videos
}

func TestArenaSession_Initialize(t *testing.T) {
	session := NewArenaSession()
	session.Initialize(arenaVideos(3))

	assert.Equal(t, 3, session.Len())
	assert.Equal(t, 0, session.Cursor())
	assert.Equal(t, 3, session.Remaining())

	current, ok := session.CurrentVideo()
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, current.ID)
}

func TestArenaSession_VoteAdvancesCursor(t *testing.T) {
	videos := arenaVideos(2)
	session := NewArenaSession()
	session.Initialize(videos)

	event, ok := session.Upvote()
	require.True(t, ok)
	assert.Equal(t, models.VoteUp, event.Kind)
	assert.Equal(t, videos[0].ID, event.Video.ID)
	assert.Equal(t, 1, session.Cursor())

	event, ok = session.Downvote()
	require.True(t, ok)
	assert.Equal(t, models.VoteDown, event.Kind)
	assert.Equal(t, videos[1].ID, event.Video.ID)
	assert.Equal(t, 2, session.Cursor())

	stats := session.Stats()
	assert.Equal(t, 2, stats.VotesGiven)
	assert.Equal(t, 1, stats.Upvotes)
	assert.Equal(t, 1, stats.Downvotes)
}

func TestArenaSession_VoteOnExhaustedSessionIsNoOp(t *testing.T) {
	session := NewArenaSession()
	session.Initialize(arenaVideos(1))

	_, ok := session.Upvote()
	require.True(t, ok)

	_, ok = session.Upvote()
	assert.False(t, ok)
	assert.Equal(t, 1, session.Cursor())
	assert.Equal(t, 1, session.Stats().VotesGiven)

	_, ok = session.CurrentVideo()
	assert.False(t, ok)
}

func TestArenaSession_NextAndPrev(t *testing.T) {
	videos := arenaVideos(3)
	session := NewArenaSession()
	session.Initialize(videos)

	session.Next()
	assert.Equal(t, 1, session.Cursor())
	assert.Equal(t, 1, session.Stats().Skipped)

	session.Prev()
	assert.Equal(t, 0, session.Cursor())
	// skipped tally is not decremented by undo
	assert.Equal(t, 1, session.Stats().Skipped)

	session.Prev()
	assert.Equal(t, 0, session.Cursor())
}

func TestArenaSession_NextStopsAtLastIndex(t *testing.T) {
	session := NewArenaSession()
	session.Initialize(arenaVideos(2))

	session.Next()
	session.Next()
	session.Next()

	assert.Equal(t, 1, session.Cursor())
	assert.Equal(t, 1, session.Stats().Skipped)

	_, ok := session.CurrentVideo()
	assert.True(t, ok)
}

func TestArenaSession_ResetKeepsSnapshot(t *testing.T) {
	session := NewArenaSession()
	session.Initialize(arenaVideos(3))

	session.Upvote()
	session.Next()
	session.Reset()

	assert.Equal(t, 0, session.Cursor())
	assert.Equal(t, 3, session.Len())
	assert.Equal(t, ArenaStats{}, session.Stats())
}

func TestArenaSession_InitializeCopiesInput(t *testing.T) {
	videos := arenaVideos(2)
	session := NewArenaSession()
	session.Initialize(videos)

	videos[0].ID = uuid.Nil

	current, ok := session.CurrentVideo()
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, current.ID)
}

func TestArenaManager_SessionPerUser(t *testing.T) {
	manager := NewArenaManager()
	alice := uuid.New()
	bob := uuid.New()

	s1 := manager.Session(alice)
	s2 := manager.Session(alice)
	s3 := manager.Session(bob)

	assert.Same(t, s1, s2)
	assert.NotSame(t, s1, s3)

	manager.Drop(alice)
	s4 := manager.Session(alice)
	assert.NotSame(t, s1, s4)
}
