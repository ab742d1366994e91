//go:build integration
// +build integration

package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/db/testutil"
	"github.com/doit-app/challenge-arena-go/internal/models"
)

type repos struct {
	videos   VideoRepository
	votes    VoteRepository
	comments CommentRepository
	profiles ProfileRepository
}

func setupRepos(t *testing.T) (*testutil.TestDatabase, repos) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	td := testutil.SetupTestDatabase(t)
	t.Cleanup(func() { td.Cleanup(t) })

	return td, repos{
		videos:   NewVideoRepository(td.Pool),
		votes:    NewVoteRepository(td.Pool),
		comments: NewCommentRepository(td.Pool),
		profiles: NewProfileRepository(td.Pool),
	}
}

func insertProfile(t *testing.T, r repos, username string) *models.Profile {
	t.Helper()
	profile := models.NewProfile(uuid.New(), username, username, username+"@example.com")
	require.NoError(t, r.profiles.InsertProfile(context.Background(), profile))
	return profile
}

func insertVideo(t *testing.T, r repos, userID uuid.UUID, hashtagID string) *models.Video {
	t.Helper()
	video := models.NewVideo(userID, "https://cdn.example.com/v.mp4", "", hashtagID)
	require.NoError(t, r.videos.InsertVideo(context.Background(), video))
	return video
}

func TestProfileRepository_InsertAndGet(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	profile := insertProfile(t, r, "ayse")

	got, err := r.profiles.GetProfileByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "ayse", got.Username)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 0, got.XP)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestProfileRepository_GetMissing(t *testing.T) {
	_, r := setupRepos(t)

	_, err := r.profiles.GetProfileByID(context.Background(), uuid.New())

	assert.True(t, db.IsNotFound(err))
}

func TestProfileRepository_DuplicateUsername(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	insertProfile(t, r, "ayse")

	dup := models.NewProfile(uuid.New(), "ayse", "Ayşe", "ayse2@example.com")
	err := r.profiles.InsertProfile(ctx, dup)

	assert.True(t, db.IsDuplicateKey(err))
}

func TestProfileRepository_PartialUpdate(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	profile := insertProfile(t, r, "ayse")

	bio := "Dansçı"
	xp := 1250
	updated, err := r.profiles.UpdateProfile(ctx, profile.ID, &models.ProfileUpdate{
		Bio: &bio,
		XP:  &xp,
	})
	require.NoError(t, err)

	assert.Equal(t, "Dansçı", updated.Bio)
	assert.Equal(t, 1250, updated.XP)
	// Untouched fields survive the partial update
	assert.Equal(t, "ayse", updated.Username)
	assert.True(t, updated.UpdatedAt.After(profile.UpdatedAt) || updated.UpdatedAt.Equal(profile.UpdatedAt))
}

func TestProfileRepository_EmptyUpdateReturnsRow(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	profile := insertProfile(t, r, "ayse")

	got, err := r.profiles.UpdateProfile(ctx, profile.ID, &models.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
}

func TestProfileRepository_TopByArenaPoints(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	for _, p := range []struct {
		username string
		points   int
		xp       int
	}{
		{"birinci", 300, 100},
		{"ikinci", 200, 900},
		{"ucuncu", 200, 100},
		{"sonuncu", 10, 0},
	} {
		profile := insertProfile(t, r, p.username)
		points, xp := p.points, p.xp
		_, err := r.profiles.UpdateProfile(ctx, profile.ID, &models.ProfileUpdate{
			ArenaPoints: &points,
			XP:          &xp,
		})
		require.NoError(t, err)
	}

	top, err := r.profiles.TopProfilesByArenaPoints(ctx, 3)
	require.NoError(t, err)

	require.Len(t, top, 3)
	assert.Equal(t, "birinci", top[0].Username)
	// XP breaks the arena point tie
	assert.Equal(t, "ikinci", top[1].Username)
	assert.Equal(t, "ucuncu", top[2].Username)
}

func TestVideoRepository_InsertAndList(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	owner := insertProfile(t, r, "ayse")
	video := insertVideo(t, r, owner.ID, "dancetrend")

	videos, err := r.videos.ListVideos(ctx)
	require.NoError(t, err)

	require.Len(t, videos, 1)
	got := videos[0]
	assert.Equal(t, video.ID, got.ID)
	assert.Equal(t, "ayse", got.Username)
	assert.Equal(t, "dancetrend", got.HashtagID)
	assert.NotEmpty(t, got.ThumbnailURL)
	assert.Empty(t, got.Comments)
}

func TestVideoRepository_InsertUnknownOwner(t *testing.T) {
	_, r := setupRepos(t)

	video := models.NewVideo(uuid.New(), "https://cdn.example.com/v.mp4", "", "")
	err := r.videos.InsertVideo(context.Background(), video)

	assert.True(t, db.IsForeignKeyViolation(err))
}

func TestVideoRepository_SetVotes(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	owner := insertProfile(t, r, "ayse")
	video := insertVideo(t, r, owner.ID, "")

	require.NoError(t, r.videos.SetVotes(ctx, video.ID, 7))
	// Negative counts are clamped to zero
	require.NoError(t, r.videos.SetVotes(ctx, video.ID, -3))

	videos, err := r.videos.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, 0, videos[0].Votes)

	err = r.videos.SetVotes(ctx, uuid.New(), 1)
	assert.True(t, db.IsNotFound(err))
}

func TestVideoRepository_AddArenaPoints(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	owner := insertProfile(t, r, "ayse")
	video := insertVideo(t, r, owner.ID, "")

	require.NoError(t, r.videos.AddArenaPoints(ctx, video.ID, 10))
	require.NoError(t, r.videos.AddArenaPoints(ctx, video.ID, 10))

	videos, err := r.videos.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, 20, videos[0].ArenaPoints)

	err = r.videos.AddArenaPoints(ctx, uuid.New(), 10)
	assert.True(t, db.IsNotFound(err))
}

func TestVideoRepository_Delete(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	owner := insertProfile(t, r, "ayse")
	video := insertVideo(t, r, owner.ID, "")

	affected, err := r.videos.DeleteVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = r.videos.DeleteVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestVoteRepository_InsertAndDuplicate(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	owner := insertProfile(t, r, "ayse")
	voter := insertProfile(t, r, "mehmet")
	video := insertVideo(t, r, owner.ID, "")

	vote := &models.Vote{
		VideoID:     video.ID,
		UserID:      voter.ID,
		Kind:        models.VoteUp,
		IsArenaVote: true,
	}
	require.NoError(t, r.votes.InsertVote(ctx, vote))
	assert.False(t, vote.CreatedAt.IsZero())

	// Same pair again, regardless of direction
	err := r.votes.InsertVote(ctx, &models.Vote{
		VideoID: video.ID,
		UserID:  voter.ID,
		Kind:    models.VoteDown,
	})
	assert.True(t, db.IsDuplicateKey(err))
}

func TestVoteRepository_ListUserVotedVideoIDs(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	owner := insertProfile(t, r, "ayse")
	voter := insertProfile(t, r, "mehmet")
	first := insertVideo(t, r, owner.ID, "")
	second := insertVideo(t, r, owner.ID, "")
	insertVideo(t, r, owner.ID, "")

	for _, videoID := range []uuid.UUID{first.ID, second.ID} {
		require.NoError(t, r.votes.InsertVote(ctx, &models.Vote{
			VideoID: videoID,
			UserID:  voter.ID,
			Kind:    models.VoteUp,
		}))
	}

	ids, err := r.votes.ListUserVotedVideoIDs(ctx, voter.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)

	ids, err = r.votes.ListUserVotedVideoIDs(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCommentRepository_InsertAndNestInList(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	owner := insertProfile(t, r, "ayse")
	commenter := insertProfile(t, r, "mehmet")
	video := insertVideo(t, r, owner.ID, "")

	comment := &models.Comment{
		ID:      uuid.New(),
		VideoID: video.ID,
		UserID:  commenter.ID,
		Text:    "Harika video!",
	}
	require.NoError(t, r.comments.InsertComment(ctx, comment))
	assert.False(t, comment.CreatedAt.IsZero())

	videos, err := r.videos.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)

	require.Len(t, videos[0].Comments, 1)
	got := videos[0].Comments[0]
	assert.Equal(t, "Harika video!", got.Text)
	assert.Equal(t, "mehmet", got.Username)
}
