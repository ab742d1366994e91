package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/repository"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

// catalogStaleness is how long a successful fetch satisfies later
// non-forced fetches.
const catalogStaleness = 30 * time.Second

// VotedSet is the per-user "already voted" id set shared between the
// catalog and anything that disables repeat-vote controls.
type VotedSet interface {
	Load(ctx context.Context, userID uuid.UUID) error
	Add(ctx context.Context, userID, videoID uuid.UUID) error
	Contains(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
	IDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// Catalog is the in-memory mirror of the remote video collection. It is the
// single writer of the canonical snapshot; readers get point-in-time copies.
type Catalog struct {
	videoRepo   repository.VideoRepository
	voteRepo    repository.VoteRepository
	commentRepo repository.CommentRepository
	votedSet    VotedSet
	publisher   *EventPublisher
	now         func() time.Time

	mu          sync.Mutex
	videos      []*models.Video
	lastFetch   time.Time
	fetching    bool
	votesLoaded map[uuid.UUID]bool
}

// NewCatalog creates the catalog. votedSet and publisher may be nil.
func NewCatalog(
	videoRepo repository.VideoRepository,
	voteRepo repository.VoteRepository,
	commentRepo repository.CommentRepository,
	votedSet VotedSet,
	publisher *EventPublisher,
) *Catalog {
	return &Catalog{
		videoRepo:   videoRepo,
		voteRepo:    voteRepo,
		commentRepo: commentRepo,
		votedSet:    votedSet,
		publisher:   publisher,
		now:         time.Now,
		votesLoaded: make(map[uuid.UUID]bool),
	}
}

// Fetch refreshes the snapshot from the remote store, newest-first. The
// round trip is skipped when one is already in flight, or when the last
// successful fetch is within the staleness window and force is not set.
func (c *Catalog) Fetch(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return nil
	}
	fresh := !force && !c.lastFetch.IsZero() && len(c.videos) > 0 &&
		c.now().Sub(c.lastFetch) < catalogStaleness
	if fresh {
		c.mu.Unlock()
		return nil
	}
	c.fetching = true
	c.mu.Unlock()

	videos, err := c.videoRepo.ListVideos(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false
	if err != nil {
		return fmt.Errorf("fetch videos: %w", err)
	}
	c.videos = videos
	c.lastFetch = c.now()
	return nil
}

// All returns a copy of the current snapshot.
func (c *Catalog) All() []models.Video {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked(nil)
}

// ByHashtag returns the videos tagged with the given hashtag id.
func (c *Catalog) ByHashtag(hashtagID string) []models.Video {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked(func(v *models.Video) bool { return v.HashtagID == hashtagID })
}

// ByID returns one video by id.
func (c *Catalog) ByID(id uuid.UUID) (models.Video, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.videos {
		if v.ID == id {
			return *v, true
		}
	}
	return models.Video{}, false
}

// CountByHashtag returns how many snapshot videos carry the hashtag.
func (c *Catalog) CountByHashtag(hashtagID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, v := range c.videos {
		if v.HashtagID == hashtagID {
			count++
		}
	}
	return count
}

// Top ranks videos by votes + arena points descending, stable on ties, and
// returns at most limit entries. An empty hashtagID means no filter.
func (c *Catalog) Top(limit int, hashtagID string) []models.Video {
	c.mu.Lock()
	var filter func(*models.Video) bool
	if hashtagID != "" {
		filter = func(v *models.Video) bool { return v.HashtagID == hashtagID }
	}
	videos := c.copyLocked(filter)
	c.mu.Unlock()

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].Score() > videos[j].Score()
	})
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos
}

// Add persists a new submission and prepends it to the snapshot. The owner
// id is required; the media URL may be empty.
func (c *Catalog) Add(ctx context.Context, ownerID uuid.UUID, videoURL, thumbnailURL, hashtagID string) (models.Video, error) {
	if ownerID == uuid.Nil {
		return models.Video{}, fmt.Errorf("owner id is required to add a video")
	}

	video := models.NewVideo(ownerID, videoURL, thumbnailURL, hashtagID)
	if err := c.videoRepo.InsertVideo(ctx, video); err != nil {
		return models.Video{}, err
	}

	c.mu.Lock()
	c.videos = append([]*models.Video{video}, c.videos...)
	c.mu.Unlock()

	return *video, nil
}

// Upvote records an upvote event for (video, user). A duplicate vote from
// the same user is a no-op, not an error; only the first vote adjusts the
// video's count. Persistence failures are logged, never surfaced (the local
// snapshot is only adjusted after the remote write succeeds).
func (c *Catalog) Upvote(ctx context.Context, videoID, userID uuid.UUID) {
	c.castVote(ctx, videoID, userID, models.VoteUp)
}

// Downvote records a downvote; the vote count floors at zero.
func (c *Catalog) Downvote(ctx context.Context, videoID, userID uuid.UUID) {
	c.castVote(ctx, videoID, userID, models.VoteDown)
}

func (c *Catalog) castVote(ctx context.Context, videoID, userID uuid.UUID, kind models.VoteKind) {
	video, ok := c.ByID(videoID)
	if !ok {
		logger.Log.Warn("vote on unknown video", zap.String("video_id", videoID.String()))
		return
	}

	vote := &models.Vote{VideoID: videoID, UserID: userID, Kind: kind, IsArenaVote: true}
	if err := c.voteRepo.InsertVote(ctx, vote); err != nil {
		if db.IsDuplicateKey(err) {
			// Already voted: keep the set consistent, change nothing else.
			c.markVoted(ctx, userID, videoID)
			return
		}
		logger.Log.Warn("vote insert failed", zap.Error(err))
		return
	}

	newVotes := video.Votes + 1
	if kind == models.VoteDown {
		newVotes = video.Votes - 1
		if newVotes < 0 {
			newVotes = 0
		}
	}

	if err := c.videoRepo.SetVotes(ctx, videoID, newVotes); err != nil {
		logger.Log.Warn("vote count update failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	for _, v := range c.videos {
		if v.ID == videoID {
			v.Votes = newVotes
			break
		}
	}
	c.mu.Unlock()

	c.markVoted(ctx, userID, videoID)
	c.publisher.Publish(ctx, EngagementEvent{
		Type:    EventVoteCast,
		UserID:  userID,
		VideoID: videoID,
		Kind:    string(kind),
	})
}

func (c *Catalog) markVoted(ctx context.Context, userID, videoID uuid.UUID) {
	if c.votedSet == nil {
		return
	}
	if err := c.votedSet.Add(ctx, userID, videoID); err != nil {
		logger.Log.Warn("voted set update failed", zap.Error(err))
	}
}

// AddArenaPoints additively credits a video's owner score. This is how
// arena upvotes reward the owner, distinct from the raw vote count.
// Failures are logged, never surfaced.
func (c *Catalog) AddArenaPoints(ctx context.Context, videoID uuid.UUID, amount int) {
	if err := c.videoRepo.AddArenaPoints(ctx, videoID, amount); err != nil {
		logger.Log.Warn("arena points update failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	var ownerID uuid.UUID
	for _, v := range c.videos {
		if v.ID == videoID {
			v.ArenaPoints += amount
			ownerID = v.UserID
			break
		}
	}
	c.mu.Unlock()

	c.publisher.Publish(ctx, EngagementEvent{
		Type:    EventArenaPoints,
		UserID:  ownerID,
		VideoID: videoID,
		Amount:  amount,
	})
}

// AddComment appends a comment to a video. Persistence failure fails the
// operation without mutating local state.
func (c *Catalog) AddComment(ctx context.Context, videoID uuid.UUID, text string, userID uuid.UUID, username string) (models.Comment, error) {
	comment := &models.Comment{
		ID:       uuid.New(),
		VideoID:  videoID,
		UserID:   userID,
		Username: username,
		Text:     text,
	}
	if err := c.commentRepo.InsertComment(ctx, comment); err != nil {
		return models.Comment{}, err
	}

	c.mu.Lock()
	for _, v := range c.videos {
		if v.ID == videoID {
			v.Comments = append(v.Comments, *comment)
			break
		}
	}
	c.mu.Unlock()

	c.publisher.Publish(ctx, EngagementEvent{
		Type:    EventCommentAdded,
		UserID:  userID,
		VideoID: videoID,
	})
	return *comment, nil
}

// Delete removes a video remotely first; zero affected rows is a
// permission/not-found failure and leaves the snapshot unchanged.
func (c *Catalog) Delete(ctx context.Context, videoID uuid.UUID) error {
	affected, err := c.videoRepo.DeleteVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("delete video: %w", db.ErrNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range c.videos {
		if v.ID == videoID {
			c.videos = append(c.videos[:i], c.videos[i+1:]...)
			break
		}
	}
	return nil
}

// FetchUserVotes loads the user's voted id set into the cache. Cached per
// user id; later calls for the same user are no-ops.
func (c *Catalog) FetchUserVotes(ctx context.Context, userID uuid.UUID) error {
	if c.votedSet == nil {
		return nil
	}

	c.mu.Lock()
	loaded := c.votesLoaded[userID]
	c.mu.Unlock()
	if loaded {
		return nil
	}

	if err := c.votedSet.Load(ctx, userID); err != nil {
		return err
	}

	c.mu.Lock()
	c.votesLoaded[userID] = true
	c.mu.Unlock()
	return nil
}

// HasVoted reports whether the user already voted on the video.
func (c *Catalog) HasVoted(ctx context.Context, userID, videoID uuid.UUID) bool {
	if c.votedSet == nil {
		return false
	}
	voted, err := c.votedSet.Contains(ctx, userID, videoID)
	if err != nil {
		logger.Log.Warn("voted set lookup failed", zap.Error(err))
		return false
	}
	return voted
}

// UnvotedByHashtag returns the snapshot videos the user has not voted on,
// excluding the user's own submissions. Used to seed arena sessions. An
// empty hashtagID means no filter.
func (c *Catalog) UnvotedByHashtag(ctx context.Context, userID uuid.UUID, hashtagID string) []models.Video {
	var voted map[uuid.UUID]struct{}
	if c.votedSet != nil {
		ids, err := c.votedSet.IDs(ctx, userID)
		if err != nil {
			logger.Log.Warn("voted set read failed", zap.Error(err))
		} else {
			voted = ids
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked(func(v *models.Video) bool {
		if hashtagID != "" && v.HashtagID != hashtagID {
			return false
		}
		if v.UserID == userID {
			return false
		}
		_, seen := voted[v.ID]
		return !seen
	})
}

// copyLocked copies the snapshot, optionally filtered. Caller holds c.mu.
func (c *Catalog) copyLocked(filter func(*models.Video) bool) []models.Video {
	out := make([]models.Video, 0, len(c.videos))
	for _, v := range c.videos {
		if filter == nil || filter(v) {
			out = append(out, *v)
		}
	}
	return out
}
