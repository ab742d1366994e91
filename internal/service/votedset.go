package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/doit-app/challenge-arena-go/internal/repository"
)

func userVotesKey(userID uuid.UUID) string {
	return "user_votes:" + userID.String()
}

// VotedSetCache caches the set of video ids each user has already voted on,
// backed by a Redis SET per user. It filters already-seen videos out of
// arena sessions and disables repeat-vote controls elsewhere.
type VotedSetCache struct {
	redisClient *redis.Client
	voteRepo    repository.VoteRepository
}

// NewVotedSetCache creates a new VotedSetCache.
func NewVotedSetCache(redisClient *redis.Client, voteRepo repository.VoteRepository) *VotedSetCache {
	return &VotedSetCache{
		redisClient: redisClient,
		voteRepo:    voteRepo,
	}
}

// Load replaces the user's cached set with the vote rows from the database.
func (c *VotedSetCache) Load(ctx context.Context, userID uuid.UUID) error {
	ids, err := c.voteRepo.ListUserVotedVideoIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user votes from database: %w", err)
	}

	key := userVotesKey(userID)
	pipe := c.redisClient.Pipeline()
	pipe.Del(ctx, key)
	if len(ids) > 0 {
		members := make([]interface{}, len(ids))
		for i, id := range ids {
			members[i] = id.String()
		}
		pipe.SAdd(ctx, key, members...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("load user votes into redis: %w", err)
	}
	return nil
}

// Add marks a video as voted by the user. Called immediately on a successful
// vote, not on a delay.
func (c *VotedSetCache) Add(ctx context.Context, userID, videoID uuid.UUID) error {
	if err := c.redisClient.SAdd(ctx, userVotesKey(userID), videoID.String()).Err(); err != nil {
		return fmt.Errorf("add voted video to cache: %w", err)
	}
	return nil
}

// Contains checks whether the user has already voted on the video.
func (c *VotedSetCache) Contains(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	voted, err := c.redisClient.SIsMember(ctx, userVotesKey(userID), videoID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check voted video: %w", err)
	}
	return voted, nil
}

// IDs returns all video ids the user has voted on.
func (c *VotedSetCache) IDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	members, err := c.redisClient.SMembers(ctx, userVotesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list voted videos: %w", err)
	}

	ids := make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Count returns how many videos the user has voted on.
func (c *VotedSetCache) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := c.redisClient.SCard(ctx, userVotesKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count voted videos: %w", err)
	}
	return count, nil
}
