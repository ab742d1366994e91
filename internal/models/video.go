package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Video is a challenge submission with its denormalized author fields and
// nested comments, as served by the catalog.
type Video struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	HashtagID    string    `json:"hashtag_id,omitempty"`
	Votes        int       `json:"votes"`
	ArenaPoints  int       `json:"arena_points"`
	Comments     []Comment `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
}

// Score is the leaderboard ranking key: raw votes plus arena points.
func (v *Video) Score() int {
	return v.Votes + v.ArenaPoints
}

// PlaceholderThumbnail returns the deterministic fallback thumbnail used
// when a submission carries no generated thumbnail.
func PlaceholderThumbnail(seed string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/400/600", seed)
}

// NewVideo creates a fresh submission with zero votes, zero arena points and
// no comments.
func NewVideo(userID uuid.UUID, videoURL, thumbnailURL, hashtagID string) *Video {
	id := uuid.New()
	if thumbnailURL == "" {
		thumbnailURL = PlaceholderThumbnail(id.String())
	}
	return &Video{
		ID:           id,
		UserID:       userID,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		HashtagID:    hashtagID,
		Comments:     []Comment{},
		CreatedAt:    time.Now(),
	}
}

// Comment is an append-only, immutable remark on a video.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteKind distinguishes the two vote directions.
type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)

// Vote is one (video, user) vote row. The pair is unique; a second vote from
// the same user on the same video is rejected by the store and treated as a
// no-op upstream.
type Vote struct {
	VideoID     uuid.UUID `json:"video_id"`
	UserID      uuid.UUID `json:"user_id"`
	Kind        VoteKind  `json:"vote_type"`
	IsArenaVote bool      `json:"is_arena_vote"`
	CreatedAt   time.Time `json:"created_at"`
}
