package models

import (
	"time"

	"github.com/google/uuid"
)

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Username    string `json:"username" binding:"required,max=30"`
	DisplayName string `json:"display_name" binding:"required,max=50"`
}

// SignInRequest is the login payload.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AddVideoRequest is the submission payload. The media URL may be empty; a
// placeholder thumbnail is assigned when none is given.
type AddVideoRequest struct {
	HashtagID    string `json:"hashtag_id" binding:"required,max=64"`
	VideoURL     string `json:"video_url" binding:"max=2048"`
	ThumbnailURL string `json:"thumbnail_url" binding:"max=2048"`
}

// AddCommentRequest is the comment payload.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

// ArenaVoteRequest selects the vote direction for the current arena video.
type ArenaVoteRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// ArenaSessionRequest seeds a new arena session, optionally filtered by
// hashtag.
type ArenaSessionRequest struct {
	HashtagID string `json:"hashtag_id" binding:"max=64"`
}

// ArenaStateResponse reports the session position and tallies.
type ArenaStateResponse struct {
	Current    *Video `json:"current"`
	Cursor     int    `json:"cursor"`
	Total      int    `json:"total"`
	Remaining  int    `json:"remaining"`
	VotesGiven int    `json:"votes_given"`
	Upvotes    int    `json:"upvotes"`
	Downvotes  int    `json:"downvotes"`
	Skipped    int    `json:"skipped"`
}

// LeaderboardEntry pairs a profile with its rank.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Level       int       `json:"level"`
	XP          int       `json:"xp"`
	ArenaPoints int       `json:"arena_points"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
