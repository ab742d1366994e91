// Package repository provides database operations for the challenge arena
// service.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/models"
)

// VideoRepository defines operations for managing videos.
type VideoRepository interface {
	// ListVideos retrieves all videos with denormalized author fields and
	// nested comments, ordered newest-first.
	ListVideos(ctx context.Context) ([]*models.Video, error)

	// InsertVideo persists a new submission.
	InsertVideo(ctx context.Context, video *models.Video) error

	// SetVotes overwrites a video's cumulative vote count.
	SetVotes(ctx context.Context, videoID uuid.UUID, votes int) error

	// AddArenaPoints additively adjusts a video's arena points.
	AddArenaPoints(ctx context.Context, videoID uuid.UUID, amount int) error

	// DeleteVideo removes a video and reports how many rows were affected.
	DeleteVideo(ctx context.Context, videoID uuid.UUID) (int64, error)
}

type videoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepository{pool: pool}
}

func (r *videoRepository) ListVideos(ctx context.Context) ([]*models.Video, error) {
	query := `
		SELECT v.id, v.user_id, p.username, p.display_name, p.avatar_url,
		       v.video_url, v.thumbnail_url, COALESCE(v.hashtag_id, ''),
		       v.votes, v.arena_points, v.created_at
		FROM videos v
		JOIN profiles p ON p.id = v.user_id
		ORDER BY v.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list videos")
	}
	defer rows.Close()

	var videos []*models.Video
	byID := make(map[uuid.UUID]*models.Video)
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Username, &v.DisplayName, &v.AvatarURL,
			&v.VideoURL, &v.ThumbnailURL, &v.HashtagID,
			&v.Votes, &v.ArenaPoints, &v.CreatedAt,
		); err != nil {
			return nil, db.WrapError(err, "scan video")
		}
		if v.ThumbnailURL == "" {
			v.ThumbnailURL = models.PlaceholderThumbnail(v.ID.String())
		}
		v.Comments = []models.Comment{}
		videos = append(videos, &v)
		byID[v.ID] = &v
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "list videos")
	}

	if err := r.attachComments(ctx, byID); err != nil {
		return nil, err
	}
	return videos, nil
}

// attachComments loads comments for the given videos in one query and
// appends them in creation order.
func (r *videoRepository) attachComments(ctx context.Context, byID map[uuid.UUID]*models.Video) error {
	if len(byID) == 0 {
		return nil
	}
	query := `
		SELECT c.id, c.video_id, c.user_id, p.username, c.text, c.created_at
		FROM comments c
		JOIN profiles p ON p.id = c.user_id
		ORDER BY c.created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return db.WrapError(err, "list comments")
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.VideoID, &c.UserID, &c.Username, &c.Text, &c.CreatedAt); err != nil {
			return db.WrapError(err, "scan comment")
		}
		if v, ok := byID[c.VideoID]; ok {
			v.Comments = append(v.Comments, c)
		}
	}
	return db.WrapError(rows.Err(), "list comments")
}

func (r *videoRepository) InsertVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, user_id, video_url, thumbnail_url, hashtag_id, votes, arena_points, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		video.ID, video.UserID, video.VideoURL, video.ThumbnailURL,
		video.HashtagID, video.Votes, video.ArenaPoints, video.CreatedAt,
	).Scan(&video.CreatedAt)
	return db.WrapError(err, "insert video")
}

func (r *videoRepository) SetVotes(ctx context.Context, videoID uuid.UUID, votes int) error {
	if votes < 0 {
		votes = 0
	}
	query := `UPDATE videos SET votes = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, videoID, votes)
	if err != nil {
		return db.WrapError(err, "set votes")
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(db.ErrNotFound, "set votes")
	}
	return nil
}

func (r *videoRepository) AddArenaPoints(ctx context.Context, videoID uuid.UUID, amount int) error {
	query := `UPDATE videos SET arena_points = arena_points + $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, videoID, amount)
	if err != nil {
		return db.WrapError(err, "add arena points")
	}
	if tag.RowsAffected() == 0 {
		return db.WrapError(db.ErrNotFound, "add arena points")
	}
	return nil
}

func (r *videoRepository) DeleteVideo(ctx context.Context, videoID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, videoID)
	if err != nil {
		return 0, db.WrapError(err, "delete video")
	}
	return tag.RowsAffected(), nil
}
