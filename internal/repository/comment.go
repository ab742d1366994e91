package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/models"
)

// CommentRepository defines operations for video comments. Comments are
// append-only; no update or delete is exposed.
type CommentRepository interface {
	InsertComment(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) InsertComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, video_id, user_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		comment.ID, comment.VideoID, comment.UserID, comment.Text,
	).Scan(&comment.CreatedAt)
	return db.WrapError(err, "insert comment")
}
