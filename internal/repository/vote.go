package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/models"
)

// VoteRepository defines operations for the vote event log.
type VoteRepository interface {
	// InsertVote records one (video, user) vote. A duplicate pair returns
	// db.ErrDuplicateKey, which callers treat as "already voted".
	InsertVote(ctx context.Context, vote *models.Vote) error

	// ListUserVotedVideoIDs returns the ids of all videos the user has
	// voted on.
	ListUserVotedVideoIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type voteRepository struct {
	pool *pgxpool.Pool
}

// NewVoteRepository creates a new VoteRepository.
func NewVoteRepository(pool *pgxpool.Pool) VoteRepository {
	return &voteRepository{pool: pool}
}

func (r *voteRepository) InsertVote(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (video_id, user_id, vote_type, is_arena_vote)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		vote.VideoID, vote.UserID, vote.Kind, vote.IsArenaVote,
	).Scan(&vote.CreatedAt)
	return db.WrapError(err, "insert vote")
}

func (r *voteRepository) ListUserVotedVideoIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT video_id FROM votes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, db.WrapError(err, "list user votes")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, db.WrapError(err, "scan vote")
		}
		ids = append(ids, id)
	}
	return ids, db.WrapError(rows.Err(), "list user votes")
}
