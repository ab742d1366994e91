package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/models"
)

// ProfileRepository defines operations for profile rows.
type ProfileRepository interface {
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)

	// InsertProfile persists a fresh profile row with default counters.
	InsertProfile(ctx context.Context, profile *models.Profile) error

	// UpdateProfile applies a typed partial update and returns the full
	// row after the merge.
	UpdateProfile(ctx context.Context, id uuid.UUID, update *models.ProfileUpdate) (*models.Profile, error)

	// TopProfilesByArenaPoints lists the highest-scoring profiles.
	TopProfilesByArenaPoints(ctx context.Context, limit int) ([]*models.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, username, display_name, email, avatar_url, bio, location, website,
	level, xp, total_wins, total_participations, current_streak, longest_streak,
	arena_points, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Username, &p.DisplayName, &p.Email, &p.AvatarURL, &p.Bio,
		&p.Location, &p.Website, &p.Level, &p.XP, &p.TotalWins,
		&p.TotalParticipations, &p.CurrentStreak, &p.LongestStreak,
		&p.ArenaPoints, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, db.WrapError(err, "get profile")
	}
	return p, nil
}

func (r *profileRepository) InsertProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles
		(id, username, display_name, email, avatar_url, bio, location, website,
		 level, xp, total_wins, total_participations, current_streak, longest_streak, arena_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		profile.ID, profile.Username, profile.DisplayName, profile.Email,
		profile.AvatarURL, profile.Bio, profile.Location, profile.Website,
		profile.Level, profile.XP, profile.TotalWins, profile.TotalParticipations,
		profile.CurrentStreak, profile.LongestStreak, profile.ArenaPoints,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	return db.WrapError(err, "insert profile")
}

func (r *profileRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update *models.ProfileUpdate) (*models.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if update.IsEmpty() {
		return r.GetProfileByID(ctx, id)
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Username != nil {
		add("username", *update.Username)
	}
	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.Website != nil {
		add("website", *update.Website)
	}
	if update.Level != nil {
		add("level", *update.Level)
	}
	if update.XP != nil {
		add("xp", *update.XP)
	}
	if update.TotalWins != nil {
		add("total_wins", *update.TotalWins)
	}
	if update.TotalParticipations != nil {
		add("total_participations", *update.TotalParticipations)
	}
	if update.CurrentStreak != nil {
		add("current_streak", *update.CurrentStreak)
	}
	if update.LongestStreak != nil {
		add("longest_streak", *update.LongestStreak)
	}
	if update.ArenaPoints != nil {
		add("arena_points", *update.ArenaPoints)
	}

	query := fmt.Sprintf(
		`UPDATE profiles SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), profileColumns,
	)
	p, err := scanProfile(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, db.WrapError(err, "update profile")
	}
	return p, nil
}

func (r *profileRepository) TopProfilesByArenaPoints(ctx context.Context, limit int) ([]*models.Profile, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM profiles ORDER BY arena_points DESC, xp DESC LIMIT $1`,
		profileColumns,
	)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, db.WrapError(err, "top profiles")
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, db.WrapError(rows.Err(), "top profiles")
}
