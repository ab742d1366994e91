package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/auth"
	"github.com/doit-app/challenge-arena-go/internal/db"
	"github.com/doit-app/challenge-arena-go/internal/models"
	"github.com/doit-app/challenge-arena-go/internal/repository"
	"github.com/doit-app/challenge-arena-go/internal/storage"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

// AuthProvider is the subset of the auth service the identity layer needs.
type AuthProvider interface {
	GetSession(ctx context.Context, accessToken string) (*auth.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*auth.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Uploader is the subset of the storage client the identity layer needs.
type Uploader interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error)
}

const avatarBucket = "avatars"

// IdentityService manages accounts and profile progression. Reward mutations
// (XP, streaks, arena points) persist best-effort: failures are logged and
// the triggering request is never failed because of them.
type IdentityService struct {
	authClient  AuthProvider
	profileRepo repository.ProfileRepository
	storage     Uploader
	publisher   *EventPublisher
	now         func() time.Time

	mu          sync.Mutex
	initialized bool
}

// NewIdentityService creates an identity service.
func NewIdentityService(authClient AuthProvider, profileRepo repository.ProfileRepository, storage Uploader, publisher *EventPublisher) *IdentityService {
	return &IdentityService{
		authClient:  authClient,
		profileRepo: profileRepo,
		storage:     storage,
		publisher:   publisher,
		now:         time.Now,
	}
}

// CheckSession validates an access token and returns the matching profile,
// creating a default one when the account exists but the profile row is
// missing. The first completed check marks the service initialized whether or
// not the token was valid.
func (s *IdentityService) CheckSession(ctx context.Context, accessToken string) (*models.Profile, error) {
	defer func() {
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
	}()

	session, err := s.authClient.GetSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	return s.ensureProfile(ctx, session)
}

// Initialized reports whether at least one session check has completed.
func (s *IdentityService) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// SignUp registers an account and creates its default profile.
func (s *IdentityService) SignUp(ctx context.Context, email, password, username, displayName string) (*auth.Session, *models.Profile, error) {
	if displayName == "" {
		displayName = username
	}

	session, err := s.authClient.SignUp(ctx, email, password, map[string]string{"username": username})
	if err != nil {
		return nil, nil, translateAuthError(err)
	}

	profile := models.NewProfile(session.User.ID, username, displayName, email)
	if err := s.profileRepo.InsertProfile(ctx, profile); err != nil {
		if !db.IsDuplicateKey(err) {
			return nil, nil, fmt.Errorf("create profile: %w", err)
		}
		existing, err := s.profileRepo.GetProfileByID(ctx, session.User.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("load existing profile: %w", err)
		}
		profile = existing
	}

	return session, profile, nil
}

// SignIn authenticates with email and password and loads the profile,
// creating a default one when the row is missing.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*auth.Session, *models.Profile, error) {
	session, err := s.authClient.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, nil, translateAuthError(err)
	}

	profile, err := s.ensureProfile(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	return session, profile, nil
}

// SignOut ends the session. Provider failures are logged and swallowed so
// the caller always ends up signed out locally.
func (s *IdentityService) SignOut(ctx context.Context, accessToken string) {
	if err := s.authClient.SignOut(ctx, accessToken); err != nil {
		logger.Log.Warn("sign out failed", zap.Error(err))
	}
}

// Profile loads a profile by user id.
func (s *IdentityService) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profileRepo.GetProfileByID(ctx, userID)
}

// UpdateProfile applies a partial update and returns the updated profile.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID uuid.UUID, update *models.ProfileUpdate) (*models.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return s.profileRepo.GetProfileByID(ctx, userID)
	}
	return s.profileRepo.UpdateProfile(ctx, userID, update)
}

// UploadAvatar stores a new avatar image at a user-scoped timestamped path
// and points the profile at it. Returns the updated profile.
func (s *IdentityService) UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, body io.Reader, contentType string) (*models.Profile, error) {
	path := storage.UserScopedPath(userID.String(), filename, s.now())

	url, err := s.storage.Upload(ctx, avatarBucket, path, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	return s.profileRepo.UpdateProfile(ctx, userID, &models.ProfileUpdate{AvatarURL: &url})
}

// AddXP grants experience and recomputes the level from cumulative XP.
func (s *IdentityService) AddXP(ctx context.Context, userID uuid.UUID, amount int) {
	if amount <= 0 {
		return
	}

	profile, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		logger.Log.Warn("load profile for xp grant failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	xp := profile.XP + amount
	level := models.LevelForXP(xp)
	if _, err := s.profileRepo.UpdateProfile(ctx, userID, &models.ProfileUpdate{XP: &xp, Level: &level}); err != nil {
		logger.Log.Warn("persist xp grant failed",
			zap.String("user_id", userID.String()), zap.Int("amount", amount), zap.Error(err))
		return
	}

	s.publisher.Publish(ctx, EngagementEvent{
		Type:      EventXPAwarded,
		UserID:    userID,
		Amount:    amount,
		Timestamp: s.now(),
	})
}

// AddParticipation records a challenge entry and grants participation XP.
func (s *IdentityService) AddParticipation(ctx context.Context, userID uuid.UUID) {
	profile, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		logger.Log.Warn("load profile for participation failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	entered := profile.TotalParticipations + 1
	if _, err := s.profileRepo.UpdateProfile(ctx, userID, &models.ProfileUpdate{TotalParticipations: &entered}); err != nil {
		logger.Log.Warn("persist participation failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	s.AddXP(ctx, userID, models.XPParticipate)
}

// AddWin records a daily challenge win and grants the win XP.
func (s *IdentityService) AddWin(ctx context.Context, userID uuid.UUID) {
	profile, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		logger.Log.Warn("load profile for win failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	wins := profile.TotalWins + 1
	if _, err := s.profileRepo.UpdateProfile(ctx, userID, &models.ProfileUpdate{TotalWins: &wins}); err != nil {
		logger.Log.Warn("persist win failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	s.AddXP(ctx, userID, models.XPDailyWin)
}

// AddArenaPoints grants arena points to the profile counter.
func (s *IdentityService) AddArenaPoints(ctx context.Context, userID uuid.UUID, amount int) {
	if amount <= 0 {
		return
	}

	profile, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		logger.Log.Warn("load profile for arena points failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	points := profile.ArenaPoints + amount
	if _, err := s.profileRepo.UpdateProfile(ctx, userID, &models.ProfileUpdate{ArenaPoints: &points}); err != nil {
		logger.Log.Warn("persist arena points failed",
			zap.String("user_id", userID.String()), zap.Int("amount", amount), zap.Error(err))
	}
}

// UpdateStreak extends the daily streak by one, tracks the longest run and
// grants the streak bonus XP.
func (s *IdentityService) UpdateStreak(ctx context.Context, userID uuid.UUID) {
	profile, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		logger.Log.Warn("load profile for streak failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	current := profile.CurrentStreak + 1
	update := &models.ProfileUpdate{CurrentStreak: &current}
	if current > profile.LongestStreak {
		update.LongestStreak = &current
	}
	if _, err := s.profileRepo.UpdateProfile(ctx, userID, update); err != nil {
		logger.Log.Warn("persist streak failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}

	s.AddXP(ctx, userID, models.XPStreakBonus)
}

// Leaderboard returns the top profiles ranked by arena points.
func (s *IdentityService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	profiles, err := s.profileRepo.TopProfilesByArenaPoints(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      p.ID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Level:       p.Level,
			XP:          p.XP,
			ArenaPoints: p.ArenaPoints,
		})
	}
	return entries, nil
}

// ensureProfile loads the profile for a session, inserting the default row
// when the account exists without one.
func (s *IdentityService) ensureProfile(ctx context.Context, session *auth.Session) (*models.Profile, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, session.User.ID)
	if err == nil {
		return profile, nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}

	username := usernameFromSession(session)
	profile = models.NewProfile(session.User.ID, username, username, session.User.Email)
	if err := s.profileRepo.InsertProfile(ctx, profile); err != nil {
		if db.IsDuplicateKey(err) {
			return s.profileRepo.GetProfileByID(ctx, session.User.ID)
		}
		return nil, fmt.Errorf("repair missing profile: %w", err)
	}

	logger.Log.Info("created missing profile for existing account",
		zap.String("user_id", session.User.ID.String()))
	return profile, nil
}

func usernameFromSession(session *auth.Session) string {
	if v := session.User.Metadata["username"]; v != "" {
		return v
	}
	if at := strings.Index(session.User.Email, "@"); at > 0 {
		return session.User.Email[:at]
	}
	return "kullanici"
}

// Sign-in failures surface to users in Turkish. Unknown provider messages
// pass through unchanged.
var authErrorTranslations = map[string]string{
	"Invalid login credentials": "Email veya şifre hatalı. Kayıtlı değilseniz önce kayıt olun.",
	"Email not confirmed":       "Email onaylanmamış. Lütfen email kutunuzu kontrol edin.",
	"Invalid email":             "Geçersiz email adresi.",
}

func translateAuthError(err error) error {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		return err
	}
	if translated, ok := authErrorTranslations[authErr.Message]; ok {
		return &auth.Error{Status: authErr.Status, Message: translated}
	}
	return err
}
