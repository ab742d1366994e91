// Package models contains the data model and DTOs for the challenge arena
// service.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// XP rewards for engagement actions.
const (
	XPParticipate = 50
	XPWinVote     = 10
	XPDailyWin    = 500
	XPStreakBonus = 25
)

// Profile is the persisted progression record for one identity.
type Profile struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	Username            string    `json:"username" db:"username"`
	DisplayName         string    `json:"display_name" db:"display_name"`
	Email               string    `json:"email" db:"email"`
	AvatarURL           string    `json:"avatar_url" db:"avatar_url"`
	Bio                 string    `json:"bio" db:"bio"`
	Location            string    `json:"location" db:"location"`
	Website             string    `json:"website" db:"website"`
	Level               int       `json:"level" db:"level"`
	XP                  int       `json:"xp" db:"xp"`
	TotalWins           int       `json:"total_wins" db:"total_wins"`
	TotalParticipations int       `json:"total_participations" db:"total_participations"`
	CurrentStreak       int       `json:"current_streak" db:"current_streak"`
	LongestStreak       int       `json:"longest_streak" db:"longest_streak"`
	ArenaPoints         int       `json:"arena_points" db:"arena_points"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// NewProfile creates a profile with default counters for a fresh identity.
func NewProfile(id uuid.UUID, username, displayName, email string) *Profile {
	now := time.Now()
	return &Profile{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		Email:       email,
		AvatarURL:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", username),
		Level:       1,
		XP:          0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// LevelForXP derives the level from cumulative XP. The flat 1000-XP step is
// the authoritative scheme; the threshold table below only feeds progress
// bars.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/1000 + 1
}

// levelThresholds is the display-side progression curve.
var levelThresholds = []int{
	0, 500, 1200, 2000, 3000, 4500, 6500, 9000, 12000, 16000,
	21000, 27000, 34000, 42000, 51000, 61000, 72000, 84000, 97000, 111000,
}

// LevelProgress describes where an XP total sits on the display curve.
type LevelProgress struct {
	Level             int `json:"level"`
	XPForCurrentLevel int `json:"xp_for_current_level"`
	XPToNextLevel     int `json:"xp_to_next_level"`
}

// ProgressForXP returns the display-curve progress for an XP total.
func ProgressForXP(xp int) LevelProgress {
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if xp >= levelThresholds[i] {
			next := levelThresholds[i] + 15000
			if i+1 < len(levelThresholds) {
				next = levelThresholds[i+1]
			}
			return LevelProgress{
				Level:             i + 1,
				XPForCurrentLevel: levelThresholds[i],
				XPToNextLevel:     next,
			}
		}
	}
	return LevelProgress{Level: 1, XPForCurrentLevel: 0, XPToNextLevel: 500}
}

// ProfileUpdate is a typed partial update applied to a profile row. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Username            *string `json:"username,omitempty"`
	DisplayName         *string `json:"display_name,omitempty"`
	AvatarURL           *string `json:"avatar_url,omitempty"`
	Bio                 *string `json:"bio,omitempty"`
	Location            *string `json:"location,omitempty"`
	Website             *string `json:"website,omitempty"`
	Level               *int    `json:"level,omitempty"`
	XP                  *int    `json:"xp,omitempty"`
	TotalWins           *int    `json:"total_wins,omitempty"`
	TotalParticipations *int    `json:"total_participations,omitempty"`
	CurrentStreak       *int    `json:"current_streak,omitempty"`
	LongestStreak       *int    `json:"longest_streak,omitempty"`
	ArenaPoints         *int    `json:"arena_points,omitempty"`
}

// Validate rejects updates that would break profile invariants.
func (u *ProfileUpdate) Validate() error {
	if u.Username != nil && *u.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if u.XP != nil && *u.XP < 0 {
		return fmt.Errorf("xp cannot be negative")
	}
	if u.ArenaPoints != nil && *u.ArenaPoints < 0 {
		return fmt.Errorf("arena points cannot be negative")
	}
	return nil
}

// IsEmpty reports whether the update carries no fields.
func (u *ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.DisplayName == nil && u.AvatarURL == nil &&
		u.Bio == nil && u.Location == nil && u.Website == nil &&
		u.Level == nil && u.XP == nil && u.TotalWins == nil &&
		u.TotalParticipations == nil && u.CurrentStreak == nil &&
		u.LongestStreak == nil && u.ArenaPoints == nil
}

// Apply merges the update into a copy of the profile.
func (u *ProfileUpdate) Apply(p Profile) Profile {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Website != nil {
		p.Website = *u.Website
	}
	if u.Level != nil {
		p.Level = *u.Level
	}
	if u.XP != nil {
		p.XP = *u.XP
	}
	if u.TotalWins != nil {
		p.TotalWins = *u.TotalWins
	}
	if u.TotalParticipations != nil {
		p.TotalParticipations = *u.TotalParticipations
	}
	if u.CurrentStreak != nil {
		p.CurrentStreak = *u.CurrentStreak
	}
	if u.LongestStreak != nil {
		p.LongestStreak = *u.LongestStreak
	}
	if u.ArenaPoints != nil {
		p.ArenaPoints = *u.ArenaPoints
	}
	p.UpdatedAt = time.Now()
	return p
}
