package models

import (
	"time"

	"github.com/google/uuid"
)

// Emotions a child can log
const (
	EmotionHappy   = "happy"
	EmotionSad     = "sad"
	EmotionAngry   = "angry"
	EmotionScared  = "scared"
	EmotionCalm    = "calm"
	EmotionExcited = "excited"
)

// ValidEmotion reports whether emotion is one of the known emotions.
func ValidEmotion(emotion string) bool {
	switch emotion {
	case EmotionHappy, EmotionSad, EmotionAngry, EmotionScared, EmotionCalm, EmotionExcited:
		return true
	}
	return false
}

type Child struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ParentID         uuid.UUID  `json:"parent_id"`
	Name             string     `json:"name"`
	BirthYear        int        `json:"birth_year,omitempty"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	StarTotal        int        `json:"star_total"`
	StreakCount      int        `json:"streak_count"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	IsActive         bool       `json:"is_active"`
}

type Progress struct {
	ID          uuid.UUID `json:"id"`
	ChildID     uuid.UUID `json:"child_id"`
	ActivityID  uuid.UUID `json:"activity_id"`
	Stars       int       `json:"stars"`
	CompletedAt time.Time `json:"completed_at"`
}

type EmotionLog struct {
	ID       uuid.UUID `json:"id"`
	ChildID  uuid.UUID `json:"child_id"`
	Emotion  string    `json:"emotion"`
	Note     string    `json:"note,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// NextStreak returns the streak count after a completion on day `completed`,
// given the previous completion day. Consecutive days extend the streak,
// a same-day repeat keeps it, anything else restarts at 1.
func NextStreak(current int, last *time.Time, completed time.Time) int {
	if last == nil {
		return 1
	}
	// Compare calendar dates in each timestamp's own zone; truncating to
	// 24h buckets would cut days at UTC boundaries instead of local midnight
	ly, lm, ld := last.Date()
	cy, cm, cd := completed.Date()
	lastDay := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	day := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	switch day.Sub(lastDay) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	}
	return 1
}
