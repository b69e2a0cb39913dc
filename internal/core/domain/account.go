package domain

import "time"

// DefaultMoodID is reserved for the always-present "assistant" mood, owned
// by the bot administrator and always public.
const DefaultMoodID int64 = 0

// MaxMoodsPerUser caps mood creation for non-admin users.
const MaxMoodsPerUser = 10

// Mood is a named, ownable bundle of system instructions controlling the
// bot's persona.
type Mood struct {
	ID           int64
	OwnerID      int64
	Name         string
	Description  string
	Instructions string
	IsPrivate    bool
	CreatedAt    time.Time
}

// MoodUses pairs a mood with its generation count, used for the
// popularity-sorted public listing.
type MoodUses struct {
	Mood Mood
	Uses int64
}

type UserAccount struct {
	ID int64
	Platform
	// CurrentMoodID is nil after the selected mood has been deleted; it
	// fails over to DefaultMoodID at next use.
	CurrentMoodID  *int64
	CurrentModelID string
	Persona        string
	IsOwner        bool
	CreatedAt      time.Time
}

// GenerationRecord is an append-only log entry, kept for popularity counts.
type GenerationRecord struct {
	ID        int64
	Response  string
	UserID    int64
	ModelName string
	// MoodID is nil once the mood has been deleted.
	MoodID    *int64
	CreatedAt time.Time
}

// UserField and MoodField name the columns reachable through the generic
// single-field update operation.
type UserField string

const (
	UserFieldMood    UserField = "current_mood_id"
	UserFieldModel   UserField = "current_model_id"
	UserFieldPersona UserField = "persona"
)

type MoodField string

const (
	MoodFieldName         MoodField = "name"
	MoodFieldDescription  MoodField = "description"
	MoodFieldInstructions MoodField = "instructions"
	MoodFieldIsPrivate    MoodField = "is_private"
)
