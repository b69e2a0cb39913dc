package port

import (
	"context"
	"moodbot/internal/core/domain"
)

type UserRepository interface {
	Add(ctx context.Context, id int64, platform domain.Platform) error
	Get(ctx context.Context, id int64) (*domain.UserAccount, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Remove(ctx context.Context, id int64) error
	UpdateField(ctx context.Context, id int64, field domain.UserField, value any) error
}

type MoodRepository interface {
	Add(ctx context.Context, mood domain.Mood) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Mood, error)
	// ListPublic returns public moods sorted by generation count, most
	// popular first.
	ListPublic(ctx context.Context) ([]domain.MoodUses, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Mood, error)
	Remove(ctx context.Context, id int64) error
	UpdateField(ctx context.Context, id int64, field domain.MoodField, value any) error
	// CurrentFor resolves the user's selected mood. Returns nil when the
	// selection points nowhere (deleted mood); callers fail over to the
	// default mood.
	CurrentFor(ctx context.Context, userID int64) (*domain.Mood, error)
}

type GenerationRepository interface {
	Add(ctx context.Context, rec domain.GenerationRecord) (int64, error)
	CountByMood(ctx context.Context, moodID int64) (int64, error)
}
