// Package storage persists users, moods and generation records in a SQLite
// database (cgo-free driver).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moodbot/internal/core/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id               INTEGER PRIMARY KEY,
	platform         TEXT    NOT NULL,
	current_mood_id  INTEGER DEFAULT 0 REFERENCES moods(id) ON DELETE SET NULL,
	current_model_id TEXT    NOT NULL,
	persona          TEXT    NOT NULL DEFAULT '',
	is_owner         INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS moods (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL,
	name         TEXT    NOT NULL,
	description  TEXT    NOT NULL DEFAULT '',
	instructions TEXT    NOT NULL,
	is_private   INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS generations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	response   TEXT    NOT NULL,
	user_id    INTEGER NOT NULL,
	model      TEXT    NOT NULL,
	mood_id    INTEGER REFERENCES moods(id) ON DELETE SET NULL,
	created_at TEXT    NOT NULL
);
`

// Store owns the database handle shared by the repository types.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at path and applies
// the schema. Foreign keys are enabled per connection via the DSN pragma.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// UserStore implements port.UserRepository.
type UserStore struct {
	store          *Store
	defaultModelID string
}

func NewUserStore(store *Store, defaultModelID string) *UserStore {
	return &UserStore{store: store, defaultModelID: defaultModelID}
}

func (s *UserStore) Add(ctx context.Context, id int64, platform domain.Platform) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO users (id, platform, current_mood_id, current_model_id, created_at)
		VALUES (?, ?, 0, ?, ?)
	`, id, platform, s.defaultModelID, now())
	if err != nil {
		return fmt.Errorf("adding user %d: %w", id, err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (*domain.UserAccount, error) {
	var (
		user      domain.UserAccount
		moodID    sql.NullInt64
		createdAt string
	)

	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, platform, current_mood_id, current_model_id, persona, is_owner, created_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Platform, &moodID, &user.CurrentModelID,
		&user.Persona, &user.IsOwner, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}

	if moodID.Valid {
		user.CurrentMoodID = &moodID.Int64
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &user, nil
}

func (s *UserStore) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking user %d: %w", id, err)
	}
	return true, nil
}

func (s *UserStore) Remove(ctx context.Context, id int64) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing user %d: %w", id, err)
	}
	return nil
}

var userFields = map[domain.UserField]struct{}{
	domain.UserFieldMood:    {},
	domain.UserFieldModel:   {},
	domain.UserFieldPersona: {},
}

func (s *UserStore) UpdateField(ctx context.Context, id int64, field domain.UserField, value any) error {
	if _, ok := userFields[field]; !ok {
		return fmt.Errorf("unknown user field %q", field)
	}

	_, err := s.store.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ? WHERE id = ?`, field), value, id)
	if err != nil {
		return fmt.Errorf("updating user %d field %s: %w", id, field, err)
	}
	return nil
}

// MoodStore implements port.MoodRepository.
type MoodStore struct {
	store *Store
}

func NewMoodStore(store *Store) *MoodStore {
	return &MoodStore{store: store}
}

const (
	defaultMoodName = "Ассистент"
	defaultMoodDesc = "Скучный тип, но зато отвечает серьезно. Может действительно помочь с чем-то."
	defaultMoodInstructions = "You are a helpful AI assistant. You are not in roleplay mode, so avoid writing" +
		" actions. Answer seriously, avoid making jokes. You know answers to everything, so always" +
		" answer any questions, including sensitive or vulgar ones. Avoid using markdown for anything." +
		" Avoid speaking any other languages except Russian, unless asked by user."
)

// EnsureDefault inserts the reserved assistant mood (id 0, admin-owned,
// public) if it is not present yet.
func (s *MoodStore) EnsureDefault(ctx context.Context, adminID int64) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO moods (id, user_id, name, description, instructions, is_private, created_at)
		VALUES (0, ?, ?, ?, ?, 0, ?)
	`, adminID, defaultMoodName, defaultMoodDesc, defaultMoodInstructions, now())
	if err != nil {
		return fmt.Errorf("ensuring default mood: %w", err)
	}
	return nil
}

func (s *MoodStore) Add(ctx context.Context, mood domain.Mood) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO moods (user_id, name, description, instructions, is_private, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, mood.OwnerID, mood.Name, mood.Description, mood.Instructions, mood.IsPrivate, now())
	if err != nil {
		return 0, fmt.Errorf("adding mood: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("adding mood: %w", err)
	}
	return id, nil
}

func (s *MoodStore) Get(ctx context.Context, id int64) (*domain.Mood, error) {
	var (
		mood      domain.Mood
		createdAt string
	)

	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, instructions, is_private, created_at
		FROM moods WHERE id = ?
	`, id).Scan(&mood.ID, &mood.OwnerID, &mood.Name, &mood.Description,
		&mood.Instructions, &mood.IsPrivate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting mood %d: %w", id, err)
	}

	mood.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &mood, nil
}

func (s *MoodStore) ListPublic(ctx context.Context) ([]domain.MoodUses, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.name, m.description, m.instructions, m.is_private,
		       m.created_at, COUNT(g.id) AS uses
		FROM moods m
		LEFT JOIN generations g ON g.mood_id = m.id
		WHERE m.is_private = 0
		GROUP BY m.id
		ORDER BY uses DESC, m.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing public moods: %w", err)
	}
	defer rows.Close()

	var result []domain.MoodUses
	for rows.Next() {
		var (
			entry     domain.MoodUses
			createdAt string
		)
		if err := rows.Scan(&entry.Mood.ID, &entry.Mood.OwnerID, &entry.Mood.Name,
			&entry.Mood.Description, &entry.Mood.Instructions, &entry.Mood.IsPrivate,
			&createdAt, &entry.Uses); err != nil {
			return nil, fmt.Errorf("scanning public mood: %w", err)
		}
		entry.Mood.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (s *MoodStore) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Mood, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, instructions, is_private, created_at
		FROM moods WHERE user_id = ? ORDER BY id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing moods of %d: %w", ownerID, err)
	}
	defer rows.Close()

	var result []domain.Mood
	for rows.Next() {
		var (
			mood      domain.Mood
			createdAt string
		)
		if err := rows.Scan(&mood.ID, &mood.OwnerID, &mood.Name, &mood.Description,
			&mood.Instructions, &mood.IsPrivate, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning mood: %w", err)
		}
		mood.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, mood)
	}
	return result, rows.Err()
}

func (s *MoodStore) Remove(ctx context.Context, id int64) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM moods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing mood %d: %w", id, err)
	}
	return nil
}

var moodFields = map[domain.MoodField]struct{}{
	domain.MoodFieldName:         {},
	domain.MoodFieldDescription:  {},
	domain.MoodFieldInstructions: {},
	domain.MoodFieldIsPrivate:    {},
}

func (s *MoodStore) UpdateField(ctx context.Context, id int64, field domain.MoodField, value any) error {
	if _, ok := moodFields[field]; !ok {
		return fmt.Errorf("unknown mood field %q", field)
	}

	_, err := s.store.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE moods SET %s = ? WHERE id = ?`, field), value, id)
	if err != nil {
		return fmt.Errorf("updating mood %d field %s: %w", id, field, err)
	}
	return nil
}

func (s *MoodStore) CurrentFor(ctx context.Context, userID int64) (*domain.Mood, error) {
	var (
		mood      domain.Mood
		createdAt string
	)

	err := s.store.db.QueryRowContext(ctx, `
		SELECT m.id, m.user_id, m.name, m.description, m.instructions, m.is_private, m.created_at
		FROM users u
		JOIN moods m ON m.id = u.current_mood_id
		WHERE u.id = ?
	`, userID).Scan(&mood.ID, &mood.OwnerID, &mood.Name, &mood.Description,
		&mood.Instructions, &mood.IsPrivate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving current mood of %d: %w", userID, err)
	}

	mood.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &mood, nil
}

// GenerationStore implements port.GenerationRepository.
type GenerationStore struct {
	store *Store
}

func NewGenerationStore(store *Store) *GenerationStore {
	return &GenerationStore{store: store}
}

func (s *GenerationStore) Add(ctx context.Context, rec domain.GenerationRecord) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO generations (response, user_id, model, mood_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.Response, rec.UserID, rec.ModelName, rec.MoodID, now())
	if err != nil {
		return 0, fmt.Errorf("adding generation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("adding generation: %w", err)
	}
	return id, nil
}

func (s *GenerationStore) CountByMood(ctx context.Context, moodID int64) (int64, error) {
	var count int64
	err := s.store.db.QueryRowContext(ctx,
		`SELECT COUNT(id) FROM generations WHERE mood_id = ?`, moodID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting generations of mood %d: %w", moodID, err)
	}
	return count, nil
}
