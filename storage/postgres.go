package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"character-chat/models"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS characters (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	personality        TEXT NOT NULL,
	origin             TEXT NOT NULL,
	goals              TEXT NOT NULL,
	fears              TEXT NOT NULL,
	backstory          TEXT NOT NULL,
	archetype          TEXT NOT NULL,
	avatar             TEXT,
	personality_traits JSONB NOT NULL,
	taste_profile      JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS conversations (
	id           TEXT PRIMARY KEY,
	character_id TEXT NOT NULL UNIQUE,
	messages     JSONB NOT NULL DEFAULT '[]',
	created_at   TIMESTAMPTZ NOT NULL
);
`

const characterColumns = `id, name, personality, origin, goals, fears, backstory, archetype, avatar, personality_traits, taste_profile, created_at`

const conversationColumns = `id, character_id, messages, created_at`

// PostgresStore persists characters and conversations in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to databaseURL, verifies the connection and creates missing tables.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables if they do not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (models.Character, error) {
	var (
		c      models.Character
		avatar sql.NullString
		traits []byte
		taste  []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Personality, &c.Origin, &c.Goals, &c.Fears,
		&c.Backstory, &c.Archetype, &avatar, &traits, &taste, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if avatar.Valid {
		c.Avatar = models.NormalizeAvatar(&avatar.String)
	}
	if err := json.Unmarshal(traits, &c.PersonalityTraits); err != nil {
		return c, fmt.Errorf("failed to decode personality traits: %w", err)
	}
	if err := json.Unmarshal(taste, &c.TasteProfile); err != nil {
		return c, fmt.Errorf("failed to decode taste profile: %w", err)
	}
	c.TasteProfile = c.TasteProfile.Clone()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func scanConversation(row rowScanner) (models.Conversation, error) {
	var (
		conv     models.Conversation
		messages []byte
	)
	if err := row.Scan(&conv.ID, &conv.CharacterID, &messages, &conv.CreatedAt); err != nil {
		return conv, err
	}
	if err := json.Unmarshal(messages, &conv.Messages); err != nil {
		return conv, fmt.Errorf("failed to decode messages: %w", err)
	}
	conv.CreatedAt = conv.CreatedAt.UTC()
	return conv.Clone(), nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *PostgresStore) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	c, err := scanCharacter(s.db.QueryRowContext(ctx,
		"SELECT "+characterColumns+" FROM characters WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListCharacters(ctx context.Context) ([]models.Character, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+characterColumns+" FROM characters ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	characters := []models.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

func (s *PostgresStore) CreateCharacter(ctx context.Context, in models.NewCharacter) (models.Character, error) {
	c, err := buildCharacter(in)
	if err != nil {
		return models.Character{}, err
	}
	if err := s.insertCharacter(ctx, s.db, c); err != nil {
		return models.Character{}, err
	}
	return c, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) insertCharacter(ctx context.Context, db execer, c models.Character) error {
	traits, err := json.Marshal(c.PersonalityTraits)
	if err != nil {
		return err
	}
	taste, err := json.Marshal(c.TasteProfile)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO characters ("+characterColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		c.ID, c.Name, c.Personality, c.Origin, c.Goals, c.Fears, c.Backstory, c.Archetype,
		nullableString(c.Avatar), traits, taste, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert character: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCharacter(ctx context.Context, id string, update models.CharacterUpdate) (*models.Character, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := scanCharacter(tx.QueryRowContext(ctx,
		"SELECT "+characterColumns+" FROM characters WHERE id = $1 FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load character: %w", err)
	}

	c = update.Apply(c)
	traits, err := json.Marshal(c.PersonalityTraits)
	if err != nil {
		return nil, err
	}
	taste, err := json.Marshal(c.TasteProfile)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE characters SET name = $2, personality = $3, origin = $4, goals = $5, fears = $6,
			backstory = $7, archetype = $8, avatar = $9, personality_traits = $10, taste_profile = $11
		WHERE id = $1`,
		c.ID, c.Name, c.Personality, c.Origin, c.Goals, c.Fears, c.Backstory, c.Archetype,
		nullableString(c.Avatar), traits, taste)
	if err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit character update: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) DeleteCharacter(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE character_id = $1", id); err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM characters WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit character delete: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, characterID string) (*models.Conversation, error) {
	conv, err := scanConversation(s.db.QueryRowContext(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE character_id = $1", characterID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, in models.NewConversation) (models.Conversation, error) {
	conv := buildConversation(in)
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return models.Conversation{}, err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO conversations ("+conversationColumns+") VALUES ($1, $2, $3, $4) ON CONFLICT (character_id) DO NOTHING",
		conv.ID, conv.CharacterID, messages, conv.CreatedAt)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to insert conversation: %w", err)
	}

	existing, err := s.GetConversation(ctx, in.CharacterID)
	if err != nil {
		return models.Conversation{}, err
	}
	if existing == nil {
		return models.Conversation{}, fmt.Errorf("conversation for character %s vanished after insert", in.CharacterID)
	}
	return *existing, nil
}

func (s *PostgresStore) UpdateConversation(ctx context.Context, id string, update models.ConversationUpdate) (*models.Conversation, error) {
	var row *sql.Row
	if update.Messages != nil {
		messages, err := json.Marshal(models.NormalizeMessages(update.Messages))
		if err != nil {
			return nil, err
		}
		row = s.db.QueryRowContext(ctx,
			"UPDATE conversations SET messages = $2 WHERE id = $1 RETURNING "+conversationColumns,
			id, messages)
	} else {
		row = s.db.QueryRowContext(ctx,
			"SELECT "+conversationColumns+" FROM conversations WHERE id = $1", id)
	}

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return &conv, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, id string, next MessageBuilder) (*models.Conversation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRowContext(ctx, "SELECT messages FROM conversations WHERE id = $1 FOR UPDATE", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock conversation: %w", err)
	}
	var existing []models.Message
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	existing = models.NormalizeMessages(existing)

	messages, err := json.Marshal(models.NormalizeMessages(append(existing, next(existing))))
	if err != nil {
		return nil, err
	}
	conv, err := scanConversation(tx.QueryRowContext(ctx,
		"UPDATE conversations SET messages = $2 WHERE id = $1 RETURNING "+conversationColumns,
		id, messages))
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message append: %w", err)
	}
	return &conv, nil
}

// Close releases the database handle
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
