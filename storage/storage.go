// Package storage holds the authoritative collections of characters and their conversations.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"character-chat/models"

	"github.com/google/uuid"
)

// Store is the character and conversation repository. Lookups that miss return a nil
// record and a nil error; callers decide how to report absence.
type Store interface {
	GetCharacter(ctx context.Context, id string) (*models.Character, error)
	// ListCharacters returns every character, most recently created first.
	ListCharacters(ctx context.Context) ([]models.Character, error)
	CreateCharacter(ctx context.Context, in models.NewCharacter) (models.Character, error)
	UpdateCharacter(ctx context.Context, id string, update models.CharacterUpdate) (*models.Character, error)
	// DeleteCharacter removes the character and its conversation, reporting whether
	// a character was removed.
	DeleteCharacter(ctx context.Context, id string) (bool, error)

	GetConversation(ctx context.Context, characterID string) (*models.Conversation, error)
	// CreateConversation returns the existing conversation when the character already has one.
	CreateConversation(ctx context.Context, in models.NewConversation) (models.Conversation, error)
	UpdateConversation(ctx context.Context, id string, update models.ConversationUpdate) (*models.Conversation, error)
	// AppendMessage adds the message built by next to conversation id in one atomic step.
	// next sees the messages already stored and may run more than once.
	AppendMessage(ctx context.Context, id string, next MessageBuilder) (*models.Conversation, error)

	Close() error
}

// MessageBuilder builds the message to append from the stored transcript
type MessageBuilder func(existing []models.Message) models.Message

// ValidationError reports input that breaks the character schema
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("invalid character: %s", strings.Join(names, ", "))
}

// validateNewCharacter checks the invariants every variant relies on.
func validateNewCharacter(in models.NewCharacter) error {
	var fields []models.FieldError
	required := []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"personality", in.Personality},
		{"origin", in.Origin},
		{"goals", in.Goals},
		{"fears", in.Fears},
		{"backstory", in.Backstory},
		{"archetype", in.Archetype},
	}
	for _, r := range required {
		if r.value == "" {
			fields = append(fields, models.FieldError{Field: r.name, Message: "is required"})
		}
	}
	for _, key := range models.TraitKeys {
		if v := in.PersonalityTraits.Get(key); v < 0 || v > 100 {
			fields = append(fields, models.FieldError{
				Field:   "personalityTraits." + key,
				Message: "must be between 0 and 100",
			})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// now is the creation time at the precision every variant can store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// buildCharacter assigns identity and creation time to validated input.
func buildCharacter(in models.NewCharacter) (models.Character, error) {
	if err := validateNewCharacter(in); err != nil {
		return models.Character{}, err
	}
	return models.Character{
		ID:                uuid.NewString(),
		Name:              in.Name,
		Personality:       in.Personality,
		Origin:            in.Origin,
		Goals:             in.Goals,
		Fears:             in.Fears,
		Backstory:         in.Backstory,
		Archetype:         in.Archetype,
		Avatar:            models.NormalizeAvatar(in.Avatar),
		PersonalityTraits: in.PersonalityTraits,
		TasteProfile:      in.TasteProfile.Clone(),
		CreatedAt:         now(),
	}, nil
}

func buildConversation(in models.NewConversation) models.Conversation {
	return models.Conversation{
		ID:          uuid.NewString(),
		CharacterID: in.CharacterID,
		Messages:    models.NormalizeMessages(in.Messages),
		CreatedAt:   now(),
	}
}
