package models

import (
	"strings"
	"time"
)

// Trait keys, in the fixed order used wherever traits are ranked or listed.
const (
	TraitWisdom     = "wisdom"
	TraitMystery    = "mystery"
	TraitKindness   = "kindness"
	TraitCharisma   = "charisma"
	TraitAdventure  = "adventure"
	TraitAnalytical = "analytical"
)

// TraitKeys lists the six personality trait keys in their fixed order.
var TraitKeys = []string{TraitWisdom, TraitMystery, TraitKindness, TraitCharisma, TraitAdventure, TraitAnalytical}

// PersonalityTraits scores a character on the six fixed traits, each in [0,100].
type PersonalityTraits struct {
	Wisdom     int `json:"wisdom"`
	Mystery    int `json:"mystery"`
	Kindness   int `json:"kindness"`
	Charisma   int `json:"charisma"`
	Adventure  int `json:"adventure"`
	Analytical int `json:"analytical"`
}

// Get returns the score for a trait key. Unknown keys score zero.
func (t PersonalityTraits) Get(key string) int {
	switch key {
	case TraitWisdom:
		return t.Wisdom
	case TraitMystery:
		return t.Mystery
	case TraitKindness:
		return t.Kindness
	case TraitCharisma:
		return t.Charisma
	case TraitAdventure:
		return t.Adventure
	case TraitAnalytical:
		return t.Analytical
	}
	return 0
}

// TasteProfile holds a character's favourite music, books and movies.
type TasteProfile struct {
	Music  []string `json:"music"`
	Books  []string `json:"books"`
	Movies []string `json:"movies"`
}

// Clone returns a deep copy whose three lists are never nil.
func (t TasteProfile) Clone() TasteProfile {
	return TasteProfile{
		Music:  cloneStrings(t.Music),
		Books:  cloneStrings(t.Books),
		Movies: cloneStrings(t.Movies),
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Character represents one user-authored persona
type Character struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Personality       string            `json:"personality"`
	Origin            string            `json:"origin"`
	Goals             string            `json:"goals"`
	Fears             string            `json:"fears"`
	Backstory         string            `json:"backstory"`
	Archetype         string            `json:"archetype"`
	Avatar            *string           `json:"avatar"`
	PersonalityTraits PersonalityTraits `json:"personalityTraits"`
	TasteProfile      TasteProfile      `json:"tasteProfile"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// Clone returns a copy that shares no mutable state with c.
func (c Character) Clone() Character {
	out := c
	out.Avatar = NormalizeAvatar(c.Avatar)
	out.TasteProfile = c.TasteProfile.Clone()
	return out
}

// NewCharacter is the validated input for creating a character.
type NewCharacter struct {
	Name              string
	Personality       string
	Origin            string
	Goals             string
	Fears             string
	Backstory         string
	Archetype         string
	Avatar            *string
	PersonalityTraits PersonalityTraits
	TasteProfile      TasteProfile
}

// CharacterUpdate carries the fields of a partial update. Nil fields are left untouched.
// An empty Avatar clears it.
type CharacterUpdate struct {
	Name              *string
	Personality       *string
	Origin            *string
	Goals             *string
	Fears             *string
	Backstory         *string
	Archetype         *string
	Avatar            *string
	PersonalityTraits *PersonalityTraits
	TasteProfile      *TasteProfile
}

// Apply merges u over c and returns the result. Traits and taste profile are replaced wholesale.
func (u CharacterUpdate) Apply(c Character) Character {
	out := c.Clone()
	setString(&out.Name, u.Name)
	setString(&out.Personality, u.Personality)
	setString(&out.Origin, u.Origin)
	setString(&out.Goals, u.Goals)
	setString(&out.Fears, u.Fears)
	setString(&out.Backstory, u.Backstory)
	setString(&out.Archetype, u.Archetype)
	if u.Avatar != nil {
		out.Avatar = NormalizeAvatar(u.Avatar)
	}
	if u.PersonalityTraits != nil {
		out.PersonalityTraits = *u.PersonalityTraits
	}
	if u.TasteProfile != nil {
		out.TasteProfile = u.TasteProfile.Clone()
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// NormalizeAvatar copies an avatar reference, mapping blank values to nil.
func NormalizeAvatar(avatar *string) *string {
	if avatar == nil || strings.TrimSpace(*avatar) == "" {
		return nil
	}
	v := *avatar
	return &v
}

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderCharacter Sender = "character"
)

// ParseSender normalizes a sender label to one of the two known senders.
// Anything other than "user" is attributed to the character.
func ParseSender(s string) Sender {
	if strings.EqualFold(strings.TrimSpace(s), string(SenderUser)) {
		return SenderUser
	}
	return SenderCharacter
}

// Message represents a message in a conversation
type Message struct {
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Conversation is the message transcript of a single character
type Conversation struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"characterId"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a copy with its own message slice, never nil.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = NormalizeMessages(c.Messages)
	return out
}

// NormalizeMessages copies messages and coerces every sender to a known value.
func NormalizeMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i, msg := range in {
		msg.Sender = ParseSender(string(msg.Sender))
		out[i] = msg
	}
	return out
}

// NewConversation is the input for creating a conversation.
type NewConversation struct {
	CharacterID string
	Messages    []Message
}

// ConversationUpdate replaces the whole message list when Messages is non-nil.
type ConversationUpdate struct {
	Messages []Message
}
