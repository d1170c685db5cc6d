package storage

import (
	"context"
	"sort"
	"sync"

	"character-chat/models"
)

// MemoryStore keeps everything in process memory. Records are copied on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	characters    map[string]models.Character
	order         []string
	conversations map[string]models.Conversation
	byCharacter   map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		characters:    map[string]models.Character{},
		conversations: map[string]models.Conversation{},
		byCharacter:   map[string]string{},
	}
}

func (s *MemoryStore) GetCharacter(_ context.Context, id string) (*models.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.characters[id]
	if !ok {
		return nil, nil
	}
	out := c.Clone()
	return &out, nil
}

func (s *MemoryStore) ListCharacters(_ context.Context) ([]models.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Character, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.characters[id].Clone())
	}
	// equal timestamps keep insertion order
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateCharacter(_ context.Context, in models.NewCharacter) (models.Character, error) {
	c, err := buildCharacter(in)
	if err != nil {
		return models.Character{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.characters[c.ID] = c
	s.order = append(s.order, c.ID)
	return c.Clone(), nil
}

func (s *MemoryStore) UpdateCharacter(_ context.Context, id string, update models.CharacterUpdate) (*models.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.characters[id]
	if !ok {
		return nil, nil
	}
	c = update.Apply(c)
	s.characters[id] = c
	out := c.Clone()
	return &out, nil
}

func (s *MemoryStore) DeleteCharacter(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.characters[id]
	delete(s.characters, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if convID, ok := s.byCharacter[id]; ok {
		delete(s.conversations, convID)
		delete(s.byCharacter, id)
	}
	return existed, nil
}

func (s *MemoryStore) GetConversation(_ context.Context, characterID string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convID, ok := s.byCharacter[characterID]
	if !ok {
		return nil, nil
	}
	out := s.conversations[convID].Clone()
	return &out, nil
}

func (s *MemoryStore) CreateConversation(_ context.Context, in models.NewConversation) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if convID, ok := s.byCharacter[in.CharacterID]; ok {
		return s.conversations[convID].Clone(), nil
	}
	conv := buildConversation(in)
	s.conversations[conv.ID] = conv
	s.byCharacter[conv.CharacterID] = conv.ID
	return conv.Clone(), nil
}

func (s *MemoryStore) UpdateConversation(_ context.Context, id string, update models.ConversationUpdate) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	if update.Messages != nil {
		conv.Messages = models.NormalizeMessages(update.Messages)
	}
	s.conversations[id] = conv
	out := conv.Clone()
	return &out, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, id string, next MessageBuilder) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	conv = conv.Clone()
	conv.Messages = models.NormalizeMessages(append(conv.Messages, next(conv.Messages)))
	s.conversations[id] = conv
	out := conv.Clone()
	return &out, nil
}

// Close is a no-op; memory is released with the process.
func (s *MemoryStore) Close() error {
	return nil
}
