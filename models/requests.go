package models

// TraitsRequest is the wire form of PersonalityTraits. Pointers make a missing key
// distinguishable from a zero score.
type TraitsRequest struct {
	Wisdom     *int `json:"wisdom" binding:"required,min=0,max=100"`
	Mystery    *int `json:"mystery" binding:"required,min=0,max=100"`
	Kindness   *int `json:"kindness" binding:"required,min=0,max=100"`
	Charisma   *int `json:"charisma" binding:"required,min=0,max=100"`
	Adventure  *int `json:"adventure" binding:"required,min=0,max=100"`
	Analytical *int `json:"analytical" binding:"required,min=0,max=100"`
}

// Traits converts a validated request.
func (r *TraitsRequest) Traits() PersonalityTraits {
	return PersonalityTraits{
		Wisdom:     deref(r.Wisdom),
		Mystery:    deref(r.Mystery),
		Kindness:   deref(r.Kindness),
		Charisma:   deref(r.Charisma),
		Adventure:  deref(r.Adventure),
		Analytical: deref(r.Analytical),
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// TasteRequest is the wire form of TasteProfile; each list must be present, possibly empty.
type TasteRequest struct {
	Music  []string `json:"music" binding:"required"`
	Books  []string `json:"books" binding:"required"`
	Movies []string `json:"movies" binding:"required"`
}

// Profile converts a validated request.
func (r *TasteRequest) Profile() TasteProfile {
	return TasteProfile{Music: r.Music, Books: r.Books, Movies: r.Movies}.Clone()
}

// CreateCharacterRequest is the request body for creating a character
type CreateCharacterRequest struct {
	Name              string         `json:"name" binding:"required"`
	Personality       string         `json:"personality" binding:"required"`
	Origin            string         `json:"origin" binding:"required"`
	Goals             string         `json:"goals" binding:"required"`
	Fears             string         `json:"fears" binding:"required"`
	Backstory         string         `json:"backstory" binding:"required"`
	Archetype         string         `json:"archetype" binding:"required"`
	Avatar            *string        `json:"avatar"`
	PersonalityTraits *TraitsRequest `json:"personalityTraits" binding:"required"`
	TasteProfile      *TasteRequest  `json:"tasteProfile" binding:"required"`
}

// NewCharacter converts a validated request into storage input.
func (r CreateCharacterRequest) NewCharacter() NewCharacter {
	return NewCharacter{
		Name:              r.Name,
		Personality:       r.Personality,
		Origin:            r.Origin,
		Goals:             r.Goals,
		Fears:             r.Fears,
		Backstory:         r.Backstory,
		Archetype:         r.Archetype,
		Avatar:            NormalizeAvatar(r.Avatar),
		PersonalityTraits: r.PersonalityTraits.Traits(),
		TasteProfile:      r.TasteProfile.Profile(),
	}
}

// UpdateCharacterRequest is the request body for a partial character update
type UpdateCharacterRequest struct {
	Name              *string        `json:"name" binding:"omitnil,min=1"`
	Personality       *string        `json:"personality" binding:"omitnil,min=1"`
	Origin            *string        `json:"origin" binding:"omitnil,min=1"`
	Goals             *string        `json:"goals" binding:"omitnil,min=1"`
	Fears             *string        `json:"fears" binding:"omitnil,min=1"`
	Backstory         *string        `json:"backstory" binding:"omitnil,min=1"`
	Archetype         *string        `json:"archetype" binding:"omitnil,min=1"`
	Avatar            *string        `json:"avatar"`
	PersonalityTraits *TraitsRequest `json:"personalityTraits" binding:"omitnil"`
	TasteProfile      *TasteRequest  `json:"tasteProfile" binding:"omitnil"`
}

// CharacterUpdate converts a validated request into storage input.
func (r UpdateCharacterRequest) CharacterUpdate() CharacterUpdate {
	u := CharacterUpdate{
		Name:        r.Name,
		Personality: r.Personality,
		Origin:      r.Origin,
		Goals:       r.Goals,
		Fears:       r.Fears,
		Backstory:   r.Backstory,
		Archetype:   r.Archetype,
		Avatar:      r.Avatar,
	}
	if r.PersonalityTraits != nil {
		traits := r.PersonalityTraits.Traits()
		u.PersonalityTraits = &traits
	}
	if r.TasteProfile != nil {
		taste := r.TasteProfile.Profile()
		u.TasteProfile = &taste
	}
	return u
}

// AddMessageRequest is the request body for appending a message
type AddMessageRequest struct {
	Content string `json:"content" binding:"required"`
	Sender  string `json:"sender" binding:"required"`
}

// ChatRequest is the request body for a chat turn
type ChatRequest struct {
	Content string `json:"content" binding:"required"`
}

// ChatResponse is the response for a chat turn
type ChatResponse struct {
	UserMessage      Message      `json:"userMessage"`
	CharacterMessage Message      `json:"characterMessage"`
	Conversation     Conversation `json:"conversation"`
}

// CreatorMessageRequest is one user turn of the guided creation flow
type CreatorMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// CreatorResponse is the creation agent's reply
type CreatorResponse struct {
	Reply    string `json:"reply"`
	Complete bool   `json:"complete"`
}

// CharacterCard is the dashboard summary of a character
type CharacterCard struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Archetype string   `json:"archetype"`
	Avatar    *string  `json:"avatar"`
	Greeting  string   `json:"greeting"`
	Preview   string   `json:"preview"`
	TraitTags []string `json:"traitTags"`
}

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
