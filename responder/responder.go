// Package responder picks scripted replies for a character from its archetype's phrase bank.
package responder

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"sync"
	"text/template"
	"unicode"

	"character-chat/models"

	"github.com/Masterminds/sprig/v3"
	"github.com/mudler/xlog"
)

// Intent is what the user appears to be asking for
type Intent int

const (
	IntentGeneral Intent = iota
	IntentIntroduction
	IntentInspiration
	IntentStoryHelp
	IntentMoralDilemma
)

func (i Intent) String() string {
	switch i {
	case IntentIntroduction:
		return "introduction"
	case IntentInspiration:
		return "inspiration"
	case IntentStoryHelp:
		return "story-help"
	case IntentMoralDilemma:
		return "moral-dilemma"
	}
	return "general"
}

// intentKeywords is checked in order; the first intent with a matching word wins.
var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentIntroduction, []string{"tell", "about", "yourself", "who", "are", "you"}},
	{IntentInspiration, []string{"inspiration", "stuck", "help", "creative", "block", "idea"}},
	{IntentStoryHelp, []string{"story", "plot", "character", "scene", "dialogue", "writing"}},
	{IntentMoralDilemma, []string{"moral", "choice", "decision", "dilemma", "should", "right", "wrong"}},
}

// Tokenize splits text into lowercase words, dropping punctuation.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// Classify returns the intent of a user message.
func Classify(text string) Intent {
	words := map[string]bool{}
	for _, w := range Tokenize(text) {
		words[w] = true
	}
	for _, k := range intentKeywords {
		for _, w := range k.words {
			if words[w] {
				return k.intent
			}
		}
	}
	return IntentGeneral
}

// DominantTrait returns the highest scoring trait. Ties go to the key listed first
// in models.TraitKeys.
func DominantTrait(traits models.PersonalityTraits) string {
	best := models.TraitKeys[0]
	for _, key := range models.TraitKeys[1:] {
		if traits.Get(key) > traits.Get(best) {
			best = key
		}
	}
	return best
}

// BankFor returns the archetype's bank, or the default bank when it has none.
func BankFor(archetype string) Bank {
	if b, ok := banks[archetype]; ok {
		return b
	}
	return banks[DefaultArchetype]
}

var (
	tmplMu    sync.Mutex
	tmplCache = map[string]*template.Template{}
)

func render(src string, c models.Character) (string, error) {
	tmplMu.Lock()
	t, ok := tmplCache[src]
	if !ok {
		var err error
		t, err = template.New("reply").Funcs(sprig.TxtFuncMap()).Parse(src)
		if err != nil {
			tmplMu.Unlock()
			return "", err
		}
		tmplCache[src] = t
	}
	tmplMu.Unlock()

	var buf bytes.Buffer
	if err := t.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Selector chooses replies. Randomness only breaks ties between equally fitting phrases.
type Selector struct {
	intn func(n int) int
}

// New creates a selector drawing from the process-wide random source
func New() *Selector {
	return &Selector{intn: rand.IntN}
}

// NewWithPicker creates a selector that uses intn to choose among n candidates.
func NewWithPicker(intn func(n int) int) *Selector {
	return &Selector{intn: intn}
}

// Reply answers userText as character c. history is the conversation so far; the
// candidate list depends only on the character and userText.
func (s *Selector) Reply(c models.Character, userText string, history []models.Message) string {
	intent := Classify(userText)
	bank := BankFor(c.Archetype)
	xlog.Debug("Selecting reply", "character", c.ID, "archetype", c.Archetype, "intent", intent.String())

	var candidates []string
	switch intent {
	case IntentIntroduction:
		candidates = s.introductions(c)
	case IntentInspiration:
		candidates = bank.Inspiration[DominantTrait(c.PersonalityTraits)]
		if len(candidates) == 0 {
			candidates = bank.InspirationGeneral
		}
	case IntentStoryHelp:
		candidates = bank.StoryHelp
	case IntentMoralDilemma:
		candidates = bank.MoralAdvice
	}
	if len(candidates) == 0 {
		candidates = bank.General
	}
	xlog.Debug("Reply candidates", "count", len(candidates), "history", len(history))
	return s.pick(candidates)
}

func (s *Selector) introductions(c models.Character) []string {
	sources := defaultIntroductions
	if b, ok := banks[c.Archetype]; ok && len(b.Introductions) > 0 {
		sources = b.Introductions
	}
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		text, err := render(src, c)
		if err != nil {
			xlog.Warn("Failed to render introduction", "archetype", c.Archetype, "error", err)
			continue
		}
		out = append(out, text)
	}
	return out
}

func (s *Selector) pick(candidates []string) string {
	return candidates[s.intn(len(candidates))]
}

// Greeting is the character's opening line
func Greeting(c models.Character) string {
	if b, ok := banks[c.Archetype]; ok && b.Greeting != "" {
		return b.Greeting
	}
	text, err := render(defaultGreeting, c)
	if err != nil {
		xlog.Warn("Failed to render greeting", "character", c.ID, "error", err)
		return "Hello there!"
	}
	return text
}

// Preview is the teaser line shown on a character card
func Preview(archetype string) string {
	if b, ok := banks[archetype]; ok && b.Preview != "" {
		return b.Preview
	}
	return defaultPreview
}

const (
	traitTagThreshold = 70
	maxTraitTags      = 3
)

// TraitTags labels the character's standout traits, at most three, in trait key order.
func TraitTags(traits models.PersonalityTraits) []string {
	tags := []string{}
	for _, key := range models.TraitKeys {
		if traits.Get(key) > traitTagThreshold {
			tags = append(tags, strings.ToUpper(key[:1])+key[1:])
		}
		if len(tags) == maxTraitTags {
			break
		}
	}
	return tags
}

// Card summarizes a character for listing screens
func Card(c models.Character) models.CharacterCard {
	return models.CharacterCard{
		ID:        c.ID,
		Name:      c.Name,
		Archetype: c.Archetype,
		Avatar:    c.Avatar,
		Greeting:  Greeting(c),
		Preview:   Preview(c.Archetype),
		TraitTags: TraitTags(c.PersonalityTraits),
	}
}
