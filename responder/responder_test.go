package responder_test

import (
	"character-chat/models"
	"character-chat/responder"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func zara() models.Character {
	return models.Character{
		ID:          "zara",
		Name:        "Zara",
		Personality: "wise",
		Origin:      "Forest",
		Goals:       "peace",
		Fears:       "loss",
		Backstory:   "Raised among the old trees.",
		Archetype:   "Elven Mage",
		PersonalityTraits: models.PersonalityTraits{
			Wisdom: 90, Mystery: 60, Kindness: 70, Charisma: 50, Adventure: 40, Analytical: 30,
		},
		TasteProfile: models.TasteProfile{Music: []string{}, Books: []string{}, Movies: []string{}},
	}
}

func first(int) int { return 0 }

var _ = Describe("Classify", func() {
	DescribeTable("detects intent with first match winning",
		func(text string, want responder.Intent) {
			Expect(responder.Classify(text)).To(Equal(want))
		},
		Entry("self introduction", "Tell me about yourself", responder.IntentIntroduction),
		Entry("punctuation is ignored", "Who ARE you?", responder.IntentIntroduction),
		Entry("inspiration", "I need creative inspiration", responder.IntentInspiration),
		Entry("help outranks story", "Help me with my story", responder.IntentInspiration),
		Entry("story help", "my plot has a hole", responder.IntentStoryHelp),
		Entry("moral dilemma", "what is the right decision", responder.IntentMoralDilemma),
		Entry("introduction outranks moral", "what should you do", responder.IntentIntroduction),
		Entry("nothing matches", "lovely weather", responder.IntentGeneral),
		Entry("substrings do not match", "helpful storyteller", responder.IntentGeneral),
	)
})

var _ = Describe("DominantTrait", func() {
	It("returns the highest trait", func() {
		Expect(responder.DominantTrait(models.PersonalityTraits{Charisma: 80, Wisdom: 10})).To(Equal(models.TraitCharisma))
	})

	It("breaks ties by trait key order", func() {
		traits := models.PersonalityTraits{Wisdom: 50, Mystery: 70, Adventure: 70, Analytical: 70}
		Expect(responder.DominantTrait(traits)).To(Equal(models.TraitMystery))
		Expect(responder.DominantTrait(models.PersonalityTraits{})).To(Equal(models.TraitWisdom))
	})
})

var _ = Describe("Selector", func() {
	var selector *responder.Selector

	BeforeEach(func() {
		selector = responder.NewWithPicker(first)
	})

	It("introduces the character with its name and origin", func() {
		reply := responder.New().Reply(zara(), "tell me about yourself", nil)
		Expect(reply).To(ContainSubstring("Zara"))
		Expect(reply).To(ContainSubstring("Forest"))
	})

	It("uses the generic introduction for unknown archetypes", func() {
		c := zara()
		c.Archetype = "Pirate Bard"
		reply := selector.Reply(c, "who are you", nil)
		Expect(reply).To(Equal("I'm Zara, and I've lived quite a journey. Raised among the old trees shaped who I am today."))
	})

	It("draws inspiration from the dominant trait", func() {
		reply := selector.Reply(zara(), "I'm stuck", nil)
		Expect(responder.BankFor("Elven Mage").Inspiration[models.TraitWisdom]).To(ContainElement(reply))
	})

	It("falls back to general inspiration when the trait has no phrases", func() {
		c := zara()
		c.PersonalityTraits = models.PersonalityTraits{Analytical: 95}
		reply := selector.Reply(c, "need an idea", nil)
		Expect(responder.BankFor("Elven Mage").InspirationGeneral).To(ContainElement(reply))
	})

	It("answers story and moral questions from the archetype bank", func() {
		c := zara()
		c.Archetype = "Space Smuggler"
		bank := responder.BankFor("Space Smuggler")
		Expect(bank.StoryHelp).To(ContainElement(selector.Reply(c, "my plot is weak", nil)))
		Expect(bank.MoralAdvice).To(ContainElement(selector.Reply(c, "a moral dilemma", nil)))
		Expect(bank.General).To(ContainElement(selector.Reply(c, "hello there", nil)))
	})

	It("uses the default bank for unknown archetypes", func() {
		c := zara()
		c.Archetype = "Pirate Bard"
		Expect(responder.BankFor(responder.DefaultArchetype).General).To(ContainElement(selector.Reply(c, "hello", nil)))
	})

	It("draws from the same candidates whatever the history", func() {
		general := responder.BankFor("Elven Mage").General
		history := []models.Message{
			{Sender: models.SenderCharacter, Content: general[0]},
			{Sender: models.SenderUser, Content: "hmm"},
		}
		var withHistory, without int
		s := responder.NewWithPicker(func(n int) int { withHistory = n; return 0 })
		Expect(s.Reply(zara(), "hmm", history)).To(Equal(general[0]))
		s = responder.NewWithPicker(func(n int) int { without = n; return 0 })
		Expect(s.Reply(zara(), "hmm", nil)).To(Equal(general[0]))
		Expect(withHistory).To(Equal(len(general)))
		Expect(without).To(Equal(withHistory))
	})

	It("can pick either introduction after one was already given", func() {
		c := zara()
		given := responder.NewWithPicker(first).Reply(c, "tell me about yourself", nil)
		history := []models.Message{
			{Sender: models.SenderUser, Content: "tell me about yourself"},
			{Sender: models.SenderCharacter, Content: given},
		}
		intros := map[string]bool{}
		for i := 0; i < 2; i++ {
			s := responder.NewWithPicker(func(int) int { return i })
			intros[s.Reply(c, "tell me about yourself", history)] = true
		}
		Expect(intros).To(HaveLen(2))
		Expect(intros).To(HaveKey(given))
	})

	It("passes the candidate count to the picker", func() {
		var seen int
		s := responder.NewWithPicker(func(n int) int { seen = n; return n - 1 })
		reply := s.Reply(zara(), "hello", nil)
		general := responder.BankFor("Elven Mage").General
		Expect(seen).To(Equal(len(general)))
		Expect(reply).To(Equal(general[len(general)-1]))
	})
})

var _ = Describe("presentation helpers", func() {
	It("greets with the archetype line or the default", func() {
		Expect(responder.Greeting(zara())).To(HavePrefix("Greetings, seeker."))

		c := zara()
		c.Archetype = "Pirate Bard"
		Expect(responder.Greeting(c)).To(Equal("Hello there! I'm Zara - what creative venture shall we explore?"))
		c.Name = ""
		Expect(responder.Greeting(c)).To(ContainSubstring("I'm someone"))
	})

	It("previews by archetype", func() {
		Expect(responder.Preview("Victorian Detective")).To(ContainSubstring("evidence"))
		Expect(responder.Preview("unknown")).To(Equal("Ready for our next conversation..."))
	})

	It("tags at most three traits above seventy", func() {
		Expect(responder.TraitTags(zara().PersonalityTraits)).To(Equal([]string{"Wisdom"}))
		all := models.PersonalityTraits{Wisdom: 80, Mystery: 80, Kindness: 80, Charisma: 80, Adventure: 80, Analytical: 80}
		Expect(responder.TraitTags(all)).To(Equal([]string{"Wisdom", "Mystery", "Kindness"}))
		Expect(responder.TraitTags(models.PersonalityTraits{Kindness: 70})).To(BeEmpty())
	})

	It("builds a card", func() {
		card := responder.Card(zara())
		Expect(card.ID).To(Equal("zara"))
		Expect(card.TraitTags).To(Equal([]string{"Wisdom"}))
		Expect(card.Preview).To(ContainSubstring("shrouded in mist"))
	})
})
