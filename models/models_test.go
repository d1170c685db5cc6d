package models_test

import (
	"character-chat/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ptr[T any](v T) *T { return &v }

var _ = Describe("CharacterUpdate", func() {
	var base models.Character

	BeforeEach(func() {
		base = models.Character{
			ID:                "c1",
			Name:              "Zara",
			Goals:             "peace",
			Avatar:            ptr("zara.png"),
			PersonalityTraits: models.PersonalityTraits{Wisdom: 90, Mystery: 60},
			TasteProfile:      models.TasteProfile{Music: []string{"harp"}},
		}
	})

	It("leaves nil fields untouched", func() {
		out := models.CharacterUpdate{Goals: ptr("balance")}.Apply(base)
		Expect(out.Goals).To(Equal("balance"))
		Expect(out.Name).To(Equal("Zara"))
		Expect(*out.Avatar).To(Equal("zara.png"))
		Expect(out.PersonalityTraits).To(Equal(base.PersonalityTraits))
	})

	It("replaces traits and taste wholesale", func() {
		out := models.CharacterUpdate{
			PersonalityTraits: &models.PersonalityTraits{Kindness: 10},
			TasteProfile:      &models.TasteProfile{Books: []string{"Dune"}},
		}.Apply(base)
		Expect(out.PersonalityTraits).To(Equal(models.PersonalityTraits{Kindness: 10}))
		Expect(out.TasteProfile.Music).To(BeEmpty())
		Expect(out.TasteProfile.Music).ToNot(BeNil())
		Expect(out.TasteProfile.Books).To(Equal([]string{"Dune"}))
	})

	It("clears the avatar on a blank value", func() {
		out := models.CharacterUpdate{Avatar: ptr("  ")}.Apply(base)
		Expect(out.Avatar).To(BeNil())
	})

	It("does not share state with the input", func() {
		out := models.CharacterUpdate{}.Apply(base)
		out.TasteProfile.Music[0] = "drums"
		*out.Avatar = "other.png"
		Expect(base.TasteProfile.Music[0]).To(Equal("harp"))
		Expect(*base.Avatar).To(Equal("zara.png"))
	})
})

var _ = DescribeTable("ParseSender",
	func(in string, want models.Sender) {
		Expect(models.ParseSender(in)).To(Equal(want))
	},
	Entry("user", "user", models.SenderUser),
	Entry("mixed case user", " User ", models.SenderUser),
	Entry("character", "character", models.SenderCharacter),
	Entry("anything else", "bot", models.SenderCharacter),
)

var _ = Describe("PersonalityTraits", func() {
	It("looks up scores by key", func() {
		t := models.PersonalityTraits{Wisdom: 1, Mystery: 2, Kindness: 3, Charisma: 4, Adventure: 5, Analytical: 6}
		scores := make([]int, 0, len(models.TraitKeys))
		for _, k := range models.TraitKeys {
			scores = append(scores, t.Get(k))
		}
		Expect(scores).To(Equal([]int{1, 2, 3, 4, 5, 6}))
		Expect(t.Get("luck")).To(BeZero())
	})
})
