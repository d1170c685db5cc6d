package responder

import "character-chat/models"

// Bank is the phrase set of one archetype.
type Bank struct {
	// Introductions are text/template sources rendered against the character.
	Introductions []string
	General       []string
	// Inspiration is keyed by dominant trait. Traits without an entry use InspirationGeneral.
	Inspiration        map[string][]string
	InspirationGeneral []string
	StoryHelp          []string
	MoralAdvice        []string
	Greeting           string
	Preview            string
}

// DefaultArchetype names the bank used for archetypes without one of their own.
const DefaultArchetype = "Elven Mage"

var defaultIntroductions = []string{
	`I'm {{ .Name }}, and I've lived quite a journey. {{ .Backstory | trimSuffix "." }} shaped who I am today.`,
}

const (
	defaultGreeting = `Hello there! I'm {{ .Name | default "someone" }} - what creative venture shall we explore?`
	defaultPreview  = "Ready for our next conversation..."
)

var banks = map[string]Bank{
	"Elven Mage": {
		Introductions: []string{
			`I am {{ .Name }}, keeper of ancient wisdom from {{ .Origin }}. The forest spirits have guided me for centuries, teaching me the delicate balance between magic and nature.`,
			`Greetings, I am {{ .Name }}. I've spent lifetimes studying the mystical arts in {{ .Origin }}, where every leaf whispers secrets of the universe.`,
		},
		General: []string{
			"The ancient trees whisper secrets to those who know how to listen. What wisdom do you seek today?",
			"In my centuries of existence, I've learned that every challenge carries within it the seed of growth.",
			"The forest spirits tell me you have a creative heart. Let it guide you through uncertainty.",
			"Magic flows through all things, even through the stories we tell. What tale wishes to be born through you?",
		},
		Inspiration: map[string][]string{
			models.TraitWisdom: {
				"When the path seems unclear, remember that even the mightiest oak began as a small acorn. Your ideas need time to take root and grow.",
				"The moon phases teach us that creativity, like all natural things, has its seasons. Perhaps this is your time for reflection before the next burst of inspiration.",
			},
			models.TraitCharisma: {
				"Your creative spirit shines bright, but every flame needs kindling. What small spark can you nurture today?",
				"I sense great potential within you. Trust in your unique voice - the world needs stories only you can tell.",
			},
			models.TraitAdventure: {
				"Adventure often begins with a single step into the unknown. What unexplored idea calls to your heart?",
				"The greatest journeys start with curiosity. What question about your story world keeps you awake at night?",
			},
		},
		InspirationGeneral: []string{
			"Creativity is like magic - it flows best when we stop trying to control it and simply become vessels for its expression.",
			"Every master was once a beginner. Your creative journey is sacred, no matter where you are on the path.",
		},
		StoryHelp: []string{
			"Ah, the art of storytelling. The most powerful stories often begin with a character's deepest fear or greatest desire. What drives your protagonist?",
			"The forest has taught me that every ending contains a new beginning. How might your story's conclusion plant seeds for future growth?",
			"Magic systems in stories, like real magic, must have rules and costs. What price must your characters pay for their power?",
		},
		MoralAdvice: []string{
			"True moral dilemmas often reveal character more than they resolve situations. What does your protagonist value most deeply? Their choice will flow from that truth.",
			"In the old tales, the greatest heroes weren't those who never made mistakes, but those who learned wisdom from their failures. How might your character grow through this choice?",
			"The forest spirits taught me that sometimes the right path isn't the easy one. What would your character choose if they knew no one would ever know their decision?",
		},
		Greeting: "Greetings, seeker. The ancient trees have whispered of your arrival...",
		Preview:  "The path ahead is shrouded in mist, but your heart knows the way...",
	},
	"Space Smuggler": {
		Introductions: []string{
			`The name's {{ .Name }}, and I've been running cargo across the galaxy longer than most folks have been breathing. {{ .Origin }} taught me that sometimes you gotta bend the rules to do what's right.`,
			`{{ .Name }} here. I've seen more star systems than I can count, survived more close calls than I care to remember. Growing up in {{ .Origin }} taught me to always have an escape plan.`,
		},
		General: []string{
			"Hey there, partner! Another day, another adventure waiting to unfold. What's the mission?",
			"You know, I've been in tight spots before, but the best way out is usually straight through. What's got you stuck?",
			"Trust me, I've seen enough of the galaxy to know that every problem has a solution - you just gotta think outside the spaceship.",
			"Life's too short to play it safe all the time. Sometimes the craziest plan is the one that works.",
		},
		Inspiration: map[string][]string{
			models.TraitWisdom: {
				"You know what I've learned in all my travels? The best ideas come when you're not trying so hard. Take a step back and let your mind wander.",
				"I've smuggled cargo through asteroid fields and past blockades. The secret? Stay flexible and trust your instincts.",
			},
			models.TraitCharisma: {
				"Hey, everyone hits a rough patch now and then. Every great story needs some obstacles - otherwise, where's the fun?",
				"You've got that spark, I can tell. Sometimes you just need to stop overthinking and trust the process.",
			},
			models.TraitAdventure: {
				"Feeling stuck? Sounds like you need a change of scenery! Sometimes the best ideas come when you least expect them.",
				"The galaxy's full of possibilities, partner. What if you took your story somewhere completely unexpected?",
			},
		},
		InspirationGeneral: []string{
			"Look, sometimes you gotta make your own luck. What bold move could shake things up for your story?",
			"Every smuggler knows that the cargo you're not supposed to carry is usually the most valuable. What forbidden idea are you avoiding?",
		},
		StoryHelp: []string{
			"Alright, story problems - my specialty! Every good heist needs a clear goal, a clever plan, and something that goes completely wrong. How does this apply to your tale?",
			"Characters are like crew members - each one needs a role, a skill, and a reason they can't walk away. What keeps your characters invested in the outcome?",
			"The best adventures start with someone taking a job they probably shouldn't. What's the 'job' your protagonist can't refuse?",
		},
		MoralAdvice: []string{
			"Moral dilemmas, huh? I've faced plenty. Sometimes doing the 'right' thing means breaking a few rules. What matters more - the law or what's actually just?",
			"The galaxy's not black and white - it's all shades of gray out there. Your character's gotta decide what they can live with. What would haunt them more - action or inaction?",
			"The choices that seem impossible usually aren't. There's almost always a third option - you just gotta be creative enough to find it.",
		},
		Greeting: "Well, well, what do we have here? Another soul looking for adventure?",
		Preview:  "Trust me, I've got a plan. It might be crazy, but it just might work...",
	},
	"Victorian Detective": {
		Introductions: []string{
			`I am Dr. {{ .Name }}, a consulting detective operating in the fog-shrouded streets of London. My methods may be unconventional, but logic and observation rarely fail me.`,
			`{{ .Name }} at your service. I've dedicated my life to unraveling the mysteries that confound Scotland Yard, using reason where others see only chaos.`,
		},
		General: []string{
			"Ah, a most intriguing puzzle presents itself. Every mystery has a pattern, we simply must observe carefully.",
			"In my experience, the most obvious solution is often a clever misdirection. What details might we be overlooking?",
			"The fog of London may obscure the streets, but logic illuminates the darkest corners of any mystery.",
			"Every character, much like every person, has hidden depths. What layers might your protagonist be concealing?",
		},
		Inspiration: map[string][]string{
			models.TraitWisdom: {
				"When the mind feels clouded, approach the problem as one would a crime scene. What evidence do you have? What assumptions might you be making?",
				"The greatest breakthroughs often come not from finding new information, but from seeing existing information in a new light.",
			},
			models.TraitCharisma: {
				"Creativity, like detective work, requires both methodical analysis and intuitive leaps. You possess both qualities - trust in them.",
				"Every master detective knows that the smallest detail can unlock the entire case. What small element of your story might hold the key?",
			},
			models.TraitAdventure: {
				"The thrill of the chase is what drives us, is it not? What mystery within your story excites you most to solve?",
				"Sometimes we must follow the clues wherever they lead, even into uncharted territory. What unexplored path beckons to you?",
			},
		},
		InspirationGeneral: []string{
			"Observation and deduction are powerful tools, but so is imagination. What would happen if you let your creativity run wild for just a moment?",
			"Every case teaches us something new. What has your current creative challenge taught you about yourself or your craft?",
		},
		StoryHelp: []string{
			"Ah, the craft of narrative construction! Like a good mystery, every story needs clues, red herrings, and a satisfying revelation. What truth is your story building toward?",
			"Character motivation is like a criminal's motive - it must be clear, compelling, and personal. What drives your characters to act as they do?",
			"The best plot twists are both surprising and inevitable. When the reader looks back, they should see all the clues were there. How might you plant such seeds?",
		},
		MoralAdvice: []string{
			"Moral complexity makes for the most interesting cases, and the most interesting characters. What if neither choice is entirely right or wrong?",
			"In my investigations, I've learned that people rarely act from pure motives. What conflicting desires might be driving your character's dilemma?",
			"The truth has a way of revealing itself, but it's rarely simple. What uncomfortable truth might your character be avoiding?",
		},
		Greeting: "Ah, a visitor to my study. Perhaps a fresh perspective would be illuminating?",
		Preview:  "The evidence points to a most peculiar conclusion, wouldn't you agree?",
	},
}

// Archetypes returns the archetypes that have a phrase bank of their own.
func Archetypes() []string {
	return []string{"Elven Mage", "Space Smuggler", "Victorian Detective"}
}
