package curriculum

import (
	"fmt"
	"strings"
)

const outlineSystemPrompt = `You are a curriculum designer for a self-study app. Given a topic, you map it into a small dependency graph of learning units a motivated adult can work through on their own.

Rules:
- Each unit is a focused module: one sitting of study, one clear outcome.
- Dependencies express genuine prerequisites only. Do not chain units linearly out of habit; independent branches should stay independent.
- At least one unit must have no dependencies (a starting point).
- Dependencies may only reference ids defined in this curriculum, and must never form a cycle.
- ids are short kebab-case slugs derived from the title.
- Descriptions are plain text, 2-3 sentences, no markdown.`

func buildOutlineUserMessage(topic string, unitCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Unit count: about %d\n", unitCount)
	b.WriteString(`
Instructions:
Design the curriculum as a dependency graph. Start from what a newcomer must learn first, branch where subtopics are independent, and converge on the most advanced unit(s). Include a glossary of the key terms a learner will meet.`)
	return b.String()
}

const subOutlineSystemPrompt = `You are a curriculum designer for a self-study app. A learner wants to go deeper on one unit of a course they are working through. Design a short nested curriculum that drills into exactly that unit's material.

Rules:
- Stay inside the unit's scope; this is depth, not breadth.
- Dependencies express genuine prerequisites only, reference ids defined in this curriculum only, and must never form a cycle.
- At least one unit must have no dependencies.
- ids are short kebab-case slugs derived from the title.
- Descriptions are plain text, 2-3 sentences, no markdown.`

func buildSubOutlineUserMessage(in DeepStudyInput, unitCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Unit to drill into: %s\n", in.Unit.Title)
	fmt.Fprintf(&b, "Unit description: %s\n", in.Unit.Description)
	fmt.Fprintf(&b, "Unit count: about %d\n", unitCount)
	b.WriteString(`
Instructions:
Break this single unit into a nested curriculum of smaller steps. Include a glossary of terms specific to this deeper material.`)
	return b.String()
}

const followOnSystemPrompt = `You are a curriculum designer for a self-study app. A learner has finished the last unit of a branch and wants to keep going. Suggest what to study next.

Rules:
- Each suggestion must build directly on the completed unit.
- Do not repeat or rephrase any unit already in the course.
- Suggest nothing rather than padding: an empty list is a valid answer when the branch is genuinely exhausted.
- Descriptions are plain text, 2-3 sentences, no markdown.`

func buildFollowOnUserMessage(in FollowOnInput, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Just completed: %s\n", in.Unit.Title)
	fmt.Fprintf(&b, "Its description: %s\n", in.Unit.Description)

	b.WriteString("\nAlready in the course:\n")
	if len(in.ExistingTitles) == 0 {
		b.WriteString("None\n")
	} else {
		for _, title := range in.ExistingTitles {
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}

	fmt.Fprintf(&b, "\nInstructions:\nSuggest up to %d follow-on units that extend this branch.", count)
	return b.String()
}
