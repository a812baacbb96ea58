package prompts

import (
	"fmt"
	"strings"
)

// Free-text prompts have no schema; the caller post-processes the raw text
// through the normalizer.

var codeStyleDirectives = map[string]string{
	"starter":  "Write starter code: working scaffolding with TODO comments where the learner fills in the solution.",
	"complete": "Write the complete, working solution.",
	"partial":  "Write a partially complete solution: the core logic is done, supporting pieces are left for the learner.",
	"skeleton": "Write only the structural skeleton: signatures, selectors or markup outline, no working logic.",
	"buggy":    "Write a solution that contains 2-3 deliberate bugs a learner at this level should be able to find.",
}

var theoryStyleDirectives = map[string]string{
	"standard":     "Explain the concept plainly and directly.",
	"simplified":   "Explain as if to a complete beginner. Short sentences, everyday analogies, no jargon.",
	"technical":    "Explain with precise terminology and implementation detail for an experienced developer.",
	"storytelling": "Explain through a short narrative that motivates the concept before defining it.",
	"visual":       "Explain with described diagrams and spatial metaphors; structure the text around what the reader should picture.",
}

// BuildExerciseContent builds the free-text prompt for generating exercise
// code (starter or solution flavored by style).
func BuildExerciseContent(in Input) (system, user string) {
	system = voicePreamble + `
You produce a single block of code for one exercise. Output only the code,
no commentary, no markdown fences.`

	var b strings.Builder
	fmt.Fprintf(&b, "Exercise: %s\n", in.ExerciseTitle)
	if in.LessonTitle != "" {
		fmt.Fprintf(&b, "Lesson: %s\n", in.LessonTitle)
	}
	if in.LessonDescription != "" {
		fmt.Fprintf(&b, "Lesson description: %s\n", in.LessonDescription)
	}
	fmt.Fprintf(&b, "Language: %s\n", in.CodeType)
	if in.InstructionList != "" {
		fmt.Fprintf(&b, "The exercise walks through these steps, in order:\n%s\n", in.InstructionList)
	}
	if directive, ok := codeStyleDirectives[in.Style]; ok {
		b.WriteString(directive + "\n")
	}
	if in.Custom != "" {
		fmt.Fprintf(&b, "Additional direction: %s\n", in.Custom)
	}
	return system, strings.TrimSpace(b.String())
}

// BuildAllAnswers builds the one-call prompt that asks for a solution per
// instruction step, as a JSON array. One call covers every instruction to
// avoid a round trip per step.
func BuildAllAnswers(in Input) (system, user string) {
	system = voicePreamble + `
You produce solution code for every step of one exercise in a single response.
Respond with a JSON array only: one object {"step": <1-based step number>,
"code": "<solution code for that step>"} per instruction, in order. The code
for each step builds on the previous steps. No markdown fences, no text
outside the JSON array.`

	var b strings.Builder
	fmt.Fprintf(&b, "Exercise: %s\n", in.ExerciseTitle)
	if in.LessonTitle != "" {
		fmt.Fprintf(&b, "Lesson: %s\n", in.LessonTitle)
	}
	fmt.Fprintf(&b, "Language: %s\n", in.CodeType)
	fmt.Fprintf(&b, "There are %d steps:\n%s\n", in.StepCount, in.InstructionList)
	fmt.Fprintf(&b, "Return exactly %d objects.", in.StepCount)
	return system, strings.TrimSpace(b.String())
}

// BuildTheoryVariation builds the prompt for an alternate theory rendering
// of a lesson in the requested style.
func BuildTheoryVariation(in Input) (system, user string) {
	system = voicePreamble + `
You rewrite lesson theory in a requested style. Output clean HTML using p,
h2, h3, ul, li, strong and code tags only. No markdown fences.`

	var b strings.Builder
	fmt.Fprintf(&b, "Lesson: %s\n", in.LessonTitle)
	if in.LessonDescription != "" {
		fmt.Fprintf(&b, "Lesson description: %s\n", in.LessonDescription)
	}
	if in.ExerciseTitle != "" {
		fmt.Fprintf(&b, "Related exercise: %s\n", in.ExerciseTitle)
	}
	if in.TheoryExcerpt != "" {
		fmt.Fprintf(&b, "Existing theory to rework:\n%s\n", in.TheoryExcerpt)
	}
	if directive, ok := theoryStyleDirectives[in.Style]; ok {
		b.WriteString(directive + "\n")
	}
	return system, strings.TrimSpace(b.String())
}
