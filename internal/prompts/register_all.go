package prompts

// Platform voice shared by every schema-constrained generation prompt.
const voicePreamble = `You write content for SkillForge, a hands-on coding education platform.
The voice is direct, encouraging, and practical. Learners build real things;
avoid academic filler. Rich-text fields contain clean HTML (p, h2, h3, ul, li,
strong, code). Code fields contain plain code with no markdown fences.`

func init() {
	RegisterSpec(Spec{
		Name:       PromptSkillPathTree,
		Version:    1,
		SchemaName: "skillpath_tree",
		Schema:     SkillPathTreeSchema,
		System: voicePreamble + `
Return a complete skill path: a titled learning track broken into units, each
unit broken into modules. Unit and module titles are specific, not generic.`,
		User: `Topic: {{.Topic}}
{{if .Audience}}Target audience: {{.Audience}}.{{end}}
{{if .Difficulty}}Difficulty: {{.Difficulty}}.{{end}}
{{if .NumUnits}}Create exactly {{.NumUnits}} units.{{else}}Create 3 to 5 units.{{end}}
{{if .NumModules}}Each unit has exactly {{.NumModules}} modules.{{else}}Each unit has 2 to 4 modules.{{end}}
{{if .Custom}}Additional direction: {{.Custom}}{{end}}`,
	})

	RegisterSpec(Spec{
		Name:       PromptLessonTree,
		Version:    1,
		SchemaName: "lesson_tree",
		Schema:     LessonTreeSchema,
		System: voicePreamble + `
Return one lesson with practical exercises. Each exercise declares its code
type, starter code for exactly the languages that code type covers (other
starter fields are empty strings), and a sequence of instructions. Each
instruction has an HTML body telling the learner what to do and an answer_code
field with the solution code for that single step.`,
		User: `Topic: {{.Topic}}
{{if .Audience}}Target audience: {{.Audience}}.{{end}}
{{if .Difficulty}}Difficulty: {{.Difficulty}}.{{end}}
{{if .NumExercises}}Create exactly {{.NumExercises}} exercises.{{else}}Create 2 or 3 exercises.{{end}}
Each exercise has 3 to 6 instructions.
{{if .Custom}}Additional direction: {{.Custom}}{{end}}`,
	})

	RegisterSpec(Spec{
		Name:       PromptQuizTree,
		Version:    1,
		SchemaName: "quiz_tree",
		Schema:     QuizTreeSchema,
		System: voicePreamble + `
Return one quiz. Every question has exactly 4 answers with exactly one
is_correct set to true, and an explanation of the correct answer.`,
		User: `Topic: {{.Topic}}
{{if .Audience}}Target audience: {{.Audience}}.{{end}}
{{if .Difficulty}}Difficulty: {{.Difficulty}}.{{end}}
{{if .NumQuestions}}Create exactly {{.NumQuestions}} questions.{{else}}Create 5 questions.{{end}}
{{if .Custom}}Additional direction: {{.Custom}}{{end}}`,
	})

	RegisterSpec(Spec{
		Name:       PromptProjectTree,
		Version:    1,
		SchemaName: "project_tree",
		Schema:     ProjectTreeSchema,
		System: voicePreamble + `
Return one project: a brief in rich HTML describing what the learner will
build, and an ordered list of tasks. Code tasks carry starter code for the
languages their code type covers; theory and setup tasks leave the starter
fields as empty strings. Each task has step-by-step instructions with
answer_code per step (empty string for non-code steps).`,
		User: `Topic: {{.Topic}}
{{if .Audience}}Target audience: {{.Audience}}.{{end}}
{{if .Difficulty}}Difficulty: {{.Difficulty}}.{{end}}
{{if .NumTasks}}Create exactly {{.NumTasks}} tasks.{{else}}Create 4 to 6 tasks.{{end}}
{{if .Custom}}Additional direction: {{.Custom}}{{end}}`,
	})
}
