package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Generation request
	Topic      string
	Audience   string
	Difficulty string
	Custom     string

	// Tree sizing
	NumUnits     int
	NumModules   int
	NumLessons   int
	NumExercises int
	NumQuestions int
	NumTasks     int

	// Free-text context (exercise content, bulk answers, theory)
	LessonTitle       string
	LessonDescription string
	ExerciseTitle     string
	CodeType          string
	Style             string
	InstructionList   string
	TheoryExcerpt     string
	StepCount         int
}
