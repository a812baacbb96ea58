package prompts

type PromptName string

const (
	// Schema-constrained tree generation
	PromptSkillPathTree PromptName = "skillpath_tree"
	PromptLessonTree    PromptName = "lesson_tree"
	PromptQuizTree      PromptName = "quiz_tree"
	PromptProjectTree   PromptName = "project_tree"
)
