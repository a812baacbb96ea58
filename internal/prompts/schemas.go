package prompts

// Strict structured-output schemas. The generation service requires that
// object schemas list every property in "required" and set
// additionalProperties to false, so optional fields are modeled as
// always-present empty strings.

func StringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func EnumSchema(values ...string) map[string]any {
	arr := make([]any, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return map[string]any{"type": "string", "enum": arr}
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func arrayOf(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}

func codeTypeSchema() map[string]any {
	return EnumSchema("html", "css", "js", "python", "html-css", "html-css-js")
}

func starterFields() map[string]any {
	return map[string]any{
		"starter_html":   map[string]any{"type": "string"},
		"starter_css":    map[string]any{"type": "string"},
		"starter_js":     map[string]any{"type": "string"},
		"starter_python": map[string]any{"type": "string"},
	}
}

// ---------- SkillPath ----------

func SkillPathTreeSchema() map[string]any {
	moduleSchema := objectSchema(map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
	}, []string{"title", "description"})

	unitSchema := objectSchema(map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"modules":     arrayOf(moduleSchema),
	}, []string{"title", "description", "modules"})

	return objectSchema(map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"units":       arrayOf(unitSchema),
	}, []string{"title", "description", "units"})
}

// ---------- Lesson ----------

func instructionSchema() map[string]any {
	return objectSchema(map[string]any{
		"title":       map[string]any{"type": "string"},
		"content":     map[string]any{"type": "string"},
		"answer_code": map[string]any{"type": "string"},
	}, []string{"title", "content", "answer_code"})
}

func LessonTreeSchema() map[string]any {
	props := map[string]any{
		"title":        map[string]any{"type": "string"},
		"code_type":    codeTypeSchema(),
		"instructions": arrayOf(instructionSchema()),
	}
	for k, v := range starterFields() {
		props[k] = v
	}
	exerciseSchema := objectSchema(props, []string{
		"title", "code_type", "starter_html", "starter_css", "starter_js", "starter_python", "instructions",
	})

	return objectSchema(map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"exercises":   arrayOf(exerciseSchema),
	}, []string{"title", "description", "exercises"})
}

// ---------- Quiz ----------

func QuizTreeSchema() map[string]any {
	answerSchema := objectSchema(map[string]any{
		"text":       map[string]any{"type": "string"},
		"is_correct": map[string]any{"type": "boolean"},
	}, []string{"text", "is_correct"})

	answersSchema := arrayOf(answerSchema)
	answersSchema["minItems"] = 4
	answersSchema["maxItems"] = 4

	questionSchema := objectSchema(map[string]any{
		"text":        map[string]any{"type": "string"},
		"explanation": map[string]any{"type": "string"},
		"answers":     answersSchema,
	}, []string{"text", "explanation", "answers"})

	return objectSchema(map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"questions":   arrayOf(questionSchema),
	}, []string{"title", "description", "questions"})
}

// ---------- Project ----------

func ProjectTreeSchema() map[string]any {
	props := map[string]any{
		"title":        map[string]any{"type": "string"},
		"description":  map[string]any{"type": "string"},
		"task_type":    EnumSchema("code", "theory", "setup"),
		"code_type":    codeTypeSchema(),
		"instructions": arrayOf(instructionSchema()),
	}
	for k, v := range starterFields() {
		props[k] = v
	}
	taskSchema := objectSchema(props, []string{
		"title", "description", "task_type", "code_type",
		"starter_html", "starter_css", "starter_js", "starter_python", "instructions",
	})

	return objectSchema(map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"brief":       map[string]any{"type": "string"},
		"tasks":       arrayOf(taskSchema),
	}, []string{"title", "description", "brief", "tasks"})
}
