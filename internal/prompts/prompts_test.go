package prompts

import (
	"strings"
	"testing"
)

func TestBuildRegisteredPrompts(t *testing.T) {
	names := []PromptName{
		PromptSkillPathTree,
		PromptLessonTree,
		PromptQuizTree,
		PromptProjectTree,
	}
	in := Input{Topic: "CSS flexbox", Audience: "beginners", Difficulty: "easy"}
	for _, name := range names {
		t.Run(string(name), func(t *testing.T) {
			p, err := Build(name, in)
			if err != nil {
				t.Fatalf("Build(%s): %v", name, err)
			}
			if p.System == "" || p.User == "" {
				t.Fatalf("Build(%s): empty system or user prompt", name)
			}
			if p.SchemaName == "" || p.Schema == nil {
				t.Fatalf("Build(%s): missing schema", name)
			}
			if !strings.Contains(p.User, "CSS flexbox") {
				t.Fatalf("Build(%s): topic not rendered into user prompt:\n%s", name, p.User)
			}
		})
	}
}

func TestBuildUnknownPrompt(t *testing.T) {
	if _, err := Build(PromptName("nope"), Input{}); err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestCountRendering(t *testing.T) {
	with, err := Build(PromptSkillPathTree, Input{Topic: "Go", NumUnits: 4})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(with.User, "exactly 4 units") {
		t.Fatalf("explicit unit count not rendered:\n%s", with.User)
	}
	without, err := Build(PromptSkillPathTree, Input{Topic: "Go"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(without.User, "exactly") {
		t.Fatalf("count directive leaked without a count:\n%s", without.User)
	}
}

func TestFingerprintStableAndDistinct(t *testing.T) {
	a, err := Build(PromptLessonTree, Input{Topic: "loops"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(PromptLessonTree, Input{Topic: "loops"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("same prompt inputs produced different fingerprints")
	}
	c, err := Build(PromptLessonTree, Input{Topic: "recursion"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatal("different inputs produced identical fingerprints")
	}
}

func TestSchemasAreStrict(t *testing.T) {
	var assertStrict func(t *testing.T, path string, node map[string]any)
	assertStrict = func(t *testing.T, path string, node map[string]any) {
		typ, _ := node["type"].(string)
		switch typ {
		case "object":
			if ap, ok := node["additionalProperties"].(bool); !ok || ap {
				t.Fatalf("%s: object missing additionalProperties:false", path)
			}
			props, _ := node["properties"].(map[string]any)
			required, _ := node["required"].([]string)
			if len(props) != len(required) {
				t.Fatalf("%s: %d properties but %d required", path, len(props), len(required))
			}
			for name, sub := range props {
				if m, ok := sub.(map[string]any); ok {
					assertStrict(t, path+"."+name, m)
				}
			}
		case "array":
			if items, ok := node["items"].(map[string]any); ok {
				assertStrict(t, path+"[]", items)
			}
		}
	}

	for _, name := range []PromptName{PromptSkillPathTree, PromptLessonTree, PromptQuizTree, PromptProjectTree} {
		schemaName, schema, ok := Schema(name)
		if !ok {
			t.Fatalf("Schema(%s): not registered", name)
		}
		if schemaName == "" {
			t.Fatalf("Schema(%s): empty schema name", name)
		}
		assertStrict(t, string(name), schema)
	}
}

func TestBuildExerciseContentStyles(t *testing.T) {
	in := Input{
		ExerciseTitle:   "Center a div",
		LessonTitle:     "Flexbox basics",
		CodeType:        "html-css",
		Style:           "buggy",
		InstructionList: "1. Add a container\n2. Center its child",
	}
	system, user := BuildExerciseContent(in)
	if !strings.Contains(system, "Output only the code") {
		t.Fatalf("system prompt missing code-only directive:\n%s", system)
	}
	if !strings.Contains(user, codeStyleDirectives["buggy"]) {
		t.Fatalf("style directive not rendered:\n%s", user)
	}
	if !strings.Contains(user, "Center a div") {
		t.Fatalf("exercise title not rendered:\n%s", user)
	}
}

func TestBuildAllAnswersCountsSteps(t *testing.T) {
	in := Input{
		ExerciseTitle:   "Build a nav bar",
		CodeType:        "html",
		StepCount:       3,
		InstructionList: "1. a\n2. b\n3. c",
	}
	system, user := BuildAllAnswers(in)
	if !strings.Contains(system, "JSON array") {
		t.Fatalf("system prompt missing JSON array contract:\n%s", system)
	}
	if !strings.Contains(user, "Return exactly 3 objects.") {
		t.Fatalf("step count not rendered:\n%s", user)
	}
}

func TestBuildTheoryVariationStyles(t *testing.T) {
	for style, directive := range theoryStyleDirectives {
		in := Input{LessonTitle: "Closures", Style: style}
		_, user := BuildTheoryVariation(in)
		if !strings.Contains(user, directive) {
			t.Fatalf("style %q directive not rendered:\n%s", style, user)
		}
	}
	system, _ := BuildTheoryVariation(Input{LessonTitle: "Closures", Style: "standard"})
	if !strings.Contains(system, "HTML") {
		t.Fatalf("system prompt missing HTML contract:\n%s", system)
	}
}
