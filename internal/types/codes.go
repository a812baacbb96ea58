package types

// CodeType is the language (or combination) an exercise or task targets.
type CodeType string

const (
	CodeTypeHTML      CodeType = "html"
	CodeTypeCSS       CodeType = "css"
	CodeTypeJS        CodeType = "js"
	CodeTypePython    CodeType = "python"
	CodeTypeHTMLCSS   CodeType = "html-css"
	CodeTypeHTMLCSSJS CodeType = "html-css-js"
)

func (c CodeType) Valid() bool {
	switch c {
	case CodeTypeHTML, CodeTypeCSS, CodeTypeJS, CodeTypePython, CodeTypeHTMLCSS, CodeTypeHTMLCSSJS:
		return true
	}
	return false
}

// Primary returns the single language a one-field answer should land in.
// Combination types answer in their first language.
func (c CodeType) Primary() CodeType {
	switch c {
	case CodeTypeHTMLCSS, CodeTypeHTMLCSSJS:
		return CodeTypeHTML
	}
	return c
}

// TaskType distinguishes project task flavors.
type TaskType string

const (
	TaskTypeCode   TaskType = "code"
	TaskTypeTheory TaskType = "theory"
	TaskTypeSetup  TaskType = "setup"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeCode, TaskTypeTheory, TaskTypeSetup:
		return true
	}
	return false
}

// CodeStyle directs free-text code generation for exercise content.
type CodeStyle string

const (
	CodeStyleStarter  CodeStyle = "starter"
	CodeStyleComplete CodeStyle = "complete"
	CodeStylePartial  CodeStyle = "partial"
	CodeStyleSkeleton CodeStyle = "skeleton"
	CodeStyleBuggy    CodeStyle = "buggy"
)

func (s CodeStyle) Valid() bool {
	switch s {
	case CodeStyleStarter, CodeStyleComplete, CodeStylePartial, CodeStyleSkeleton, CodeStyleBuggy:
		return true
	}
	return false
}

// TheoryStyle directs theory variation prose.
type TheoryStyle string

const (
	TheoryStyleStandard     TheoryStyle = "standard"
	TheoryStyleSimplified   TheoryStyle = "simplified"
	TheoryStyleTechnical    TheoryStyle = "technical"
	TheoryStyleStorytelling TheoryStyle = "storytelling"
	TheoryStyleVisual       TheoryStyle = "visual"
)

func (s TheoryStyle) Valid() bool {
	switch s {
	case TheoryStyleStandard, TheoryStyleSimplified, TheoryStyleTechnical, TheoryStyleStorytelling, TheoryStyleVisual:
		return true
	}
	return false
}
