package normalization

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no_fence",
			in:   "<p>Hello</p>",
			want: "<p>Hello</p>",
		},
		{
			name: "fence_with_lang",
			in:   "```html\n<p>Hello</p>\n```",
			want: "<p>Hello</p>",
		},
		{
			name: "fence_without_lang",
			in:   "```\nbody { color: red; }\n```",
			want: "body { color: red; }",
		},
		{
			name: "leading_whitespace",
			in:   "  ```js\nconsole.log(1);\n```  ",
			want: "console.log(1);",
		},
		{
			name: "fence_only_lang_line",
			in:   "```html",
			want: "",
		},
		{
			name: "multiline_body",
			in:   "```python\ndef f():\n    return 1\n```",
			want: "def f():\n    return 1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StripCodeFence(tc.in)
			if got != tc.want {
				t.Fatalf("StripCodeFence(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripCodeFenceIdempotent(t *testing.T) {
	in := "```html\n<p>Hello <strong>there</strong></p>\n```"
	once := StripCodeFence(in)
	twice := StripCodeFence(once)
	if once != twice {
		t.Fatalf("second pass changed output: %q -> %q", once, twice)
	}
}

func TestEnsureBlockHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare_text_wrapped",
			in:   "Just some prose.",
			want: "<p>Just some prose.</p>",
		},
		{
			name: "paragraph_untouched",
			in:   "<p>Already wrapped</p>",
			want: "<p>Already wrapped</p>",
		},
		{
			name: "heading_untouched",
			in:   "<h2>Title</h2><p>Body</p>",
			want: "<h2>Title</h2><p>Body</p>",
		},
		{
			name: "inline_tag_wrapped",
			in:   "<strong>bold lead</strong> rest",
			want: "<p><strong>bold lead</strong> rest</p>",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
		{
			name: "self_closing_hr_untouched",
			in:   "<hr/>",
			want: "<hr/>",
		},
		{
			name: "param_is_not_a_paragraph",
			in:   `<param name="autoplay" value="true">`,
			want: `<p><param name="autoplay" value="true"></p>`,
		},
		{
			name: "picture_is_not_a_paragraph",
			in:   "<picture><img src=\"a.png\"></picture>",
			want: "<p><picture><img src=\"a.png\"></picture></p>",
		},
		{
			name: "header_is_not_a_heading",
			in:   "<header>Site</header>",
			want: "<p><header>Site</header></p>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EnsureBlockHTML(tc.in)
			if got != tc.want {
				t.Fatalf("EnsureBlockHTML(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeGeneratedHTMLIdempotent(t *testing.T) {
	in := "```html\nSome explanation of flexbox.\n```"
	once := NormalizeGeneratedHTML(in)
	if once != "<p>Some explanation of flexbox.</p>" {
		t.Fatalf("unexpected first pass: %q", once)
	}
	twice := NormalizeGeneratedHTML(once)
	if once != twice {
		t.Fatalf("normalizer not idempotent: %q -> %q", once, twice)
	}
}

func TestParseAnswerSteps(t *testing.T) {
	t.Run("plain_array", func(t *testing.T) {
		steps, err := ParseAnswerSteps(`[{"step":1,"code":"<h1>a</h1>"},{"step":2,"code":"<h2>b</h2>"}]`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(steps) != 2 || steps[0].Step != 1 || steps[1].Code != "<h2>b</h2>" {
			t.Fatalf("unexpected steps: %+v", steps)
		}
	})

	t.Run("fenced_array", func(t *testing.T) {
		steps, err := ParseAnswerSteps("```json\n[{\"step\":1,\"code\":\"x\"}]\n```")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(steps) != 1 || steps[0].Code != "x" {
			t.Fatalf("unexpected steps: %+v", steps)
		}
	})

	t.Run("malformed_json_is_hard_error", func(t *testing.T) {
		if _, err := ParseAnswerSteps("I could not produce the answers, sorry."); err == nil {
			t.Fatal("expected error for non-JSON payload")
		}
	})

	t.Run("empty_payload", func(t *testing.T) {
		if _, err := ParseAnswerSteps("```\n\n```"); err == nil {
			t.Fatal("expected error for empty payload")
		}
	})

	t.Run("empty_array", func(t *testing.T) {
		if _, err := ParseAnswerSteps("[]"); err == nil {
			t.Fatal("expected error for empty array")
		}
	})
}
