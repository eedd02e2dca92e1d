package normalize

import "testing"

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "plain text untouched",
			input: "Xin chào! Hôm nay trời đẹp.",
			want:  "Xin chào! Hôm nay trời đẹp.",
		},
		{
			name:  "bold and inline code",
			input: "**bold** and `code`",
			want:  "bold and code",
		},
		{
			name:  "italic",
			input: "an *emphasized* word",
			want:  "an emphasized word",
		},
		{
			name:  "fenced block keeps inner code",
			input: "```js\nconsole.log(1)\n```",
			want:  "console.log(1)",
		},
		{
			name:  "fenced block without language tag",
			input: "```\nx := 1\n```",
			want:  "x := 1",
		},
		{
			name:  "fence delimiters survive span rules",
			input: "trước\n```python\nprint('hi')\n```\nsau",
			want:  "trước\nprint('hi')\nsau",
		},
		{
			name:  "headings",
			input: "# Tiêu đề\nnội dung\n## Mục nhỏ\nthêm",
			want:  "Tiêu đề\nnội dung\nMục nhỏ\nthêm",
		},
		{
			name:  "dash bullets",
			input: "- một\n- hai",
			want:  "• một\n• hai",
		},
		{
			name:  "numbered list",
			input: "1. một\n2. hai\n10. mười",
			want:  "• một\n• hai\n• mười",
		},
		{
			name:  "links become bare text",
			input: "xem [tài liệu](https://example.com/docs) nhé",
			want:  "xem tài liệu nhé",
		},
		{
			name:  "collapse excess breaks",
			input: "a\n\n\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "leading and trailing whitespace",
			input: "  \n hello \n",
			want:  "hello",
		},
		{
			name:  "self-introduction preamble dropped",
			input: "Tôi là Gemini Bot. Kết quả là 4.",
			want:  "Kết quả là 4.",
		},
		{
			name:  "english preamble dropped",
			input: "As an AI language model, I cannot do that.\nNhưng đây là gợi ý.",
			want:  "Nhưng đây là gợi ý.",
		},
		{
			name:  "preamble only matches at start",
			input: "Kết quả: tôi là Gemini theo lời bạn nói.",
			want:  "Kết quả: tôi là Gemini theo lời bạn nói.",
		},
		{
			name:  "mixed document",
			input: "## Kết quả\n\n**Tóm tắt:** dùng `fmt.Println`\n\n- bước một\n- bước hai\n\n```go\nfmt.Println(\"ok\")\n```\n\n\n\nHết.",
			want:  "Kết quả\n\nTóm tắt: dùng fmt.Println\n\n• bước một\n• bước hai\n\nfmt.Println(\"ok\")\n\nHết.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Errorf("Clean(%q)\n  got  = %q\n  want = %q", tt.input, got, tt.want)
			}
		})
	}
}

// Clean must be a fixpoint on its own output.
func TestClean_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Xin chào! 👋",
		"**bold** and `code`",
		"```js\nconsole.log(1)\n```",
		"- một\n- hai\n\n\n# xong",
		"Tôi là Gemini Bot. Câu trả lời đây.",
		"xem [tài liệu](https://example.com) nhé",
	}
	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n  once  = %q\n  twice = %q", input, once, twice)
		}
	}
}

func TestPipeline_Order(t *testing.T) {
	t.Parallel()

	var names []string
	for _, rule := range Pipeline() {
		names = append(names, rule.Name)
	}

	// strip-fences must run before strip-inline-code, otherwise the
	// inline rule eats the fence backticks.
	fences, inline := -1, -1
	for i, n := range names {
		switch n {
		case "strip-fences":
			fences = i
		case "strip-inline-code":
			inline = i
		}
	}
	if fences == -1 || inline == -1 {
		t.Fatalf("pipeline missing required rules: %v", names)
	}
	if fences > inline {
		t.Errorf("strip-fences (%d) must run before strip-inline-code (%d)", fences, inline)
	}
	if names[len(names)-1] != "trim" {
		t.Errorf("trim must be the final rule, got %q", names[len(names)-1])
	}
}
