// Package normalize converts model output into the plain-text and emoji
// convention the chat channel renders. The channel displays markup
// delimiters literally, so they are stripped while the inner text is kept.
//
// The transformation is a fixed, ordered list of pure rewrite rules.
// Fence stripping runs before the inline span rules: the inline-code rule
// would otherwise consume the backticks of a ``` fence pair and leave the
// block delimiters half-mangled.
package normalize

import (
	"regexp"
	"strings"
)

// Rule is a single named text rewrite.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Pipeline returns the rules in their required order.
func Pipeline() []Rule {
	return []Rule{
		{"strip-preamble", stripPreamble},
		{"strip-fences", stripFences},
		{"strip-bold", stripBold},
		{"strip-italic", stripItalic},
		{"strip-inline-code", stripInlineCode},
		{"strip-headings", stripHeadings},
		{"uniform-bullets", uniformBullets},
		{"bare-links", bareLinks},
		{"collapse-breaks", collapseBreaks},
		{"trim", strings.TrimSpace},
	}
}

// Clean applies the full pipeline. It is total and idempotent on text
// that is already plain.
func Clean(text string) string {
	for _, rule := range Pipeline() {
		text = rule.Apply(text)
	}
	return text
}

// introPrefixes are self-introduction openers the model sometimes prepends
// despite being instructed not to. Matched case-insensitively at the very
// start of the text only.
var introPrefixes = []string{
	"tôi là gemini",
	"tôi là một ai",
	"tôi là trợ lý ảo",
	"là một mô hình ngôn ngữ",
	"as an ai language model",
	"i am an ai",
}

// sentenceEnd locates the end of the first sentence.
var sentenceEnd = regexp.MustCompile(`[.!?\n]`)

// stripPreamble drops the leading sentence when it starts with a known
// self-introduction phrase.
func stripPreamble(text string) string {
	trimmed := strings.TrimLeft(text, " \t\n")
	lowered := strings.ToLower(trimmed)
	for _, prefix := range introPrefixes {
		if !strings.HasPrefix(lowered, prefix) {
			continue
		}
		loc := sentenceEnd.FindStringIndex(trimmed)
		if loc == nil {
			return ""
		}
		return strings.TrimLeft(trimmed[loc[1]:], " \t\n")
	}
	return text
}

var (
	fenceOpen   = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z0-9_+-]*[ \t]*\n?")
	fenceClose  = regexp.MustCompile("(?m)```[ \t]*$\n?")
	boldSpan    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicSpan  = regexp.MustCompile(`\*([^*\n]+)\*`)
	codeSpan    = regexp.MustCompile("`([^`\n]*)`")
	headingMark = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	bulletMark  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberMark  = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	linkMark    = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	manyBreaks  = regexp.MustCompile(`\n{3,}`)
)

// stripFences removes ``` delimiters (with optional language tag) while
// preserving the enclosed code text.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	text = fenceOpen.ReplaceAllString(text, "")
	return fenceClose.ReplaceAllString(text, "")
}

func stripBold(text string) string {
	return boldSpan.ReplaceAllString(text, "$1")
}

func stripItalic(text string) string {
	return italicSpan.ReplaceAllString(text, "$1")
}

func stripInlineCode(text string) string {
	return codeSpan.ReplaceAllString(text, "$1")
}

func stripHeadings(text string) string {
	return headingMark.ReplaceAllString(text, "")
}

// uniformBullets converts both dash/star bullets and numbered list markers
// to the channel's bullet glyph.
func uniformBullets(text string) string {
	text = bulletMark.ReplaceAllString(text, "• ")
	return numberMark.ReplaceAllString(text, "• ")
}

func bareLinks(text string) string {
	return linkMark.ReplaceAllString(text, "$1")
}

func collapseBreaks(text string) string {
	return manyBreaks.ReplaceAllString(text, "\n\n")
}
