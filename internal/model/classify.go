package model

import "strings"

// Classifier infers a coarse task category from the current input.
// The trigger keywords are policy data loaded from configuration, not
// fixed logic; defaults cover Vietnamese and English phrasing.
type Classifier struct {
	codeKeywords []string
}

// DefaultCodeKeywords are the out-of-the-box triggers for the code/math
// category.
var DefaultCodeKeywords = []string{
	"code", "bug", "debug", "compile", "function", "regex", "sql",
	"lập trình", "viết code", "sửa lỗi", "hàm", "thuật toán",
	"toán", "tính toán", "giải phương trình", "đạo hàm", "tích phân",
}

// NewClassifier creates a classifier with the given code/math keywords.
// An empty list falls back to DefaultCodeKeywords.
func NewClassifier(codeKeywords []string) *Classifier {
	if len(codeKeywords) == 0 {
		codeKeywords = DefaultCodeKeywords
	}
	lowered := make([]string, len(codeKeywords))
	for i, kw := range codeKeywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Classifier{codeKeywords: lowered}
}

// Classify returns the task category for the given input. An image
// attachment always wins; otherwise a keyword match selects the code/math
// category.
func (c *Classifier) Classify(text string, hasImage bool) Category {
	if hasImage {
		return CategoryVision
	}

	lowered := strings.ToLower(text)
	for _, kw := range c.codeKeywords {
		if strings.Contains(lowered, kw) {
			return CategoryCode
		}
	}
	return CategoryGeneral
}
