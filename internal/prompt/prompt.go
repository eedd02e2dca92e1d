// Package prompt assembles the full generation request from session state
// and the current input: a fixed instruction block, a compact transcript of
// the most recent turns, an optional attachment payload, and the current
// question.
package prompt

import (
	"strings"

	"github.com/zela-ai/zela/internal/session"
)

// DefaultWindow is the number of most recent turns included in the
// transcript. The session store retains more; composition narrows to this
// sub-window.
const DefaultWindow = 10

// Attachment carries the binary payload of a vision request.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// Request is one fully composed generation call. Image data and extracted
// file text are mutually exclusive per call: file content is already folded
// into Text, image bytes travel separately.
type Request struct {
	// Text is the complete prompt, instruction block included.
	Text string

	// Image is non-nil for vision requests.
	Image *Attachment
}

// Composer builds requests. The zero value is not usable; use NewComposer.
type Composer struct {
	instructions string
	window       int
}

// Option configures a Composer.
type Option func(*Composer)

// WithWindow overrides the transcript sub-window size.
func WithWindow(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.window = n
		}
	}
}

// NewComposer creates a Composer whose instruction block names the given
// assistant display label.
func NewComposer(displayLabel string, opts ...Option) *Composer {
	c := &Composer{
		instructions: instructionBlock(displayLabel),
		window:       DefaultWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// instructionBlock renders the fixed system instructions: answer in
// Vietnamese, plain text only (the channel renders markup literally),
// no self-introduction.
func instructionBlock(displayLabel string) string {
	var b strings.Builder
	b.WriteString("Bạn là trợ lý AI tên là ")
	b.WriteString(displayLabel)
	b.WriteString(". Hãy trả lời bằng tiếng Việt một cách tự nhiên và thân thiện.\n\n")
	b.WriteString("QUAN TRỌNG: Trả lời bằng văn bản thuần túy, KHÔNG dùng markdown ")
	b.WriteString("(**, *, #, backtick, []()) vì kênh chat hiển thị chúng như ký tự thường. ")
	b.WriteString("Dùng emoji để làm đẹp tin nhắn thay cho markdown. ")
	b.WriteString("KHÔNG tự giới thiệu bản thân ở đầu câu trả lời.\n\n")
	b.WriteString("Bạn có thể giúp viết code, giải thích kiến thức, dịch thuật và nhiều việc khác.")
	return b.String()
}

// roleLabel renders a turn's role for the transcript.
func roleLabel(r session.Role) string {
	if r == session.RoleAssistant {
		return "Bot"
	}
	return "Người dùng"
}

// Compose builds a text-only request from history and the current input.
// fileText, when non-empty, is extracted file content inserted in a
// delimited block before the current input.
func (c *Composer) Compose(history []session.Turn, input, fileText string) Request {
	var b strings.Builder
	b.WriteString(c.instructions)
	b.WriteString("\n\n")

	if len(history) > 0 {
		recent := history
		if len(recent) > c.window {
			recent = recent[len(recent)-c.window:]
		}
		b.WriteString("Lịch sử cuộc trò chuyện:\n")
		for _, turn := range recent {
			b.WriteString(roleLabel(turn.Role))
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if fileText != "" {
		b.WriteString("Nội dung tệp người dùng gửi kèm:\n---\n")
		b.WriteString(fileText)
		b.WriteString("\n---\n\n")
	}

	b.WriteString("Câu hỏi hiện tại: ")
	b.WriteString(input)

	return Request{Text: b.String()}
}

// ComposeVision builds an image-bearing request. The image travels as raw
// bytes plus declared media type; the prompt gains a line telling the model
// to ground its answer in the image.
func (c *Composer) ComposeVision(history []session.Turn, input string, data []byte, mimeType string) Request {
	req := c.Compose(history, input, "")
	req.Text += "\n\nNgười dùng gửi kèm một hình ảnh. Hãy phân tích ảnh và trả lời dựa trên nội dung ảnh."
	req.Image = &Attachment{Data: data, MIMEType: mimeType}
	return req
}
