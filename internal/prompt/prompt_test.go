package prompt_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/zela-ai/zela/internal/prompt"
	"github.com/zela-ai/zela/internal/session"
)

func TestCompose_NoHistory(t *testing.T) {
	t.Parallel()

	c := prompt.NewComposer("Gemini Flash")
	req := c.Compose(nil, "2+2?", "")

	if req.Image != nil {
		t.Error("text request must not carry image data")
	}
	if !strings.Contains(req.Text, "Gemini Flash") {
		t.Error("instructions must state the display label")
	}
	if !strings.Contains(req.Text, "văn bản thuần túy") {
		t.Error("instructions must demand plain text output")
	}
	if strings.Contains(req.Text, "Lịch sử cuộc trò chuyện") {
		t.Error("empty history must not render a transcript header")
	}
	if !strings.HasSuffix(req.Text, "Câu hỏi hiện tại: 2+2?") {
		t.Errorf("current input must be the final line, got tail %q", tail(req.Text))
	}
}

func TestCompose_TranscriptWindow(t *testing.T) {
	t.Parallel()

	var history []session.Turn
	for i := range 20 {
		role := session.RoleUser
		if i%2 == 1 {
			role = session.RoleAssistant
		}
		history = append(history, session.Turn{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}

	c := prompt.NewComposer("Gemini Flash")
	req := c.Compose(history, "tiếp theo?", "")

	// Only the 10 most recent turns appear even though 20 are stored.
	if strings.Contains(req.Text, "turn-9\n") {
		t.Error("turn-9 is outside the window and must not appear")
	}
	for i := 10; i < 20; i++ {
		if !strings.Contains(req.Text, fmt.Sprintf("turn-%d\n", i)) {
			t.Errorf("turn-%d missing from transcript", i)
		}
	}

	// Roles are labeled per line.
	if !strings.Contains(req.Text, "Người dùng: turn-10") {
		t.Error("user turns must carry the user role label")
	}
	if !strings.Contains(req.Text, "Bot: turn-11") {
		t.Error("assistant turns must carry the bot role label")
	}
}

func TestCompose_WindowOption(t *testing.T) {
	t.Parallel()

	history := []session.Turn{
		{Role: session.RoleUser, Content: "one"},
		{Role: session.RoleAssistant, Content: "two"},
		{Role: session.RoleUser, Content: "three"},
	}

	c := prompt.NewComposer("Gemini Flash", prompt.WithWindow(2))
	req := c.Compose(history, "q", "")

	if strings.Contains(req.Text, "one") {
		t.Error("turn outside the custom window must not appear")
	}
	if !strings.Contains(req.Text, "two") || !strings.Contains(req.Text, "three") {
		t.Error("turns inside the custom window must appear")
	}
}

func TestCompose_FileBlock(t *testing.T) {
	t.Parallel()

	c := prompt.NewComposer("Gemini Flash")
	req := c.Compose(nil, "tóm tắt giúp tôi", "dòng một\ndòng hai")

	fileIdx := strings.Index(req.Text, "dòng một\ndòng hai")
	questionIdx := strings.Index(req.Text, "Câu hỏi hiện tại:")
	if fileIdx == -1 {
		t.Fatal("file content missing from prompt")
	}
	if fileIdx > questionIdx {
		t.Error("file block must precede the current input")
	}
	if !strings.Contains(req.Text, "---\ndòng một\ndòng hai\n---") {
		t.Error("file content must sit inside the delimited block")
	}
}

func TestComposeVision(t *testing.T) {
	t.Parallel()

	data := []byte{0xff, 0xd8, 0xff}
	c := prompt.NewComposer("Gemini Flash")
	req := c.ComposeVision(nil, "ảnh này có gì?", data, "image/jpeg")

	if req.Image == nil {
		t.Fatal("vision request must carry image data")
	}
	if req.Image.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg", req.Image.MIMEType)
	}
	if string(req.Image.Data) != string(data) {
		t.Error("image bytes must pass through unchanged")
	}
	if !strings.Contains(req.Text, "phân tích ảnh") {
		t.Error("vision prompt must instruct the model to use the image")
	}
	if !strings.Contains(req.Text, "Câu hỏi hiện tại: ảnh này có gì?") {
		t.Error("caption must appear as the current input")
	}
}

func tail(s string) string {
	if len(s) <= 60 {
		return s
	}
	return s[len(s)-60:]
}
