package zalo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultMaxLength is the longest reply delivered as a single message.
	DefaultMaxLength = 2000

	// DefaultChunkDelay spaces out sequential chunk sends.
	DefaultChunkDelay = 500 * time.Millisecond
)

// SenderConfig controls chunked delivery.
type SenderConfig struct {
	// MaxLength is the maximum bytes per message. <= 0 selects the default.
	MaxLength int

	// ChunkDelay is the pause between sequential chunk sends.
	ChunkDelay time.Duration
}

func (c SenderConfig) withDefaults() SenderConfig {
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.ChunkDelay <= 0 {
		c.ChunkDelay = DefaultChunkDelay
	}
	return c
}

// Sender delivers replies through the Bot API, splitting long text into
// sequential messages with continuation markers.
type Sender struct {
	client *Client
	cfg    SenderConfig
	logger *slog.Logger
}

// NewSender creates a Sender over the given client.
func NewSender(client *Client, cfg SenderConfig, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{client: client, cfg: cfg.withDefaults(), logger: logger}
}

// Send delivers text to a chat. Replies over the configured maximum are
// split at line boundaries into sequential sends with a short delay in
// between; every chunk after the first carries a "(i/N)" marker.
func (s *Sender) Send(ctx context.Context, chatID, text string) error {
	chunks := SplitText(text, s.cfg.MaxLength)

	for i, chunk := range chunks {
		if i > 0 {
			chunk = fmt.Sprintf("(%d/%d) %s", i+1, len(chunks), chunk)

			timer := time.NewTimer(s.cfg.ChunkDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := s.client.SendMessage(ctx, chatID, chunk); err != nil {
			return fmt.Errorf("zalo: send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// Typing signals the typing indicator to a chat. Failures are logged and
// swallowed; the indicator is best-effort.
func (s *Sender) Typing(ctx context.Context, chatID string) {
	if err := s.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		s.logger.Debug("chat action failed", "chat_id", chatID, "error", err)
	}
}

// SplitText breaks text into chunks of at most maxLen bytes, preferring
// line boundaries. A single line longer than maxLen is force-split.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	// Leave headroom for the "(i/N) " marker prefixed to later chunks.
	limit := maxLen - len("(99/99) ")

	var chunks []string
	var current strings.Builder

	for line := range strings.Lines(text) {
		if current.Len()+len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
				current.Reset()
			}
			for len(line) > limit {
				cut := splitPoint(line, limit)
				chunks = append(chunks, line[:cut])
				line = line[cut:]
			}
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
	}

	return chunks
}

// splitPoint backs a byte offset off to the nearest rune boundary so a
// force-split never cuts a multi-byte character in half.
func splitPoint(line string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}
