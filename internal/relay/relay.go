// Package relay implements the conversation core: it consumes inbound chat
// events, maintains per-user session state, drives generation with retry
// across the model fallback ordering, normalizes the output for the
// plain-text channel, and hands finished replies to the messaging
// collaborator.
//
// All failures are converted to user-visible chat messages at this
// boundary; none terminate the process.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zela-ai/zela/internal/model"
	"github.com/zela-ai/zela/internal/normalize"
	"github.com/zela-ai/zela/internal/prompt"
	"github.com/zela-ai/zela/internal/session"
	"github.com/zela-ai/zela/pkg/message"
)

// Replier delivers finished replies to the chat. The typing indicator is
// best-effort; implementations swallow its failures.
type Replier interface {
	Send(ctx context.Context, chatID, text string) error
	Typing(ctx context.Context, chatID string)
}

// Generator runs one bounded-retry generation across the fallback order.
// *generate.Retryer is the production implementation.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request, preferred model.Profile, fallback []model.Profile) (string, error)
}

// Metrics receives relay-level counter events. All methods must be safe
// for concurrent use. A nil Metrics disables counting.
type Metrics interface {
	EventHandled(kind string)
	ReplySent()
	GenerationFailed(modelKey string)
}

// Config groups the handler's collaborators.
type Config struct {
	Store      session.Store
	Catalog    *model.Catalog
	Classifier *model.Classifier
	Generator  Generator
	Downloader Downloader
	Replier    Replier
	Metrics    Metrics
	Logger     *slog.Logger

	// HistoryWindow is the transcript sub-window for prompt composition.
	// <= 0 selects prompt.DefaultWindow.
	HistoryWindow int
}

// Handler is the conversation-handling boundary.
type Handler struct {
	cfg Config
}

// NewHandler creates a Handler. Store, Catalog, Classifier, Generator and
// Replier are required; Downloader is required only when attachment events
// are expected.
func NewHandler(cfg Config) (*Handler, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("relay: session store is required")
	case cfg.Catalog == nil:
		return nil, errors.New("relay: model catalog is required")
	case cfg.Generator == nil:
		return nil, errors.New("relay: generator is required")
	case cfg.Replier == nil:
		return nil, errors.New("relay: replier is required")
	}
	if cfg.Classifier == nil {
		cfg.Classifier = model.NewClassifier(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{cfg: cfg}, nil
}

// HandleEvent processes one inbound event end to end. The returned error
// reports delivery-transport failures only; every other failure has
// already been converted to a chat message.
func (h *Handler) HandleEvent(ctx context.Context, ev message.Event) error {
	h.count(ev.Kind)

	switch ev.Kind {
	case message.KindText:
		if handled, err := h.handleCommand(ctx, ev); handled {
			return err
		}
		return h.converse(ctx, ev, ev.Text, "", nil)

	case message.KindImage:
		return h.handleImage(ctx, ev)

	case message.KindFile:
		return h.handleFile(ctx, ev)

	default:
		return h.reply(ctx, ev.ChatID, replyHelp)
	}
}

// handleCommand intercepts slash commands. It reports whether the event
// was consumed.
func (h *Handler) handleCommand(ctx context.Context, ev message.Event) (bool, error) {
	text := strings.TrimSpace(ev.Text)
	if !strings.HasPrefix(text, "/") {
		return false, nil
	}

	fields := strings.Fields(text)
	verb := strings.ToLower(fields[0])

	switch verb {
	case "/start":
		return true, h.reply(ctx, ev.ChatID, replyWelcome(ev.Sender.DisplayName))

	case "/clear":
		h.cfg.Store.Clear(ev.Sender.ID)
		return true, h.reply(ctx, ev.ChatID, replyCleared)

	case "/help":
		return true, h.reply(ctx, ev.ChatID, replyHelp)

	case "/model":
		if len(fields) == 1 {
			pref := h.cfg.Store.Preference(ev.Sender.ID)
			return true, h.reply(ctx, ev.ChatID, replyModelList(h.cfg.Catalog, pref))
		}
		return true, h.setModel(ctx, ev, strings.ToLower(fields[1]))

	default:
		// Unknown slash commands fall through to generation, matching
		// ordinary text.
		return false, nil
	}
}

// setModel applies a /model <key> selection.
func (h *Handler) setModel(ctx context.Context, ev message.Event, key string) error {
	if key == string(session.PreferenceAuto) {
		h.cfg.Store.SetPreference(ev.Sender.ID, session.PreferenceAuto)
		return h.reply(ctx, ev.ChatID, replyModelSet(session.PreferenceAuto))
	}

	if _, err := h.cfg.Catalog.Lookup(key); err != nil {
		return h.reply(ctx, ev.ChatID, replyUnknownModel(key, h.cfg.Catalog.Keys()))
	}

	h.cfg.Store.SetPreference(ev.Sender.ID, session.Preference(key))
	return h.reply(ctx, ev.ChatID, replyModelSet(session.Preference(key)))
}

// handleImage downloads the photo and runs a vision conversation.
func (h *Handler) handleImage(ctx context.Context, ev message.Event) error {
	if h.cfg.Downloader == nil {
		return h.reply(ctx, ev.ChatID, replyImageFailed)
	}

	data, mimeType, err := h.cfg.Downloader.FetchImage(ctx, ev.URL)
	if err != nil {
		h.cfg.Logger.Warn("image download failed", "user", ev.Sender.ID, "error", err)
		return h.reply(ctx, ev.ChatID, replyImageFailed)
	}

	caption := strings.TrimSpace(ev.Text)
	if caption == "" {
		caption = defaultImageCaption
	}
	return h.converse(ctx, ev, caption, "", &prompt.Attachment{Data: data, MIMEType: mimeType})
}

// handleFile extracts text content from the file and folds it into the
// conversation. Non-text files never reach the upstream API.
func (h *Handler) handleFile(ctx context.Context, ev message.Event) error {
	if h.cfg.Downloader == nil {
		return h.reply(ctx, ev.ChatID, replyFileFailed)
	}

	content, err := h.cfg.Downloader.FetchTextFile(ctx, ev.URL, ev.FileName, ev.MIMEType)
	switch {
	case errors.Is(err, ErrUnsupportedFile):
		return h.reply(ctx, ev.ChatID, replyFileUnsupported)
	case err != nil:
		h.cfg.Logger.Warn("file download failed", "user", ev.Sender.ID, "file", ev.FileName, "error", err)
		return h.reply(ctx, ev.ChatID, replyFileFailed)
	}

	caption := strings.TrimSpace(ev.Text)
	if caption == "" {
		caption = defaultFileCaption
	}
	return h.converse(ctx, ev, caption, content, nil)
}

// converse runs the core generation path: select a model, compose the
// prompt from session history, generate with retry, normalize, commit the
// turn, deliver.
func (h *Handler) converse(ctx context.Context, ev message.Event, input, fileText string, image *prompt.Attachment) error {
	userID := ev.Sender.ID

	category := h.cfg.Classifier.Classify(input, image != nil)

	var explicit string
	if pref := h.cfg.Store.Preference(userID); !pref.IsAuto() {
		explicit = string(pref)
	}

	profile, err := h.cfg.Catalog.Select(explicit, category)
	if err != nil {
		// A stored preference can go stale when the catalog changes.
		h.cfg.Logger.Warn("stored model preference is invalid", "user", userID, "preference", explicit)
		return h.reply(ctx, ev.ChatID, replyUnknownModel(explicit, h.cfg.Catalog.Keys()))
	}

	history := h.cfg.Store.History(userID)
	composer := prompt.NewComposer(profile.DisplayLabel, prompt.WithWindow(h.cfg.HistoryWindow))

	var req prompt.Request
	if image != nil {
		req = composer.ComposeVision(history, input, image.Data, image.MIMEType)
	} else {
		req = composer.Compose(history, input, fileText)
	}

	h.cfg.Replier.Typing(ctx, ev.ChatID)

	raw, err := h.cfg.Generator.Generate(ctx, req, profile, h.cfg.Catalog.Fallback())
	if err != nil {
		h.cfg.Logger.Error("generation failed after all attempts",
			"user", userID,
			"model", profile.Key,
			"error", err,
		)
		if h.cfg.Metrics != nil {
			h.cfg.Metrics.GenerationFailed(profile.Key)
		}
		return h.reply(ctx, ev.ChatID, replyUpstreamDown)
	}

	clean := normalize.Clean(raw)

	// Commit the completed turn; the only conversation-flow write path
	// into the session store.
	h.cfg.Store.Append(userID, session.Turn{Role: session.RoleUser, Content: input})
	h.cfg.Store.Append(userID, session.Turn{Role: session.RoleAssistant, Content: clean})

	out := clean
	if image != nil {
		out = "🖼️ " + out
	}
	return h.reply(ctx, ev.ChatID, out)
}

// reply delivers text and counts the send. Delivery failures are returned
// for logging; they are not retried here.
func (h *Handler) reply(ctx context.Context, chatID, text string) error {
	if err := h.cfg.Replier.Send(ctx, chatID, text); err != nil {
		return err
	}
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.ReplySent()
	}
	return nil
}

func (h *Handler) count(kind message.Kind) {
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.EventHandled(string(kind))
	}
}
