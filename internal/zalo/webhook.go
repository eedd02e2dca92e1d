package zalo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zela-ai/zela/pkg/message"
)

// Event names the Bot API delivers to the webhook.
const (
	EventTextReceived  = "message.text.received"
	EventPhotoReceived = "message.photo.received"
	EventFileReceived  = "message.file.received"
)

// ErrUnsupportedUpdate indicates a webhook payload the relay does not
// handle. Callers typically log and skip.
var ErrUnsupportedUpdate = errors.New("zalo: unsupported update")

// Update is the webhook payload envelope.
type Update struct {
	EventName string           `json:"event_name"`
	Message   *IncomingMessage `json:"message"`
}

// IncomingMessage is the message body of an update.
type IncomingMessage struct {
	Chat    ChatRef    `json:"chat"`
	From    UserRef    `json:"from"`
	Text    string     `json:"text,omitempty"`
	Caption string     `json:"caption,omitempty"`
	Photo   *PhotoRef  `json:"photo,omitempty"`
	File    *FileRef   `json:"file,omitempty"`
}

// ChatRef identifies the conversation.
type ChatRef struct {
	ID string `json:"id"`
}

// UserRef identifies the sender.
type UserRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// PhotoRef carries a downloadable photo attachment.
type PhotoRef struct {
	URL string `json:"url"`
}

// FileRef carries a downloadable file attachment.
type FileRef struct {
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// DecodeUpdate parses a raw webhook body into the platform-agnostic event
// the relay consumes. Payloads for unhandled event names return
// ErrUnsupportedUpdate.
func DecodeUpdate(body []byte) (message.Event, error) {
	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return message.Event{}, fmt.Errorf("zalo: invalid update JSON: %w", err)
	}
	return convertUpdate(&update)
}

func convertUpdate(update *Update) (message.Event, error) {
	msg := update.Message
	if msg == nil {
		return message.Event{}, fmt.Errorf("%w: no message in %q", ErrUnsupportedUpdate, update.EventName)
	}

	sender := message.Sender{ID: msg.From.ID, DisplayName: msg.From.DisplayName}

	switch update.EventName {
	case EventTextReceived:
		if msg.Text == "" {
			return message.Event{}, fmt.Errorf("%w: empty text event", ErrUnsupportedUpdate)
		}
		return message.NewTextEvent(msg.Chat.ID, sender, msg.Text), nil

	case EventPhotoReceived:
		if msg.Photo == nil || msg.Photo.URL == "" {
			return message.Event{}, fmt.Errorf("%w: photo event without photo", ErrUnsupportedUpdate)
		}
		return message.NewImageEvent(msg.Chat.ID, sender, msg.Photo.URL, msg.Caption), nil

	case EventFileReceived:
		if msg.File == nil || msg.File.URL == "" {
			return message.Event{}, fmt.Errorf("%w: file event without file", ErrUnsupportedUpdate)
		}
		ev := message.NewFileEvent(msg.Chat.ID, sender, msg.File.URL, msg.File.Name, msg.Caption)
		ev.MIMEType = msg.File.MIMEType
		return ev, nil

	default:
		return message.Event{}, fmt.Errorf("%w: %q", ErrUnsupportedUpdate, update.EventName)
	}
}
