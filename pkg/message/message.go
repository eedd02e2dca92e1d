// Package message defines the platform-agnostic data contract between the
// webhook transport and the conversation relay. An inbound Event carries one
// user action (text, photo, or file); Reply is the relay's answer ready for
// delivery.
package message

// Kind discriminates the variant stored in an Event.
type Kind string

// Supported event kinds.
const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// Sender identifies the author of an inbound event.
type Sender struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// Event is a single inbound user action, already decoded from the
// transport's webhook payload.
type Event struct {
	Kind   Kind   `json:"kind"`
	ChatID string `json:"chat_id"`
	Sender Sender `json:"sender"`

	// Text is the message text for text events, or the caption for
	// image and file events (may be empty).
	Text string `json:"text,omitempty"`

	// URL points at the downloadable attachment for image and file events.
	URL string `json:"url,omitempty"`

	// FileName is set for file events only.
	FileName string `json:"file_name,omitempty"`

	// MIMEType is the declared media type of the attachment, when the
	// transport provides one.
	MIMEType string `json:"mime_type,omitempty"`
}

// HasAttachment reports whether the event carries a downloadable payload.
func (e Event) HasAttachment() bool {
	return e.Kind == KindImage || e.Kind == KindFile
}

// Reply is a finished answer addressed to a chat.
type Reply struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// NewTextEvent creates a text event.
func NewTextEvent(chatID string, sender Sender, text string) Event {
	return Event{Kind: KindText, ChatID: chatID, Sender: sender, Text: text}
}

// NewImageEvent creates an image event. caption may be empty.
func NewImageEvent(chatID string, sender Sender, url, caption string) Event {
	return Event{Kind: KindImage, ChatID: chatID, Sender: sender, URL: url, Text: caption}
}

// NewFileEvent creates a file event. caption may be empty.
func NewFileEvent(chatID string, sender Sender, url, fileName, caption string) Event {
	return Event{Kind: KindFile, ChatID: chatID, Sender: sender, URL: url, FileName: fileName, Text: caption}
}
