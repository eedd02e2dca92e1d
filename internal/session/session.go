// Package session provides per-user conversation state: a bounded log of
// prior turns plus an optional model preference. State lives in process
// memory only; it does not survive a restart.
package session

// Role identifies the author of a turn.
type Role string

// Role constants for stored turns.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message exchange unit. Immutable once appended.
type Turn struct {
	Role    Role
	Content string
}

// Preference is a user's model selection.
type Preference string

// PreferenceAuto selects the model from the inferred task category.
// The empty Preference means no selection was made and the default applies.
const PreferenceAuto Preference = "auto"

// IsAuto reports whether the preference resolves models automatically,
// either explicitly or because nothing was selected.
func (p Preference) IsAuto() bool {
	return p == "" || p == PreferenceAuto
}

// Store manages per-user conversation state.
// Implementations must be safe for concurrent use.
type Store interface {
	// History returns the stored turns for a user, oldest first.
	// An unknown user yields an empty slice.
	History(userID string) []Turn

	// Append adds a turn to the user's history, then trims the oldest
	// entries so the log never exceeds the retention bound.
	Append(userID string, turn Turn)

	// Clear removes all turns for a user. The model preference is a
	// separate setting and is not affected.
	// Clearing an unknown user is a no-op.
	Clear(userID string)

	// Preference returns the user's model preference, or the empty
	// value when none was set.
	Preference(userID string) Preference

	// SetPreference records the user's model preference.
	SetPreference(userID string, pref Preference)
}
