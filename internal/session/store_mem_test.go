package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/zela-ai/zela/internal/session"
)

// Compile-time interface guard.
var _ session.Store = (*session.InMemoryStore)(nil)

func userTurn(content string) session.Turn {
	return session.Turn{Role: session.RoleUser, Content: content}
}

func TestInMemoryStore_AppendAndHistory(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)

	turns := []session.Turn{
		{Role: session.RoleUser, Content: "xin chào"},
		{Role: session.RoleAssistant, Content: "chào bạn"},
		{Role: session.RoleUser, Content: "2+2?"},
	}
	for _, turn := range turns {
		store.Append("u1", turn)
	}

	got := store.History("u1")
	if len(got) != 3 {
		t.Fatalf("History: got %d turns, want 3", len(got))
	}
	for i, turn := range got {
		if turn != turns[i] {
			t.Errorf("History[%d] = %+v, want %+v", i, turn, turns[i])
		}
	}
}

func TestInMemoryStore_UnknownUserIsEmpty(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)
	if got := store.History("nobody"); len(got) != 0 {
		t.Errorf("History for unknown user: got %d turns, want 0", len(got))
	}
	if pref := store.Preference("nobody"); pref != "" {
		t.Errorf("Preference for unknown user: got %q, want empty", pref)
	}
}

func TestInMemoryStore_RetentionBound(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)
	for i := range 55 {
		store.Append("u1", userTurn(fmt.Sprintf("msg-%d", i)))
	}

	got := store.History("u1")
	if len(got) != 20 {
		t.Fatalf("History after 55 appends: got %d turns, want 20", len(got))
	}
	if got[0].Content != "msg-35" {
		t.Errorf("oldest retained turn = %q, want %q", got[0].Content, "msg-35")
	}
	if got[19].Content != "msg-54" {
		t.Errorf("newest retained turn = %q, want %q", got[19].Content, "msg-54")
	}
}

func TestInMemoryStore_Clear(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)
	store.Append("u1", userTurn("hello"))
	store.SetPreference("u1", "pro")

	store.Clear("u1")

	if got := store.History("u1"); len(got) != 0 {
		t.Errorf("History after Clear: got %d turns, want 0", len(got))
	}
	// The preference is its own setting and survives a turn reset.
	if pref := store.Preference("u1"); pref != "pro" {
		t.Errorf("Preference after Clear: got %q, want %q", pref, "pro")
	}

	// Clearing again (and clearing absent users) must not panic.
	store.Clear("u1")
	store.Clear("ghost")
}

func TestInMemoryStore_ClearWithoutPreferenceDropsState(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)
	store.Append("u1", userTurn("hello"))

	store.Clear("u1")

	if got := store.Len(); got != 0 {
		t.Errorf("Len after Clear = %d, want 0", got)
	}
}

func TestInMemoryStore_PreferenceRoundTrip(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)
	store.SetPreference("u1", session.PreferenceAuto)

	if pref := store.Preference("u1"); pref != session.PreferenceAuto {
		t.Errorf("Preference = %q, want %q", pref, session.PreferenceAuto)
	}

	// Preference alone must not create visible history.
	if got := store.History("u1"); len(got) != 0 {
		t.Errorf("History: got %d turns, want 0", len(got))
	}
}

func TestInMemoryStore_UsersAreIsolated(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)
	store.Append("u1", userTurn("from u1"))
	store.Append("u2", userTurn("from u2"))
	store.Clear("u1")

	if got := store.History("u2"); len(got) != 1 || got[0].Content != "from u2" {
		t.Errorf("u2 history affected by u1 clear: %+v", got)
	}
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := session.NewInMemoryStore(20)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", id%3)
			for j := range 50 {
				store.Append(user, userTurn(fmt.Sprintf("m%d", j)))
				_ = store.History(user)
				store.SetPreference(user, "flash")
				_ = store.Preference(user)
			}
		}(i)
	}
	wg.Wait()

	for _, user := range []string{"u0", "u1", "u2"} {
		if got := len(store.History(user)); got > 20 {
			t.Errorf("user %s history length %d exceeds retention bound", user, got)
		}
	}
}

func TestPreference_IsAuto(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pref session.Preference
		want bool
	}{
		{"", true},
		{session.PreferenceAuto, true},
		{"flash", false},
		{"pro", false},
	}
	for _, tt := range tests {
		if got := tt.pref.IsAuto(); got != tt.want {
			t.Errorf("Preference(%q).IsAuto() = %v, want %v", tt.pref, got, tt.want)
		}
	}
}
