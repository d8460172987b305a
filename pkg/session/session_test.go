package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"banter/models"
	"banter/pkg/agent"
	"banter/pkg/services"
	"banter/pkg/store"
)

type fakeImages struct {
	fail bool
}

func (f *fakeImages) Save(data []byte) (*services.SavedImage, error) {
	if f.fail {
		return nil, errors.New("disk full")
	}
	return &services.SavedImage{
		Path:          "ChatImages/x.jpg",
		FileSizeBytes: int64(len(data)),
		ThumbnailPath: "ChatImages/Thumbnails/x_thumb.jpg",
	}, nil
}

func testAgentOptions(threshold int) agent.Options {
	return agent.Options{
		Debounce:        10 * time.Millisecond,
		ThinkDelay:      10 * time.Millisecond,
		ThresholdMin:    threshold,
		ThresholdMax:    threshold,
		TextProbability: 1, // text replies only, keeps assertions simple
		Rand:            agent.NewRand(7),
	}
}

// testManager builds a manager over a throwaway database. threshold is the
// number of user messages before the agent replies; use a large value to
// keep the agent quiet.
func testManager(t *testing.T, threshold int, images ImageStore) (*Manager, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	m := NewManager(st, images, testAgentOptions(threshold))
	t.Cleanup(m.Close)
	return m, st
}

func openChat(t *testing.T, m *Manager, st *store.Store, title string) *Session {
	t.Helper()
	chat, err := st.CreateChat(title)
	if err != nil {
		t.Fatalf("creating chat: %v", err)
	}
	s, err := m.Open(chat.ID)
	if err != nil || s == nil {
		t.Fatalf("opening session: %v", err)
	}
	return s
}

func TestSendUserTextTrimsAndIgnoresEmpty(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})
	s := openChat(t, m, st, NewChatTitle)

	s.SetDraft("keep me")
	msg, err := s.SendUserText("   \t\n ")
	if err != nil {
		t.Fatalf("sending whitespace: %v", err)
	}
	if msg != nil {
		t.Fatalf("whitespace-only input produced a message: %+v", msg)
	}

	snap := s.Snapshot()
	if len(snap.Messages) != 0 {
		t.Fatalf("whitespace-only input persisted %d messages", len(snap.Messages))
	}
	if snap.Draft != "keep me" {
		t.Errorf("draft cleared by a no-op send, got %q", snap.Draft)
	}

	msg, err = s.SendUserText("  hello  ")
	if err != nil || msg == nil {
		t.Fatalf("sending: %v", err)
	}
	if msg.Text != "hello" {
		t.Errorf("text = %q, want trimmed %q", msg.Text, "hello")
	}
	if s.Snapshot().Draft != "" {
		t.Errorf("draft should clear on a real send")
	}
}

func TestFirstMessageRenamesChat(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})
	s := openChat(t, m, st, NewChatTitle)

	if _, err := s.SendUserText("Planning a trip to Goa"); err != nil {
		t.Fatalf("sending: %v", err)
	}
	chat, _ := st.GetChat(s.ChatID())
	if chat.Title != "Planning a trip to Goa" {
		t.Fatalf("title = %q, want the first message text", chat.Title)
	}
	if chat.LastMessagePreview != "Planning a trip to Goa" {
		t.Errorf("preview = %q, want the message text", chat.LastMessagePreview)
	}
	if chat.LastMessageSender != models.SenderUser {
		t.Errorf("last sender = %q, want user", chat.LastMessageSender)
	}

	// later messages leave the title alone
	if _, err := s.SendUserText("Second message"); err != nil {
		t.Fatalf("sending: %v", err)
	}
	chat, _ = st.GetChat(s.ChatID())
	if chat.Title != "Planning a trip to Goa" {
		t.Fatalf("second message renamed the chat to %q", chat.Title)
	}
}

func TestFirstMessageTitleTruncatesRunes(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})
	s := openChat(t, m, st, NewChatTitle)

	long := strings.Repeat("é", 45)
	if _, err := s.SendUserText(long); err != nil {
		t.Fatalf("sending: %v", err)
	}
	chat, _ := st.GetChat(s.ChatID())
	if got := []rune(chat.Title); len(got) != 40 {
		t.Fatalf("title has %d runes, want 40", len(got))
	}
	if !strings.HasPrefix(long, chat.Title) {
		t.Fatalf("title %q is not a prefix of the message", chat.Title)
	}
}

func TestFirstImageRenamesChat(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})
	s := openChat(t, m, st, NewChatTitle)

	msg, err := s.SendUserImage([]byte("jpeg bytes"))
	if err != nil || msg == nil {
		t.Fatalf("sending image: %v", err)
	}
	if !msg.IsFile() {
		t.Fatalf("image message kind = %q", msg.Kind)
	}

	chat, _ := st.GetChat(s.ChatID())
	if chat.Title != ImageChatTitle {
		t.Errorf("title = %q, want %q", chat.Title, ImageChatTitle)
	}
	if chat.LastMessagePreview != store.ImagePlaceholderPreview {
		t.Errorf("preview = %q, want %q", chat.LastMessagePreview, store.ImagePlaceholderPreview)
	}
}

func TestImageSaveFailureProducesNoMessage(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{fail: true})
	s := openChat(t, m, st, NewChatTitle)

	msg, err := s.SendUserImage([]byte("jpeg bytes"))
	if err != nil {
		t.Fatalf("image save failure should not surface an error, got %v", err)
	}
	if msg != nil {
		t.Fatalf("image save failure produced a message: %+v", msg)
	}

	msgs, _ := st.ListMessages(s.ChatID())
	if len(msgs) != 0 {
		t.Fatalf("failed upload persisted %d messages", len(msgs))
	}
	chat, _ := st.GetChat(s.ChatID())
	if chat.Title != NewChatTitle {
		t.Fatalf("failed upload renamed the chat to %q", chat.Title)
	}
}

func TestSnapshotTracksScrollTarget(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})
	s := openChat(t, m, st, NewChatTitle)

	first, _ := s.SendUserText("one")
	second, _ := s.SendUserText("two")

	snap := s.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("snapshot has %d messages, want 2", len(snap.Messages))
	}
	if snap.Messages[0].ID != first.ID || snap.Messages[1].ID != second.ID {
		t.Fatalf("snapshot messages out of send order")
	}
	if snap.ScrollToMessageID != second.ID {
		t.Fatalf("scroll target = %q, want the newest message", snap.ScrollToMessageID)
	}

	// snapshot is a copy, mutating it leaves the session alone
	snap.Messages[0].Text = "mutated"
	if s.Snapshot().Messages[0].Text != "one" {
		t.Fatal("snapshot aliases session state")
	}
}

func TestSubscriberSeesFullExchange(t *testing.T) {
	m, st := testManager(t, 1, &fakeImages{})
	s := openChat(t, m, st, NewChatTitle)

	events := make(chan Event, 100)
	unsub := s.Subscribe(func(ev Event) { events <- ev })
	defer unsub()

	if _, err := s.SendUserText("hello"); err != nil {
		t.Fatalf("sending: %v", err)
	}

	next := func() Event {
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for session event")
			return Event{}
		}
	}

	ev := next()
	if ev.Type != EventMessage || ev.Message == nil || !ev.Message.IsUser() {
		t.Fatalf("first event should be the user message, got %+v", ev)
	}
	ev = next()
	if ev.Type != EventTyping || !ev.Typing {
		t.Fatalf("second event should turn typing on, got %+v", ev)
	}
	ev = next()
	if ev.Type != EventMessage || ev.Message == nil || ev.Message.Sender != models.SenderAgent {
		t.Fatalf("third event should be the agent reply, got %+v", ev)
	}

	snap := s.Snapshot()
	if snap.IsAgentTyping {
		t.Error("typing indicator still on after the reply")
	}
	if len(snap.Messages) != 2 {
		t.Errorf("snapshot has %d messages, want user + agent", len(snap.Messages))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})
	s := openChat(t, m, st, NewChatTitle)

	events := make(chan Event, 10)
	unsub := s.Subscribe(func(ev Event) { events <- ev })
	unsub()

	if _, err := s.SendUserText("hello"); err != nil {
		t.Fatalf("sending: %v", err)
	}
	select {
	case ev := <-events:
		t.Fatalf("unsubscribed listener got %+v", ev)
	default:
	}
}

func TestManagerOpen(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})

	t.Run("missing chat", func(t *testing.T) {
		s, err := m.Open("no-such-chat")
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if s != nil {
			t.Fatal("expected nil session for a missing chat")
		}
	})

	t.Run("reuses the session per chat", func(t *testing.T) {
		chat, err := st.CreateChat("Shared")
		if err != nil {
			t.Fatalf("creating chat: %v", err)
		}
		a, err := m.Open(chat.ID)
		if err != nil || a == nil {
			t.Fatalf("open: %v", err)
		}
		b, err := m.Open(chat.ID)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if a != b {
			t.Fatal("two opens of one chat returned different sessions")
		}
	})

	t.Run("close session then reopen", func(t *testing.T) {
		chat, err := st.CreateChat("Recycled")
		if err != nil {
			t.Fatalf("creating chat: %v", err)
		}
		a, _ := m.Open(chat.ID)
		m.CloseSession(chat.ID)
		b, err := m.Open(chat.ID)
		if err != nil || b == nil {
			t.Fatalf("reopen: %v", err)
		}
		if a == b {
			t.Fatal("closed session was handed out again")
		}
	})
}

func TestSessionLoadsHistory(t *testing.T) {
	m, st := testManager(t, 100, &fakeImages{})
	chat, err := st.CreateChat("History")
	if err != nil {
		t.Fatalf("creating chat: %v", err)
	}
	if _, err := st.SendMessage(chat.ID, "earlier", models.KindText, models.SenderUser, nil, 0); err != nil {
		t.Fatalf("sending: %v", err)
	}

	s, err := m.Open(chat.ID)
	if err != nil || s == nil {
		t.Fatalf("open: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Text != "earlier" {
		t.Fatalf("session did not load persisted history: %+v", snap.Messages)
	}

	// history counts: the next message is not "first" anymore
	if _, err := s.SendUserText("later"); err != nil {
		t.Fatalf("sending: %v", err)
	}
	got, _ := st.GetChat(chat.ID)
	if got.Title != "History" {
		t.Fatalf("message into a non-empty chat renamed it to %q", got.Title)
	}
}
