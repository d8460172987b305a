package session

import (
	"log"
	"strings"
	"sync"

	"banter/models"
	"banter/pkg/agent"
	"banter/pkg/services"
	"banter/pkg/store"
)

const (
	// NewChatTitle is the placeholder title for freshly created chats.
	NewChatTitle = "New Chat"
	// ImageChatTitle replaces the placeholder when the first message is an image.
	ImageChatTitle = "Image Chat"

	firstMessageTitleLimit = 40
)

// ImageStore persists uploaded images. Implemented by services.ImageService.
type ImageStore interface {
	Save(data []byte) (*services.SavedImage, error)
}

// EventType names the two session notifications.
type EventType string

const (
	EventMessage EventType = "message"
	EventTyping  EventType = "typing"
)

// Event is pushed to session subscribers whenever a message is appended or
// the agent typing indicator changes.
type Event struct {
	Type    EventType       `json:"type"`
	ChatID  string          `json:"chat_id"`
	Message *models.Message `json:"message,omitempty"`
	Typing  bool            `json:"typing"`
}

// State is a pull-based snapshot of everything a presentation layer renders.
type State struct {
	Messages          []models.Message `json:"messages"`
	Draft             string           `json:"draft"`
	IsAgentTyping     bool             `json:"is_agent_typing"`
	ScrollToMessageID string           `json:"scroll_to_message_id,omitempty"`
}

// Session orchestrates one open chat between the store, the agent
// responder and a presentation layer. All mutations for the chat funnel
// through its mutex, so no two run concurrently.
type Session struct {
	chatID    string
	store     *store.Store
	images    ImageStore
	responder *agent.Responder

	mu       sync.Mutex
	draft    string
	messages []models.Message
	typing   bool
	scrollTo string
	subs     map[int]func(Event)
	nextSub  int
}

func newSession(chatID string, st *store.Store, images ImageStore, responder *agent.Responder) (*Session, error) {
	msgs, err := st.ListMessages(chatID)
	if err != nil {
		return nil, err
	}
	return &Session{
		chatID:    chatID,
		store:     st,
		images:    images,
		responder: responder,
		messages:  msgs,
		subs:      make(map[int]func(Event)),
	}, nil
}

func (s *Session) ChatID() string { return s.chatID }

// SendUserText trims and persists a user text message, then kicks the
// responder. Empty input and deleted chats are nil, nil no-ops. The chat's
// first message also renames the chat to the message's leading characters.
func (s *Session) SendUserText(text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	s.draft = ""
	first := len(s.messages) == 0
	msg, err := s.store.SendMessage(s.chatID, text, models.KindText, models.SenderUser, nil, 0)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if msg == nil {
		// chat deleted underneath the session
		s.mu.Unlock()
		return nil, nil
	}
	if first {
		if err := s.store.RenameChat(s.chatID, truncateRunes(text, firstMessageTitleLimit)); err != nil {
			log.Printf("[session] renaming chat %s after first message: %v", s.chatID, err)
		}
	}
	s.appendLocked(msg)
	s.mu.Unlock()

	s.responder.OnUserMessageSent(s.chatID)
	return msg, nil
}

// SendUserImage saves the image and persists a file message. A failed
// image save produces no message and no user-visible error.
func (s *Session) SendUserImage(data []byte) (*models.Message, error) {
	saved, err := s.images.Save(data)
	if err != nil {
		log.Printf("[session] image save failed for chat %s: %v", s.chatID, err)
		return nil, nil
	}
	att := &models.Attachment{
		Path:          saved.Path,
		FileSizeBytes: saved.FileSizeBytes,
		ThumbnailPath: saved.ThumbnailPath,
	}

	s.mu.Lock()
	first := len(s.messages) == 0
	msg, err := s.store.SendMessage(s.chatID, "", models.KindFile, models.SenderUser, att, 0)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if msg == nil {
		s.mu.Unlock()
		return nil, nil
	}
	if first {
		if err := s.store.RenameChat(s.chatID, ImageChatTitle); err != nil {
			log.Printf("[session] renaming chat %s after first image: %v", s.chatID, err)
		}
	}
	s.appendLocked(msg)
	s.mu.Unlock()

	s.responder.OnUserMessageSent(s.chatID)
	return msg, nil
}

// UpdateTitle renames the chat. Whitespace-only titles are ignored.
func (s *Session) UpdateTitle(title string) error {
	return s.store.RenameChat(s.chatID, title)
}

// SetDraft stores the in-progress input text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]models.Message, len(s.messages))
	copy(msgs, s.messages)
	return State{
		Messages:          msgs,
		Draft:             s.draft,
		IsAgentTyping:     s.typing,
		ScrollToMessageID: s.scrollTo,
	}
}

// Subscribe registers fn for session events and returns an unsubscribe
// function. fn runs with the session lock held so events arrive in
// persisted order: it must not call back into the session and must not
// block (the websocket consumer hands off to a buffered channel).
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// handleAgentEvent reflects responder events into session state.
func (s *Session) handleAgentEvent(ev agent.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Message != nil {
		s.typing = false
		s.appendLocked(ev.Message)
		return
	}
	s.typing = ev.Typing
	s.notifyLocked(Event{Type: EventTyping, ChatID: s.chatID, Typing: ev.Typing})
}

// appendLocked adds msg to the cache, moves the scroll target and notifies
// subscribers. Caller holds s.mu.
func (s *Session) appendLocked(msg *models.Message) {
	s.messages = append(s.messages, *msg)
	s.scrollTo = msg.ID
	s.notifyLocked(Event{Type: EventMessage, ChatID: s.chatID, Message: msg})
}

func (s *Session) notifyLocked(ev Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
