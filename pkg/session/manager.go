package session

import (
	"sync"

	"banter/pkg/agent"
	"banter/pkg/store"
)

// Manager owns at most one session per chat and routes responder events to
// it. Sessions for different chats are independent; the manager never
// serializes across chats.
type Manager struct {
	store     *store.Store
	images    ImageStore
	responder *agent.Responder

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(st *store.Store, images ImageStore, opts agent.Options) *Manager {
	m := &Manager{
		store:    st,
		images:   images,
		sessions: make(map[string]*Session),
	}
	m.responder = agent.New(st, opts, m.route)
	return m
}

// Open returns the session for chatID, creating it on first use. Returns
// nil, nil when the chat does not exist.
func (m *Manager) Open(chatID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[chatID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	chat, err := m.store.GetChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, nil
	}

	s, err := newSession(chatID, m.store, m.images, m.responder)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[chatID]; ok {
		// lost the race to another opener
		return existing, nil
	}
	m.sessions[chatID] = s
	return s, nil
}

// CloseSession drops the chat's session and cancels any pending agent
// reply. Safe to call for chats without a session.
func (m *Manager) CloseSession(chatID string) {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
	m.responder.Forget(chatID)
}

// Close shuts down the responder and all sessions.
func (m *Manager) Close() {
	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	m.responder.Close()
}

func (m *Manager) route(ev agent.Event) {
	m.mu.Lock()
	s := m.sessions[ev.ChatID]
	m.mu.Unlock()
	if s != nil {
		s.handleAgentEvent(ev)
	}
}
