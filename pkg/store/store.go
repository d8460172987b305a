package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"banter/models"
	"banter/pkg/cache"
)

// ImagePlaceholderPreview is the chat-list preview for image-only messages.
const ImagePlaceholderPreview = "Sent an image"

var chatListKey = cache.Key("chats", "list")

// Store is the durable collection of chats and messages. Every mutation
// persists before returning; the message insert and the owning chat's
// preview update happen in one transaction so readers never observe one
// without the other.
//
// Validation failures and operations on missing entities are nil no-ops.
// Persistence failures are returned to the caller.
type Store struct {
	db       *gorm.DB
	cache    *cache.Cache
	cacheTTL time.Duration
	now      func() int64 // unix milliseconds
}

// Option configures a Store.
type Option func(*Store)

// WithCache enables chat-list snapshot caching.
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *Store) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithClock overrides the millisecond clock. Tests use this to pin timestamps.
func WithClock(now func() int64) Option {
	return func(s *Store) { s.now = now }
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		now: func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates or updates the chats and messages tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.Chat{}, &models.Message{})
}

// ListChats returns all chats ordered by last message timestamp, newest first.
func (s *Store) ListChats() ([]models.Chat, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(chatListKey); ok {
			return v.([]models.Chat), nil
		}
	}
	var chats []models.Chat
	if err := s.db.Order("last_message_timestamp DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(chatListKey, chats, s.cacheTTL)
	}
	return chats, nil
}

// GetChat returns one chat, or nil if the id is unknown.
func (s *Store) GetChat(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.First(&chat, "id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading chat %s: %w", chatID, err)
	}
	return &chat, nil
}

// CreateChat allocates a new chat with the given title.
func (s *Store) CreateChat(title string) (*models.Chat, error) {
	now := s.now()
	chat := &models.Chat{
		ID:                   uuid.NewString(),
		Title:                title,
		LastMessagePreview:   "",
		LastMessageTimestamp: now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.db.Create(chat).Error; err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	s.invalidate()
	return chat, nil
}

// DeleteChat removes a chat and all its messages. Unknown ids are a no-op.
func (s *Store) DeleteChat(chatID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", chatID).Delete(&models.Chat{}).Error
	})
	if err != nil {
		return fmt.Errorf("deleting chat %s: %w", chatID, err)
	}
	s.invalidate()
	return nil
}

// RenameChat updates a chat's title. Titles are trimmed; an empty result
// leaves the chat untouched, as does an unknown id.
func (s *Store) RenameChat(chatID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	err := s.db.Model(&models.Chat{}).Where("id = ?", chatID).Updates(map[string]any{
		"title":      title,
		"updated_at": s.now(),
	}).Error
	if err != nil {
		return fmt.Errorf("renaming chat %s: %w", chatID, err)
	}
	s.invalidate()
	return nil
}

// ListMessages returns a chat's messages in send order.
func (s *Store) ListMessages(chatID string) ([]models.Message, error) {
	var msgs []models.Message
	// rowid breaks timestamp ties in insertion order
	err := s.db.Where("chat_id = ?", chatID).Order("timestamp ASC, rowid ASC").Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("listing messages of chat %s: %w", chatID, err)
	}
	return msgs, nil
}

// SendMessage persists a message and updates the owning chat's preview
// fields in one transaction. A zero ts means "now". Returns nil, nil when
// the chat does not exist.
func (s *Store) SendMessage(chatID, text string, kind models.Kind, sender models.Sender, att *models.Attachment, ts int64) (*models.Message, error) {
	if ts == 0 {
		ts = s.now()
	}
	msg := &models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Text:      text,
		Kind:      kind,
		Sender:    sender,
		Timestamp: ts,
	}
	if att != nil {
		if err := msg.SetFile(att); err != nil {
			return nil, err
		}
	}

	preview := text
	if kind == models.KindFile && text == "" {
		preview = ImagePlaceholderPreview
	}

	missing := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var chat models.Chat
		if err := tx.First(&chat, "id = ?", chatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				missing = true
				return nil
			}
			return err
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&chat).Updates(map[string]any{
			"last_message_preview":   preview,
			"last_message_timestamp": ts,
			"last_message_sender":    sender,
			"updated_at":             ts,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("sending message to chat %s: %w", chatID, err)
	}
	if missing {
		return nil, nil
	}
	s.invalidate()
	return msg, nil
}

// CountUserMessages counts the user-authored messages in a chat.
func (s *Store) CountUserMessages(chatID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.Message{}).
		Where("chat_id = ? AND sender = ?", chatID, models.SenderUser).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting user messages of chat %s: %w", chatID, err)
	}
	return n, nil
}

func (s *Store) invalidate() {
	if s.cache != nil {
		s.cache.Delete(chatListKey)
	}
}
