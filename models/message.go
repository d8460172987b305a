package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// Kind distinguishes plain text messages from file (image) messages.
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
)

// Attachment describes the stored image of a file message.
type Attachment struct {
	Path          string `json:"path"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
}

// Message is a single entry within a chat. Immutable once created; removal
// only happens through chat deletion.
type Message struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	ChatID string `gorm:"size:36;index;not null" json:"chat_id"`
	Text   string `gorm:"type:text" json:"text"`
	Kind   Kind   `gorm:"size:20;not null" json:"kind"`
	Sender Sender `gorm:"size:20;not null" json:"sender"`
	// Attachment is set iff Kind == KindFile.
	Attachment datatypes.JSON `json:"attachment,omitempty"`
	// Timestamp in unix milliseconds. Messages in a chat are ordered by
	// timestamp, insertion order breaking ties.
	Timestamp int64 `gorm:"index" json:"timestamp"`
}

func (m *Message) IsUser() bool { return m.Sender == SenderUser }
func (m *Message) IsFile() bool { return m.Kind == KindFile }

// File decodes the attachment payload. Returns nil for text messages.
func (m *Message) File() (*Attachment, error) {
	if len(m.Attachment) == 0 {
		return nil, nil
	}
	var att Attachment
	if err := json.Unmarshal(m.Attachment, &att); err != nil {
		return nil, fmt.Errorf("decoding attachment of message %s: %w", m.ID, err)
	}
	return &att, nil
}

// SetFile encodes att into the attachment column.
func (m *Message) SetFile(att *Attachment) error {
	raw, err := json.Marshal(att)
	if err != nil {
		return fmt.Errorf("encoding attachment: %w", err)
	}
	m.Attachment = datatypes.JSON(raw)
	return nil
}

// FormattedFileSize renders the attachment size for display, e.g. "245.8 KB".
// Returns "" for text messages or zero-sized attachments.
func (a *Attachment) FormattedFileSize() string {
	size := a.FileSizeBytes
	if size <= 0 {
		return ""
	}
	const unit = 1000
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
