package models

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Chat is a conversation thread. It exclusively owns its messages: deleting
// the chat cascades to every message with a matching ChatID.
type Chat struct {
	ID                   string    `gorm:"primaryKey;size:36" json:"id"`
	Title                string    `gorm:"size:200" json:"title"`
	LastMessagePreview   string    `gorm:"type:text" json:"last_message_preview"`
	LastMessageSender    Sender    `gorm:"size:20" json:"last_message_sender"`
	LastMessageTimestamp int64     `gorm:"index" json:"last_message_timestamp"`
	CreatedAt            int64     `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt            int64     `gorm:"autoUpdateTime:false" json:"updated_at"`
	Messages             []Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}
