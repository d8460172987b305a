package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"banter/models"
	"banter/pkg/session"
	"banter/pkg/store"
)

// ListChats returns every chat, newest activity first.
func ListChats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		chats, err := st.ListChats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to list chats"})
			return
		}
		if chats == nil {
			chats = []models.Chat{}
		}
		c.JSON(http.StatusOK, gin.H{"chats": chats})
	}
}

// CreateChat starts a new empty conversation.
func CreateChat(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Title string `json:"title"`
		}
		_ = c.ShouldBindJSON(&body)
		title := strings.TrimSpace(body.Title)
		if title == "" {
			title = session.NewChatTitle
		}
		chat, err := st.CreateChat(title)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create chat"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"chat": chat})
	}
}

// GetChat returns one chat with its ordered messages.
func GetChat(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chat_id")
		chat, err := st.GetChat(chatID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to load chat"})
			return
		}
		if chat == nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "chat not found"})
			return
		}
		msgs, err := st.ListMessages(chatID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to load messages"})
			return
		}
		if msgs == nil {
			msgs = []models.Message{}
		}
		c.JSON(http.StatusOK, gin.H{"chat": chat, "messages": msgs})
	}
}

// RenameChat updates a chat title. Whitespace-only titles leave the chat
// untouched (still a 200; the store treats it as a validation no-op).
func RenameChat(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "title is required"})
			return
		}
		if err := st.RenameChat(c.Param("chat_id"), body.Title); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to rename chat"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	}
}

// DeleteChat removes a chat, its messages and any open session.
func DeleteChat(st *store.Store, mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chat_id")
		mgr.CloseSession(chatID)
		if err := st.DeleteChat(chatID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to delete chat"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "chat deleted"})
	}
}
