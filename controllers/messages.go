package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"banter/pkg/session"
)

// SendText persists a user text message in the chat's session. Empty
// (after trim) text is accepted and ignored, matching the input bar.
func SendText(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "text is required"})
			return
		}
		sess, err := mgr.Open(c.Param("chat_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to open chat"})
			return
		}
		if sess == nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "chat not found"})
			return
		}
		msg, err := sess.SendUserText(body.Text)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to send message"})
			return
		}
		if msg == nil {
			c.JSON(http.StatusOK, gin.H{"sent": false})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"sent": true, "message": msg})
	}
}

// SendImage accepts a multipart image upload and persists a file message.
// A failed image save sends nothing and reports sent=false, it is not an
// error the message list ever sees.
func SendImage(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, _, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "image file is required"})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "failed to read image"})
			return
		}

		sess, err := mgr.Open(c.Param("chat_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to open chat"})
			return
		}
		if sess == nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "chat not found"})
			return
		}
		msg, err := sess.SendUserImage(data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to send image"})
			return
		}
		if msg == nil {
			c.JSON(http.StatusOK, gin.H{"sent": false})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"sent": true, "message": msg})
	}
}

// GetState returns the session snapshot the UI renders: ordered messages,
// typing flag, scroll target and draft.
func GetState(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := mgr.Open(c.Param("chat_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to open chat"})
			return
		}
		if sess == nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "chat not found"})
			return
		}
		c.JSON(http.StatusOK, sess.Snapshot())
	}
}

// SetDraft stores the in-progress input text for the chat.
func SetDraft(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "text is required"})
			return
		}
		sess, err := mgr.Open(c.Param("chat_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to open chat"})
			return
		}
		if sess == nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "chat not found"})
			return
		}
		sess.SetDraft(body.Text)
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	}
}
