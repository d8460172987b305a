package websocket

import (
	"github.com/gin-gonic/gin"

	"banter/controllers"
	"banter/pkg/session"
)

// Register registers the chat event stream.
func Register(r *gin.Engine, mgr *session.Manager) {
	r.GET("/ws/chats/:chat_id", controllers.ChatWS(mgr))
}
