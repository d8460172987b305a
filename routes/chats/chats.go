package chats

import (
	"github.com/gin-gonic/gin"

	"banter/controllers"
	"banter/middleware"
	"banter/pkg/session"
	"banter/pkg/store"
)

// Register registers the chat and message routes.
func Register(r *gin.Engine, st *store.Store, mgr *session.Manager) {
	r.GET("/chats", controllers.ListChats(st))
	r.POST("/chats", controllers.CreateChat(st))
	r.GET("/chats/:chat_id", controllers.GetChat(st))
	r.PUT("/chats/:chat_id/title", controllers.RenameChat(st))
	r.DELETE("/chats/:chat_id", controllers.DeleteChat(st, mgr))

	// rate limiting only on the send endpoints
	r.POST("/chats/:chat_id/messages", middleware.RateLimit(), controllers.SendText(mgr))
	r.POST("/chats/:chat_id/images", middleware.RateLimit(), controllers.SendImage(mgr))

	r.GET("/chats/:chat_id/state", controllers.GetState(mgr))
	r.PUT("/chats/:chat_id/draft", controllers.SetDraft(mgr))
}
