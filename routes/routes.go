package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"banter/pkg/session"
	"banter/pkg/store"

	chatRoutes "banter/routes/chats"
	uploadsRoutes "banter/routes/uploads"
	websocketRoutes "banter/routes/websocket"
)

// RegisterRoutes wires every endpoint of the messenger backend.
func RegisterRoutes(r *gin.Engine, st *store.Store, mgr *session.Manager, uploadsDir string) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "banter chat backend running"})
	})

	chatRoutes.Register(r, st, mgr)
	websocketRoutes.Register(r, mgr)
	uploadsRoutes.Register(r, uploadsDir)
}
