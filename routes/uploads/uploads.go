package uploads

import (
	"github.com/gin-gonic/gin"
)

// Register serves stored chat images so the UI can render attachments by
// their relative paths.
func Register(r *gin.Engine, uploadsDir string) {
	r.Static("/uploads", uploadsDir)
}
