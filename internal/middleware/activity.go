package middleware

import (
	"aicourse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActivityTracker is the slice of the user repository the middleware
// needs to record lastActiveAt.
type ActivityTracker interface {
	UpdateLastSeen(id string) error
}

// ActivityMiddleware stamps the self-identified user's lastActiveAt on
// every request. The update runs asynchronously so it never blocks the
// request path.
func ActivityMiddleware(repo ActivityTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-User-ID")
		if id == "" {
			id = c.Query("ownerId")
		}
		if id != "" {
			go func() {
				if err := repo.UpdateLastSeen(id); err != nil {
					logger.Log.Warn("lastActiveAt update failed",
						zap.String("user", id), zap.Error(err))
				}
			}()
		}
		c.Next()
	}
}
