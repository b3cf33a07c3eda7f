package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"inari-web/internal/auth"
	"inari-web/internal/websocket"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades the request and keeps the connection registered until
// the browser goes away.
func (h *Handler) ServeWS(c *gin.Context) {
	if h.ws == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "live refresh disabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(auth.Subject(c), c.Query("tab"), conn)
	h.ws.RegisterClient(client)
	defer func() {
		h.ws.UnregisterClient(client)
		conn.Close()
	}()

	// the page never sends anything; reading surfaces the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				h.logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
	}
}
