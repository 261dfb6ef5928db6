package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, c *websocket.Conn) {
	client := NewClient(hub, c)
	if !hub.registerClient(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
