package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shieldloop/sentryloop/pkg/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the reference server has no browser origin to restrict
	},
}

// streamEvents upgrades the connection and relays every Bus event to the
// client as JSON until the client disconnects or the bus subscription is
// torn down. An optional "uuid" query parameter filters to one experiment.
func (s *Server) streamEvents(c *gin.Context) {
	filterUUID := c.Query("uuid")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("sentryloop: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	// Read loop: discards client input but detects disconnects promptly.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if filterUUID != "" && event.ExperimentID != filterUUID {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
