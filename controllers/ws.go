package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"banter/pkg/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

// ChatWS streams session events for one chat over a websocket.
// Server frames (JSON):
//
//	<- {type: "state", ...session.State}        once, on connect
//	<- {type: "message", chat_id, message}      on every appended message
//	<- {type: "typing", chat_id, typing: bool}  on typing changes
//
// Client frames:
//
//	-> {type: "draft", text: string}            update the draft
func ChatWS(mgr *session.Manager) gin.HandlerFunc {
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

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade error: %v", err)
			return
		}
		defer conn.Close()

		conn.SetReadLimit(1 << 20) // 1MB
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		})

		// Session notifications run under the session lock; hand off to a
		// buffered channel so slow sockets never stall the session. A full
		// buffer drops the event, the client re-syncs via the state frame.
		events := make(chan session.Event, 64)
		unsubscribe := sess.Subscribe(func(ev session.Event) {
			select {
			case events <- ev:
			default:
				log.Printf("[ws] dropping event for chat %s: slow consumer", ev.ChatID)
			}
		})
		defer unsubscribe()

		// initial snapshot
		snap := sess.Snapshot()
		if err := writeFrame(conn, "state", snap); err != nil {
			return
		}

		// Reader goroutine: drafts in, connection liveness out.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				_, raw, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var frame struct {
					Type string `json:"type"`
					Text string `json:"text"`
				}
				if err := json.Unmarshal(raw, &frame); err != nil {
					continue
				}
				if strings.ToLower(frame.Type) == "draft" {
					sess.SetDraft(frame.Text)
				}
			}
		}()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-closed:
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case ev := <-events:
				if err := writeEvent(conn, ev); err != nil {
					return
				}
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, frameType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	m["type"] = frameType
	return conn.WriteJSON(m)
}

func writeEvent(conn *websocket.Conn, ev session.Event) error {
	return conn.WriteJSON(ev)
}
