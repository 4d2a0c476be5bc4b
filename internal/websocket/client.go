package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client is one websocket connection. Reads and writes each run on their
// own goroutine; everything else talks to the client through send.
type Client struct {
	Id      string
	conn    *websocket.Conn
	send    chan []byte
	hub     *Hub
	limiter *rate.Limiter
}

func newClient(hub *Hub, conn *websocket.Conn, id string, limiter *rate.Limiter) *Client {
	return &Client{
		Id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		hub:     hub,
		limiter: limiter,
	}
}

// enqueue must be called with hub.mu held so send cannot be closed under it.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		log.Warn().Str("conn", c.Id).Msg("[Client] send queue full, dropping message")
		return false
	}
}

// ReadPump forwards frames to handler until the connection fails. Frames over
// the rate limit are dropped.
func (c *Client) ReadPump(handler MessageHandler) {
	defer func() {
		handler.HandleDisconnect(c.Id)
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn", c.Id).Msg("[ReadPump] websocket error")
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			log.Debug().Str("conn", c.Id).Msg("[ReadPump] rate limited, dropping frame")
			continue
		}
		handler.HandleMessage(c.Id, data)
	}
}

// WritePump drains send and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("conn", c.Id).Msg("[WritePump] write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
