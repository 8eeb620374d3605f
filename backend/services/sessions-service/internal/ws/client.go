package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 512
)

// Client is one websocket subscriber. Writes happen only on its write pump.
type Client struct {
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*Client)
}

// NewClient wraps conn.
func NewClient(conn *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(*Client)) *Client {
	return &Client{
		conn:         conn,
		send:         make(chan []byte, 16),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		logger:       logger,
		onClose:      onClose,
	}
}

// Start launches the write pump and blocks on the read pump until the peer goes away.
func (c *Client) Start() {
	go c.writePump()
	c.readPump()
}

// Send queues msg, dropping it when the client is slow or closed.
func (c *Client) Send(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping stream message, buffer full", zap.String("remote", c.conn.RemoteAddr().String()))
	}
}

// Close terminates the connection. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

// readPump discards inbound frames; it exists to process control frames and notice disconnects.
func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logger.Debug("stream client disconnected", zap.Error(err))
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}
