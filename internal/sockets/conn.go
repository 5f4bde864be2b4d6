package sockets

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the max time allowed to write one message to the peer.
	writeWait = 10 * time.Second
	// pongWait is how long we wait for a pong before dropping the connection.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds inbound frames; payloads are small JSON objects.
	maxMessageSize = 8192
	// sendBuffer is the per-connection outbound queue depth.
	sendBuffer = 64
)

// request is one inbound procedure call frame.
type request struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// wireError is the error half of a response frame. Message is a stable
// localization token.
type wireError struct {
	Message string `json:"message"`
}

// response is one outbound frame, matched to its request by ID.
type response struct {
	ID     int64       `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  *wireError  `json:"error,omitempty"`
}

// Client is one connected peer: a websocket, its session identity, and the
// outbound queue. Calls dispatch concurrently; responses are serialized
// through the write pump.
type Client struct {
	session  *Session
	conn     *websocket.Conn
	registry *Registry

	send      chan response
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, session *Session, registry *Registry) *Client {
	return &Client{
		session:  session,
		conn:     conn,
		registry: registry,
		send:     make(chan response, sendBuffer),
		done:     make(chan struct{}),
	}
}

// run starts the pumps and blocks until the connection is gone.
func (c *Client) run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// readPump consumes inbound frames and dispatches each call in its own
// goroutine, so one slow procedure cannot stall the connection. Dispatch runs
// on a context detached from the connection: a dropped socket must not cancel
// audit writes or emails already in flight.
func (c *Client) readPump() {
	defer c.close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("sockets: channel %s read error: %v", c.session.ChannelID, err)
			}
			return
		}
		var req request
		if err := json.Unmarshal(raw, &req); err != nil || req.Method == "" {
			c.enqueue(response{ID: req.ID, Error: &wireError{Message: ErrInvalidData.Error()}})
			continue
		}
		go c.dispatch(req)
	}
}

func (c *Client) dispatch(req request) {
	result, err := c.registry.Dispatch(context.Background(), c.session, req.Method, req.Params)
	resp := response{ID: req.ID}
	if err != nil {
		resp.Error = &wireError{Message: wireMessage(err)}
	} else {
		resp.Result = result
	}
	c.enqueue(resp)
}

func (c *Client) enqueue(resp response) {
	select {
	case c.send <- resp:
	case <-c.done:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case resp := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(resp); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
