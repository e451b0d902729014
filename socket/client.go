package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"fmasite/internal/content/model"
	"fmasite/internal/editor"
	"fmasite/internal/media"
	"fmasite/internal/metrics"
	"fmasite/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pingPeriod    = 30 * time.Second
	uploadTimeout = 30 * time.Second
	// Room for a base64 encoded image of media.MaxUploadSize.
	maxMessageSize = media.MaxUploadSize/3*4 + 64<<10
)

var errUploadsDisabled = errors.New("image uploads are not configured")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin dashboard is served from another origin; CORS and the token
	// are checked before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Entity string
	ID     string
	UserID string
	Send   chan []byte

	// loaded is the row content read when the connection was accepted.
	loaded string
	ready  chan struct{}
	once   sync.Once

	mu      sync.Mutex
	session *editor.Session
	pending *string

	sendMu sync.Mutex
	closed bool
}

// ServeWs opens an editing session on ?entity=&id= for userID.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	entity := r.URL.Query().Get("entity")
	id := r.URL.Query().Get("id")
	if !model.HasContent(entity) || id == "" {
		http.Error(w, "Missing or invalid entity/id", http.StatusBadRequest)
		return
	}

	content, err := hub.store.GetContent(entity, id)
	if err != nil {
		logger.Sugar.Warnf("Connection rejected: %s %s: %v", entity, id, err)
		http.Error(w, "Content not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:    hub,
		Conn:   conn,
		Entity: entity,
		ID:     id,
		UserID: userID,
		Send:   make(chan []byte, 256),
		loaded: content,
		ready:  make(chan struct{}),
	}
	client.Hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) room() string {
	return roomKey(c.Entity, c.ID)
}

// open starts a fresh session on content and pushes it to the browser.
func (c *Client) open(content string) {
	c.mu.Lock()
	if c.session != nil {
		c.session.Close()
	}
	c.session = editor.New(content, c.changed, editor.WithHistoryDepth(c.Hub.historyDepth))
	html := c.session.HTML()
	state := c.state()
	c.mu.Unlock()

	c.sendHTML(html)
	c.send(StateType, state)
	c.once.Do(func() { close(c.ready) })
}

// reload replaces the session after the room's content changed elsewhere.
// Undo history does not survive a reload.
func (c *Client) reload(content string) {
	c.open(content)
}

// changed is the session's change callback. Only the read pump runs
// commands, so pending is only touched from its goroutine.
func (c *Client) changed(html string) {
	c.pending = &html
}

// holds reports whether the session currently serializes to html.
func (c *Client) holds(html string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.HTML() == html
}

func (c *Client) state() json.RawMessage {
	payload, err := json.Marshal(c.session.State())
	if err != nil {
		logger.Sugar.Errorf("Error marshalling editor state: %v", err)
	}
	return payload
}

func (c *Client) handleCommand(payload json.RawMessage) {
	var cmd editor.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		metrics.EditorCommands.WithLabelValues("invalid", "error").Inc()
		c.sendError("invalid command payload")
		return
	}

	if cmd.Name == "uploadImage" {
		c.uploadImage(cmd)
		return
	}

	c.mu.Lock()
	c.pending = nil
	changed, err := c.session.Exec(cmd)
	pending := c.pending
	state := c.state()
	c.mu.Unlock()

	c.finish(cmd.Name, changed, pending, state, err)
}

// uploadImage stores cmd.Data through the hub's uploader and inserts the
// image at the selection. c.mu is not held during the upload so the hub can
// still reload the session; a reload closes the old session and the upload
// then fails with editor.ErrClosed.
func (c *Client) uploadImage(cmd editor.Command) {
	if c.Hub.uploader == nil {
		c.finish(cmd.Name, false, nil, nil, errUploadsDisabled)
		return
	}

	c.mu.Lock()
	session := c.session
	if cmd.Selection != nil {
		session.Select(*cmd.Selection)
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	c.pending = nil
	url, err := session.UploadImage(ctx, c.Hub.uploader, cmd.Data)
	if !errors.Is(err, editor.ErrClosed) && !errors.Is(err, editor.ErrUploadInFlight) {
		metrics.Uploads.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err == nil {
		logger.Sugar.Infof("User %s uploaded %s into %s", c.UserID, url, c.room())
	}

	c.mu.Lock()
	pending := c.pending
	state := c.state()
	c.mu.Unlock()

	c.finish(cmd.Name, err == nil && pending != nil, pending, state, err)
}

// finish answers a command: ERROR on failure, the change to the hub when the
// document changed, STATE otherwise.
func (c *Client) finish(name string, changed bool, pending *string, state json.RawMessage, err error) {
	switch {
	case err != nil:
		metrics.EditorCommands.WithLabelValues(name, "error").Inc()
		if !errors.Is(err, editor.ErrUnknownCommand) {
			logger.Sugar.Warnf("Command %s from %s on %s failed: %v", name, c.UserID, c.room(), err)
		}
		c.sendError(err.Error())
	case changed && pending != nil:
		metrics.EditorCommands.WithLabelValues(name, "changed").Inc()
		// The hub answers with CHANGE and STATE once the room holds the edit.
		c.Hub.Changes <- change{client: c, html: *pending, state: state}
	default:
		metrics.EditorCommands.WithLabelValues(name, "noop").Inc()
		c.send(StateType, state)
	}
}

func (c *Client) sendHTML(html string) {
	payload, _ := json.Marshal(html)
	c.send(ChangeType, payload)
}

func (c *Client) sendError(message string) {
	payload, _ := json.Marshal(map[string]string{"error": message})
	c.send(ErrorType, payload)
}

// send queues a message without blocking. A full buffer means the browser is
// lagging; the message is dropped and the next CHANGE carries the full HTML.
func (c *Client) send(msgType string, payload json.RawMessage) {
	msg, err := json.Marshal(WSMessage{Type: msgType, Entity: c.Entity, ID: c.ID, UserID: c.UserID, Payload: payload})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s message: %v", msgType, err)
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- msg:
	default:
		logger.Sugar.Warnf("Client %s's send buffer is full, dropping %s", c.UserID, msgType)
	}
}

// shutdown closes the session and the send queue. Called by the hub once.
func (c *Client) shutdown() {
	c.mu.Lock()
	if c.session != nil {
		c.session.Close()
	}
	c.mu.Unlock()

	c.sendMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
	c.sendMu.Unlock()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	<-c.ready

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			c.sendError("invalid message")
			continue
		}

		switch msg.Type {
		case CommandType:
			c.handleCommand(msg.Payload)
		default:
			c.sendError("unsupported message type " + msg.Type)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
