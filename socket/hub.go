package socket

import (
	"encoding/json"
	"sync"
	"time"

	"fmasite/internal/editor"
	"fmasite/internal/metrics"
	"fmasite/pkg/logger"
)

const (
	CommandType        = "COMMAND"         // Editing command from the toolbar or keyboard
	ChangeType         = "CHANGE"          // Serialized HTML after a committed edit
	StateType          = "STATE"           // Toolbar state for the sender's selection
	PresenceUpdateType = "PRESENCE_UPDATE" // A user joined or left
	ErrorType          = "ERROR"           // Rejected command

	DefaultSaveInterval = 10 * time.Second
)

type WSMessage struct {
	Type    string          `json:"type"`
	Entity  string          `json:"entity"`
	ID      string          `json:"id"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type UserStatus struct {
	UserID   string    `json:"user_id"`
	LastSeen time.Time `json:"last_seen"`
}

// ContentStore reads and writes the rich-text field of an entity row.
type ContentStore interface {
	GetContent(entity, id string) (string, error)
	UpdateContent(entity, id, content string) error
}

// change is a committed edit on its way from a client to the hub.
type change struct {
	client *Client
	html   string
	state  json.RawMessage
}

// Hub groups editing connections into rooms, one per entity row. Every
// connection edits its own session; the hub keeps the room's latest HTML,
// resyncs the other sessions and persists dirty rooms.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Changes    chan change

	store        ContentStore
	uploader     editor.Uploader
	historyDepth int
	saveInterval time.Duration

	// saves tracks writes of rooms closed while dirty.
	saves sync.WaitGroup

	mu       sync.Mutex
	content  map[string]string
	dirty    map[string]bool
	presence map[string]map[string]UserStatus
}

type HubOption func(*Hub)

func WithHistoryDepth(depth int) HubOption {
	return func(h *Hub) { h.historyDepth = depth }
}

func WithSaveInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.saveInterval = d }
}

// WithUploader enables the uploadImage command.
func WithUploader(up editor.Uploader) HubOption {
	return func(h *Hub) { h.uploader = up }
}

func NewHub(store ContentStore, opts ...HubOption) *Hub {
	h := &Hub{
		Rooms:        make(map[string]map[*Client]bool),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		Changes:      make(chan change),
		store:        store,
		saveInterval: DefaultSaveInterval,
		content:      make(map[string]string),
		dirty:        make(map[string]bool),
		presence:     make(map[string]map[string]UserStatus),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func roomKey(entity, id string) string {
	return entity + ":" + id
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case c := <-h.Changes:
			h.commit(c)
		}
	}
}

func (h *Hub) register(client *Client) {
	key := client.room()

	h.mu.Lock()
	if h.Rooms[key] == nil {
		h.Rooms[key] = make(map[*Client]bool)
		h.presence[key] = make(map[string]UserStatus)
	}
	if _, ok := h.content[key]; !ok {
		h.content[key] = client.loaded
	}
	h.Rooms[key][client] = true
	h.presence[key][client.UserID] = UserStatus{UserID: client.UserID, LastSeen: time.Now()}
	content := h.content[key]
	h.mu.Unlock()

	metrics.ActiveSessions.Inc()
	// A room that is already open may hold edits newer than the row.
	client.open(content)
	h.broadcastPresenceUpdate(key)
}

func (h *Hub) unregister(client *Client) {
	key := client.room()

	h.mu.Lock()
	if _, ok := h.Rooms[key][client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.Rooms[key], client)
	delete(h.presence[key], client.UserID)
	client.shutdown()
	metrics.ActiveSessions.Dec()

	empty := len(h.Rooms[key]) == 0
	save, content := false, ""
	if empty {
		save, content = h.dirty[key], h.content[key]
		if save {
			h.saves.Add(1)
		}
		delete(h.Rooms, key)
		delete(h.presence, key)
		delete(h.content, key)
		delete(h.dirty, key)
	}
	h.mu.Unlock()

	if !empty {
		h.broadcastPresenceUpdate(key)
		return
	}
	if save {
		// Off the Run goroutine so a slow write does not hold up other rooms.
		go func() {
			defer h.saves.Done()
			err := h.store.UpdateContent(client.Entity, client.ID, content)
			metrics.Autosaves.WithLabelValues(metrics.Result(err)).Inc()
			if err != nil {
				logger.Sugar.Errorf("Failed to save %s on close: %v", key, err)
			}
		}()
	}
	logger.Sugar.Infof("Closed and cleaned up empty room: %s", key)
}

// commit records the sender's HTML as the room's content, answers the sender
// and reloads every other session in the room. An edit made on content the
// sender's session has since been reloaded away from is dropped; the reload
// already gave the sender the room's content.
func (h *Hub) commit(c change) {
	key := c.client.room()

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.content[key]; !ok {
		// The entity was removed while the command was in flight.
		return
	}
	if !c.client.holds(c.html) {
		metrics.EditorCommands.WithLabelValues("commit", "stale").Inc()
		logger.Sugar.Infof("Dropped stale edit from %s on %s", c.client.UserID, key)
		return
	}
	h.content[key] = c.html
	h.dirty[key] = true

	c.client.sendHTML(c.html)
	c.client.send(StateType, c.state)
	for client := range h.Rooms[key] {
		if client != c.client {
			client.reload(c.html)
		}
	}
}

// SaveWorker flushes dirty rooms every save interval. It never returns.
func (h *Hub) SaveWorker() {
	ticker := time.NewTicker(h.saveInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.Flush()
	}
}

// Flush writes every dirty room to the store and waits for saves of rooms
// that were closed dirty.
func (h *Hub) Flush() {
	defer h.saves.Wait()

	type pending struct {
		entity, id, content string
	}
	var toSave []pending

	h.mu.Lock()
	for key, isDirty := range h.dirty {
		if !isDirty {
			continue
		}
		for client := range h.Rooms[key] {
			toSave = append(toSave, pending{client.Entity, client.ID, h.content[key]})
			break
		}
	}
	h.mu.Unlock()

	// Store I/O happens without holding the hub's lock.
	for _, p := range toSave {
		key := roomKey(p.entity, p.id)
		err := h.store.UpdateContent(p.entity, p.id, p.content)
		metrics.Autosaves.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			logger.Sugar.Errorf("Failed to save %s: %v", key, err)
			continue // still dirty, retried on the next tick
		}

		h.mu.Lock()
		// Only mark as clean if nothing changed since the copy was taken.
		if h.content[key] == p.content {
			h.dirty[key] = false
		}
		h.mu.Unlock()

		logger.Sugar.Infof("Auto-saved %s", key)
	}
}

// ContentReplaced reloads open sessions after the row was rewritten outside
// the editor, e.g. through the REST API. The row already holds content, so
// the room is clean afterwards.
func (h *Hub) ContentReplaced(entity, id, content string) {
	key := roomKey(entity, id)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.content[key]; !ok {
		return
	}
	h.content[key] = content
	h.dirty[key] = false
	for client := range h.Rooms[key] {
		client.reload(content)
	}
}

// EntityRemoved drops the room's content so it is never saved back and
// disconnects everyone editing it.
func (h *Hub) EntityRemoved(entity, id string) {
	key := roomKey(entity, id)

	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.content, key)
	delete(h.dirty, key)
	for client := range h.Rooms[key] {
		client.Conn.Close() // the read pump exits and unregisters
	}
}

func (h *Hub) broadcastPresenceUpdate(key string) {
	var userStatuses []UserStatus
	var clientsToSend []*Client

	h.mu.Lock()
	if _, ok := h.presence[key]; ok {
		userStatuses = make([]UserStatus, 0, len(h.presence[key]))
		for _, status := range h.presence[key] {
			userStatuses = append(userStatuses, status)
		}

		clientsToSend = make([]*Client, 0, len(h.Rooms[key]))
		for client := range h.Rooms[key] {
			clientsToSend = append(clientsToSend, client)
		}
	}
	h.mu.Unlock()

	if len(clientsToSend) == 0 {
		return
	}

	payload, err := json.Marshal(userStatuses)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling presence broadcast: %v", err)
		return
	}
	for _, client := range clientsToSend {
		client.send(PresenceUpdateType, payload)
	}
}
