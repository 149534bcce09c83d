package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeTimeout bounds preview pushes so one stalled client cannot hold
// up a broadcast.
const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Same-origin enforcement happens at the CORS layer.
	},
}

// previewMessage is pushed to live-preview clients after every committed
// mutation, and as a bare reload event when section templates change.
type previewMessage struct {
	Event string `json:"event"`          // "preview" or "reload"
	HTML  string `json:"html,omitempty"` // rendered read-only document
}

// hub tracks live-preview WebSocket connections, grouped by page.
type hub struct {
	mu     sync.RWMutex
	conns  map[string]map[*websocket.Conn]bool // pageID -> connections
	logger *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		conns:  make(map[string]map[*websocket.Conn]bool),
		logger: logger,
	}
}

// add registers a connection for a page and starts its read loop (which
// only watches for close).
func (h *hub) add(pageID string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[pageID] == nil {
		h.conns[pageID] = make(map[*websocket.Conn]bool)
	}
	h.conns[pageID][conn] = true
	h.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(pageID, conn)
				return
			}
		}
	}()
}

func (h *hub) remove(pageID string, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.conns[pageID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, pageID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends a message to every connection watching the page.
// Connections that fail to write are dropped.
func (h *hub) broadcast(pageID string, msg previewMessage) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns[pageID]))
	for conn := range h.conns[pageID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("dropping preview connection", zap.String("page", pageID), zap.Error(err))
			h.remove(pageID, conn)
		}
	}
}

// broadcastAll sends a message to every connection on every page. Used
// for template reload events.
func (h *hub) broadcastAll(msg previewMessage) {
	h.mu.RLock()
	pages := make([]string, 0, len(h.conns))
	for pageID := range h.conns {
		pages = append(pages, pageID)
	}
	h.mu.RUnlock()

	for _, pageID := range pages {
		h.broadcast(pageID, msg)
	}
}

// closeAll closes every tracked connection. Called on shutdown.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for pageID, set := range h.conns {
		for conn := range set {
			conn.Close()
		}
		delete(h.conns, pageID)
	}
}
