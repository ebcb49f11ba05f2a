package patchmgr

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/klingon-exchange/klingon-v2/internal/patchdb"
	"github.com/klingon-exchange/klingon-v2/pkg/logging"
)

// StabilizedEvent is the summary broadcast to connected event subscribers
// when a branch stabilizes. It never carries the patch's internal UTXO,
// contract, or receipt maps, only the figures a dashboard needs.
// ContractDigests carries one hex-encoded Keccak256 digest per touched
// contract's data buffer, not the buffer itself.
type StabilizedEvent struct {
	Kind            string   `json:"kind"`
	Complexity      int      `json:"complexity"`
	ContractDigests []string `json:"contract_digests,omitempty"`
}

// EventBroadcaster fans StabilizedEvent notifications out to every
// connected websocket client.
type EventBroadcaster struct {
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]struct{}

	logger *logging.Logger
}

// NewEventBroadcaster creates a new broadcaster using gorilla/websocket's
// default buffer sizes. A nil logger falls back to a component of the
// default logger.
func NewEventBroadcaster(logger *logging.Logger) *EventBroadcaster {
	if logger == nil {
		logger = logging.GetDefault().Component("patchmgr-events")
	}
	return &EventBroadcaster{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

// ServeHTTP upgrades the connection and registers it as an event subscriber.
func (b *EventBroadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	b.clientsMu.Lock()
	b.clients[conn] = struct{}{}
	b.clientsMu.Unlock()

	go b.readLoop(conn)
}

// readLoop drains and discards client frames until the connection closes,
// which is how gorilla/websocket detects a client disconnect.
func (b *EventBroadcaster) readLoop(conn *websocket.Conn) {
	defer func() {
		b.clientsMu.Lock()
		delete(b.clients, conn)
		b.clientsMu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// BroadcastStabilized sends a StabilizedEvent summarizing p to every
// connected client.
func (b *EventBroadcaster) BroadcastStabilized(p *patchdb.Patch) {
	contracts := p.GetContracts()
	digests := make([]string, 0, len(contracts))
	for _, c := range contracts {
		digest := c.DataDigest()
		digests = append(digests, hex.EncodeToString(digest[:]))
	}

	event := StabilizedEvent{
		Kind:            "stabilized",
		Complexity:      p.Complexity(),
		ContractDigests: digests,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn("failed to marshal stabilized event", "error", err)
		return
	}

	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()
	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.logger.Debug("dropping unresponsive event subscriber", "error", err)
		}
	}
}
