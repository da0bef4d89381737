package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"presence-service/internal/presence"

	"github.com/google/uuid"
)

var ErrClientDisconnected = fmt.Errorf("client disconnected")

// PresenceSink mirrors presence transitions into external storage.
// Implementations must tolerate best-effort calls; errors are logged
// and never fed back into the signaling path.
type PresenceSink interface {
	SetUserOnline(ctx context.Context, userID string) error
	SetUserOffline(ctx context.Context, userID string) error
}

// AuditPublisher records presence transitions for downstream consumers.
type AuditPublisher interface {
	PublishTransition(userID, status string) error
}

type ClientMessage struct {
	Client  *Client
	Message *Message
}

// Hub routes events between admitted connections: typing signals are
// unicast to the mapped recipient, presence transitions are broadcast
// to every connection. The hub loop serializes each connection's
// admission, relays and disconnect.
type Hub struct {
	// All admitted connections, for presence broadcasts
	clients map[*Client]bool

	// Identity -> current connection, shared with the REST surface
	registry *presence.Registry

	// Optional presence mirror and audit stream
	sink  PresenceSink
	audit AuditPublisher

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Inbound signal events from clients
	handleMessage chan *ClientMessage

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc

	// Guards clients; broadcasts snapshot under read lock
	mu sync.RWMutex
}

// NewHub creates a hub routing through the given registry. sink and
// audit may be nil when the corresponding backend is not configured.
func NewHub(registry *presence.Registry, sink PresenceSink, audit AuditPublisher) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:       make(map[*Client]bool),
		registry:      registry,
		sink:          sink,
		audit:         audit,
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		handleMessage: make(chan *ClientMessage),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.handleMessage:
			h.handleClientMessage(clientMsg)

		case <-h.ctx.Done():
			slog.Info("WebSocket hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// OnlineCount returns the number of admitted connections.
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// registerClient admits a connection: the registry mapping is installed
// before the online broadcast, so any event relayed afterwards can
// already reach this user. Exactly one user-online broadcast per
// admission.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	h.registry.Register(client.userID, client)

	slog.Info("Client registered", "clientID", client.id, "userID", client.userID)

	h.broadcast(NewPresenceMessage(uuid.New().String(), MessageTypeUserOnline, client.userID))
	h.mirrorTransition(client.userID, "online")
}

// unregisterClient runs the terminal disconnect transition. The
// registry's compare-and-delete decides whether this connection still
// represents the user; a stale disconnect after a newer login must not
// produce a spurious offline broadcast.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		// Duplicate lifecycle notification
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.mu.Unlock()

	client.closeSendChannel()

	slog.Info("Client unregistered", "clientID", client.id, "userID", client.userID)

	if h.registry.Unregister(client.userID, client) {
		h.broadcast(NewPresenceMessage(uuid.New().String(), MessageTypeUserOffline, client.userID))
		h.mirrorTransition(client.userID, "offline")
	}
}

func (h *Hub) handleClientMessage(clientMsg *ClientMessage) {
	client := clientMsg.Client
	msg := clientMsg.Message

	if err := msg.Validate(); err != nil {
		slog.Error("Invalid message", "clientID", client.id, "userID", client.userID, "error", err)
		client.sendError("INVALID_MESSAGE", err.Error())
		return
	}

	switch msg.Type {
	case MessageTypeTyping, MessageTypeStopTyping:
		h.relaySignal(client, msg)
	default:
		client.sendError("UNSUPPORTED_TYPE", fmt.Sprintf("unsupported message type: %s", msg.Type))
	}
}

// relaySignal forwards a typing signal to the recipient's connection
// only. A recipient with no active connection is not an error: the
// signal is an ephemeral UI hint and is silently dropped.
func (h *Hub) relaySignal(sender *Client, msg *Message) {
	to := msg.Recipient()
	if to == "" {
		sender.sendError("INVALID_MESSAGE", "typing signal requires a recipient")
		return
	}

	conn, ok := h.registry.Lookup(to)
	if !ok {
		slog.Debug("Recipient offline, dropping signal", "from", sender.userID, "to", to, "type", msg.Type)
		return
	}

	peer, ok := conn.(*Client)
	if !ok {
		return
	}

	out := NewSignalMessage(uuid.New().String(), msg.Type, sender.userID)
	if err := peer.SendMessage(out); err != nil {
		// Delivery failures are contained per event and never surfaced
		// to the sender.
		slog.Debug("Signal delivery failed", "from", sender.userID, "to", to, "error", err)
	}
}

// broadcast delivers a message to every admitted connection. Sends go
// through each client's buffered channel and are never awaited while
// holding the lock.
func (h *Hub) broadcast(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.enqueue(data); err != nil {
			slog.Debug("Broadcast delivery failed", "clientID", client.id, "userID", client.userID, "error", err)
		}
	}
}

// mirrorTransition pushes the transition to the presence mirror and the
// audit stream, fire-and-forget off the hub loop.
func (h *Hub) mirrorTransition(userID, status string) {
	sink := h.sink
	audit := h.audit
	if sink == nil && audit == nil {
		return
	}

	go func() {
		if sink != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			var err error
			if status == "online" {
				err = sink.SetUserOnline(ctx, userID)
			} else {
				err = sink.SetUserOffline(ctx, userID)
			}
			if err != nil {
				slog.Error("Failed to mirror presence transition", "userID", userID, "status", status, "error", err)
			}
		}

		if audit != nil {
			if err := audit.PublishTransition(userID, status); err != nil {
				slog.Error("Failed to publish presence transition", "userID", userID, "status", status, "error", err)
			}
		}
	}()
}
