// Package core implements the broadcast hub: connection lifecycle, presence
// tracking, history replay, and message fan-out.
package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adskoe96/adsk-chat/internal/sanitize"
	"github.com/adskoe96/adsk-chat/internal/store"
)

// Mode selects how connections identify themselves.
type Mode string

const (
	// ModeOpen accepts a free-text display name at handshake.
	ModeOpen Mode = "open"
	// ModeAccounts requires a valid account token at handshake.
	ModeAccounts Mode = "accounts"
)

// HubConfig carries the tunables of the hub.
type HubConfig struct {
	Mode Mode
	// HistoryLimit is how many recent messages a joining connection gets.
	HistoryLimit int
	// StoreTimeout bounds every store round trip issued by the hub.
	StoreTimeout time.Duration
}

func (c *HubConfig) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeOpen
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
}

// Hub coordinates all live connections. A single goroutine (Run) consumes the
// command channel, so presence mutation and the persist-then-broadcast
// sequence of each message are serialized without locks.
type Hub struct {
	cfg      HubConfig
	store    store.MessageStore
	log      zerolog.Logger
	commands chan *Command
	done     chan struct{} // closed when Run returns
	presence *Registry
	joined   map[string]*Client // connection id -> client, mirrors presence
}

// NewHub creates a hub over the given message store.
func NewHub(cfg HubConfig, st store.MessageStore, logger *zerolog.Logger) *Hub {
	cfg.applyDefaults()
	lg := zerolog.Nop()
	if logger != nil {
		lg = *logger
	}
	return &Hub{
		cfg:      cfg,
		store:    st,
		log:      lg,
		commands: make(chan *Command, 64),
		done:     make(chan struct{}),
		presence: NewRegistry(),
		joined:   make(map[string]*Client),
	}
}

// Mode reports which identity mode the hub runs in.
func (h *Hub) Mode() Mode {
	return h.cfg.Mode
}

// Run consumes commands until ctx is cancelled. It must be running before any
// connection is attached.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, c := range h.joined {
				close(c.Events)
			}
			h.joined = make(map[string]*Client)
			h.presence = NewRegistry()
			return
		case cmd := <-h.commands:
			switch cmd.Kind {
			case CommandJoin:
				h.handleJoin(cmd.Client, cmd.History)
			case CommandLeave:
				h.handleLeave(cmd.Client)
			case CommandSubmitMessage:
				h.handleSubmit(ctx, cmd)
			}
		}
	}
}

// Connect attaches a resolved connection to the hub. The history fetch runs
// here, on the caller's goroutine, so a slow store never stalls broadcasts
// for everyone else; the connection joins presence only after the fetch.
func (h *Hub) Connect(ctx context.Context, c *Client) {
	fetchCtx, cancel := context.WithTimeout(ctx, h.cfg.StoreTimeout)
	history, err := h.store.RecentMessages(fetchCtx, h.cfg.HistoryLimit)
	cancel()
	if err != nil {
		// Degraded join: the connection still enters the room, with an
		// empty replay.
		h.log.Warn().Err(err).Str("conn_id", c.ID).Msg("history fetch failed")
		history = nil
	}

	h.enqueue(ctx, &Command{Kind: CommandJoin, Client: c, History: history})
}

// Submit queues a message submission from a joined connection.
func (h *Hub) Submit(ctx context.Context, c *Client, body, nameOverride string) {
	h.enqueue(ctx, &Command{Kind: CommandSubmitMessage, Client: c, Body: body, Name: nameOverride})
}

// Disconnect queues the removal of a connection. Safe to call for
// connections that never joined.
func (h *Hub) Disconnect(ctx context.Context, c *Client) {
	h.enqueue(ctx, &Command{Kind: CommandLeave, Client: c})
}

// enqueue hands a command to the hub loop. It gives up when the caller's
// context ends or when the loop has already exited, so late disconnects with
// a background context never block shutdown against a full buffer.
func (h *Hub) enqueue(ctx context.Context, cmd *Command) {
	select {
	case h.commands <- cmd:
	case <-ctx.Done():
	case <-h.done:
	}
}

func (h *Hub) handleJoin(c *Client, history []*store.Message) {
	if !h.presence.Join(c.ID, c.Identity) {
		return
	}
	h.joined[c.ID] = c

	messages := make([]*Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, &Message{
			ID:        m.ID,
			Author:    Identity{AccountID: m.AuthorID, Name: m.AuthorName},
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	h.send(c, &Event{Kind: EventHistory, Messages: messages})

	h.broadcast(&Event{Kind: EventPresence, Presence: h.presence.Snapshot()})
	h.log.Info().Str("conn_id", c.ID).Str("user", c.Identity.Name).Int("online", h.presence.Count()).Msg("connection joined")
}

func (h *Hub) handleLeave(c *Client) {
	if !h.presence.Leave(c.ID) {
		return
	}
	delete(h.joined, c.ID)
	close(c.Events)

	h.broadcast(&Event{Kind: EventPresence, Presence: h.presence.Snapshot()})
	h.log.Info().Str("conn_id", c.ID).Str("user", c.Identity.Name).Int("online", h.presence.Count()).Msg("connection left")
}

// handleSubmit runs the whole accept pipeline inside the hub loop: two
// submissions can never interleave their persist and broadcast steps.
func (h *Hub) handleSubmit(ctx context.Context, cmd *Command) {
	c := cmd.Client
	if _, joined := h.joined[c.ID]; !joined {
		return
	}
	// An absent body is dropped without a reply; only content that fails
	// sanitation earns a notice.
	if cmd.Body == "" {
		return
	}

	name := c.Identity.Name
	if h.cfg.Mode == ModeOpen && cmd.Name != "" {
		if override := sanitize.Clean(cmd.Name, sanitize.DisplayName); override != "" {
			name = override
		}
	}

	body := sanitize.Clean(cmd.Body, sanitize.MessageBody)
	if body == "" {
		h.send(c, noticeEvent(NoticeInvalidContent, "message contains no displayable content"))
		return
	}

	appendCtx, cancel := context.WithTimeout(ctx, h.cfg.StoreTimeout)
	stored, err := h.store.AppendMessage(appendCtx, c.Identity.AccountID, name, body)
	cancel()
	if err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("message append failed")
		h.send(c, noticeEvent(NoticePersistenceFailed, "message could not be saved"))
		return
	}

	h.broadcast(&Event{Kind: EventMessage, Message: &Message{
		ID: stored.ID,
		Author: Identity{
			AccountID: c.Identity.AccountID,
			Name:      name,
			Avatar:    c.Identity.Avatar,
			Role:      c.Identity.Role,
		},
		Body:      stored.Body,
		CreatedAt: stored.CreatedAt,
	}})
}

func (h *Hub) broadcast(event *Event) {
	for _, c := range h.joined {
		h.send(c, event)
	}
}

func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
		h.log.Debug().Str("conn_id", c.ID).Msg("event dropped, slow consumer")
	}
}
