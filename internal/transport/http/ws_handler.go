package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adskoe96/adsk-chat/internal/auth"
	"github.com/adskoe96/adsk-chat/internal/core"
	"github.com/adskoe96/adsk-chat/internal/proto"
	"github.com/adskoe96/adsk-chat/internal/sanitize"
)

// helloTimeout bounds how long a connection may sit in the handshake before
// it is dropped.
const helloTimeout = 10 * time.Second

// WSHandler upgrades HTTP connections, resolves their identity, and bridges
// them to the hub.
type WSHandler struct {
	hub  *core.Hub
	auth *auth.Service // nil in open mode
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, auth: authService, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := h.handshake(ctx, conn)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws handshake refused")
		notice := proto.Outbound{
			Type:   proto.OutboundTypeNotice,
			Notice: &proto.Notice{Kind: string(core.NoticeAuthFailed), Text: "authentication failed"},
		}
		writeCtx, writeCancel := context.WithTimeout(context.Background(), time.Second)
		_ = wsjson.Write(writeCtx, conn, notice)
		writeCancel()
		conn.Close(websocket.StatusPolicyViolation, "authentication failed")
		return
	}

	// The connection joins presence only here, after identity resolution;
	// refused connections above never reach the hub.
	h.hub.Connect(ctx, client)
	defer h.hub.Disconnect(context.Background(), client)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// handshake reads the hello frame and resolves the connection's identity.
func (h *WSHandler) handshake(ctx context.Context, conn *websocket.Conn) (*core.Client, error) {
	helloCtx, cancel := context.WithTimeout(ctx, helloTimeout)
	defer cancel()

	var inbound proto.Inbound
	if err := wsjson.Read(helloCtx, conn, &inbound); err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if inbound.Type != proto.InboundTypeHello {
		return nil, fmt.Errorf("expected hello, got %q", inbound.Type)
	}

	var hello proto.HelloData
	if err := json.Unmarshal(inbound.Data, &hello); err != nil {
		return nil, fmt.Errorf("decode hello: %w", err)
	}

	connID := uuid.NewString()

	identity, err := h.resolveIdentity(ctx, connID, hello)
	if err != nil {
		return nil, err
	}

	return core.NewClient(connID, identity), nil
}

func (h *WSHandler) resolveIdentity(ctx context.Context, connID string, hello proto.HelloData) (core.Identity, error) {
	if h.hub.Mode() == core.ModeAccounts {
		acc, err := h.auth.ResolveToken(ctx, hello.Token)
		if err != nil {
			return core.Identity{}, fmt.Errorf("resolve token: %w", err)
		}
		return core.Identity{
			AccountID: acc.ID,
			Name:      acc.DisplayName,
			Avatar:    acc.Avatar,
			Role:      acc.Role,
		}, nil
	}

	name := sanitize.Clean(hello.Name, sanitize.DisplayName)
	if name == "" {
		name = "guest-" + connID[:8]
	}
	return core.Identity{Name: name}, nil
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		switch inbound.Type {
		case proto.InboundTypeMsg:
			var msg proto.MsgData
			if err := json.Unmarshal(inbound.Data, &msg); err != nil {
				h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("bad msg frame")
				continue
			}
			h.hub.Submit(ctx, client, msg.Body, msg.Name)
		default:
			h.log.Debug().Str("conn_id", client.ID).Str("type", inbound.Type).Msg("ignoring unknown frame")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
