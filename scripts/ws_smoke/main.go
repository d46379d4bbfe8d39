// Command ws_smoke connects to a running server, sends one message, and
// exits once the broadcast comes back. Useful as a deploy sanity check.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/adskoe96/adsk-chat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	name := flag.String("name", "smoke-tester", "display name (open mode)")
	token := flag.String("token", "", "account token (accounts mode)")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(frameType string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", frameType, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: frameType, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", frameType, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeHello, proto.HelloData{Name: *name, Token: *token}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeMsg, proto.MsgData{Body: *text}); err != nil {
		return err
	}

	for {
		var raw struct {
			Type   string          `json:"type"`
			Event  string          `json:"event"`
			Data   json.RawMessage `json:"data"`
			Notice *proto.Notice   `json:"notice"`
		}
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", raw.Type)
		if raw.Event != "" {
			fmt.Printf(" event=%s", raw.Event)
		}
		fmt.Println()

		if raw.Notice != nil {
			return fmt.Errorf("server notice: %s: %s", raw.Notice.Kind, raw.Notice.Text)
		}

		switch raw.Event {
		case proto.EventMessage:
			var msg proto.Message
			if err := json.Unmarshal(raw.Data, &msg); err != nil {
				fmt.Printf("Raw data: %s\n", raw.Data)
				return fmt.Errorf("unmarshal message: %w", err)
			}
			fmt.Printf("Broadcast: id=%d user=%s body=%q ts=%d\n", msg.ID, msg.User.Name, msg.Body, msg.TS)
			return nil
		case proto.EventHistory:
			var history []proto.Message
			if err := json.Unmarshal(raw.Data, &history); err == nil {
				fmt.Printf("History: %d messages\n", len(history))
			}
		case proto.EventPresence:
			var presence proto.PresenceData
			if err := json.Unmarshal(raw.Data, &presence); err == nil {
				fmt.Printf("Presence: online=%d\n", presence.Online)
			}
		default:
			// keep looping until the broadcast arrives
		}
	}
}
