// Command ws_chat is a terminal chat client for manual testing: it joins the
// room, prints history and presence changes, and sends each stdin line as a
// message.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/adskoe96/adsk-chat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	name := flag.String("name", "cli-user", "display name (open mode)")
	token := flag.String("token", "", "account token (accounts mode)")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	helloPayload, err := json.Marshal(proto.HelloData{Name: *name, Token: *token})
	if err != nil {
		return fmt.Errorf("marshal hello: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeHello, Data: helloPayload}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	fmt.Printf("Connected to %s\n", *addr)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var raw struct {
			Type   string          `json:"type"`
			Event  string          `json:"event"`
			Data   json.RawMessage `json:"data"`
			Notice *proto.Notice   `json:"notice"`
		}
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			if ctx.Err() != nil {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if raw.Type == proto.OutboundTypeNotice && raw.Notice != nil {
			fmt.Printf("!! %s: %s\n", raw.Notice.Kind, raw.Notice.Text)
			continue
		}

		switch raw.Event {
		case proto.EventHistory:
			var history []proto.Message
			if err := json.Unmarshal(raw.Data, &history); err != nil {
				log.Printf("unmarshal history: %v", err)
				continue
			}
			for _, msg := range history {
				fmt.Printf("%s: %s\n", msg.User.Name, msg.Body)
			}
		case proto.EventMessage:
			var msg proto.Message
			if err := json.Unmarshal(raw.Data, &msg); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("%s: %s\n", msg.User.Name, msg.Body)
		case proto.EventPresence:
			var presence proto.PresenceData
			if err := json.Unmarshal(raw.Data, &presence); err != nil {
				log.Printf("unmarshal presence: %v", err)
				continue
			}
			names := make([]string, 0, len(presence.Users))
			for _, u := range presence.Users {
				names = append(names, u.Name)
			}
			fmt.Printf("-- online (%d): %s\n", presence.Online, strings.Join(names, ", "))
		default:
			fmt.Printf("event=%s data=%s\n", raw.Event, raw.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			payload, err := json.Marshal(proto.MsgData{Body: text})
			if err != nil {
				log.Printf("marshal msg: %v", err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMsg, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
