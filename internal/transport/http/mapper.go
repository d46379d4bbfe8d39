package http

import (
	"github.com/adskoe96/adsk-chat/internal/core"
	"github.com/adskoe96/adsk-chat/internal/proto"
)

func wireUser(id core.Identity) proto.User {
	return proto.User{
		ID:     id.AccountID,
		Name:   id.Name,
		Avatar: id.Avatar,
		Role:   string(id.Role),
	}
}

func wireMessage(m *core.Message) proto.Message {
	return proto.Message{
		ID:   m.ID,
		User: wireUser(m.Author),
		Body: m.Body,
		TS:   m.CreatedAt.UnixMilli(),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventHistory:
		messages := make([]proto.Message, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, wireMessage(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventHistory,
			Data:  messages,
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessage,
			Data:  wireMessage(event.Message),
		}
	case core.EventPresence:
		users := make([]proto.User, 0, len(event.Presence.Users))
		for _, id := range event.Presence.Users {
			users = append(users, wireUser(id))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPresence,
			Data:  proto.PresenceData{Online: event.Presence.Online, Users: users},
		}
	case core.EventNotice:
		return proto.Outbound{
			Type:   proto.OutboundTypeNotice,
			Notice: &proto.Notice{Kind: string(event.Notice.Kind), Text: event.Notice.Text},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
