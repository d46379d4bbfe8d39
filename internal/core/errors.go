package core

// NoticeKind identifies why a submission or connection attempt was rejected.
type NoticeKind string

const (
	// NoticeInvalidContent means the submission sanitized down to nothing.
	// The connection stays joined.
	NoticeInvalidContent NoticeKind = "invalid_content"
	// NoticePersistenceFailed means the store rejected the append. The
	// connection stays joined and nothing is broadcast.
	NoticePersistenceFailed NoticeKind = "persistence_failed"
	// NoticeAuthFailed means the credential was absent or invalid. The
	// connection is refused and never appears in presence.
	NoticeAuthFailed NoticeKind = "auth_failed"
)

// Notice is a targeted error report, delivered to exactly one connection.
type Notice struct {
	Kind NoticeKind
	Text string
}

func noticeEvent(kind NoticeKind, text string) *Event {
	return &Event{Kind: EventNotice, Notice: &Notice{Kind: kind, Text: text}}
}
