package core

import "github.com/adskoe96/adsk-chat/internal/store"

// Identity is who a connection speaks as. In open mode it is just a display
// name; in accounts mode it mirrors the account record it was resolved from.
type Identity struct {
	AccountID int64 // 0 for free-text identities
	Name      string
	Avatar    string
	Role      store.Role
}
