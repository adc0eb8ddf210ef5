// Package session tracks in-flight conversational state: the per-user step
// cursor, per-admin relay sessions, and pending one-shot relay obligations.
// The Store is injected so single-instance deployments can use the
// in-memory implementation while multi-instance ones can back it with an
// external key-value store.
package session

// UserState is the conversation cursor for one user.
type UserState struct {
	Campaign  string
	StepIndex int
	// Confirming is set once all steps are answered and the summary with
	// submit/edit/cancel controls has been shown.
	Confirming bool
	RequestID  int64
	UserID     int64
}

type AdminMode int

const (
	ModeAskInfo AdminMode = iota
	ModeSupportReply
)

// AdminState binds an admin to the one message they are about to send:
// an ask-info question or a support answer.
type AdminState struct {
	Mode AdminMode
	// RequestID is set for ask-info sessions.
	RequestID int64
	// TargetChatID is the user the next admin message is relayed to.
	TargetChatID int64
}

// PendingReply marks a user whose next message must be forwarded to the
// admin who asked for info. One round-trip, then cleared.
type PendingReply struct {
	AdminChatID int64
	RequestID   int64
}

type Store interface {
	User(chatID int64) (UserState, bool)
	SetUser(chatID int64, state UserState)
	DeleteUser(chatID int64)

	Admin(chatID int64) (AdminState, bool)
	SetAdmin(chatID int64, state AdminState)
	DeleteAdmin(chatID int64)

	Reply(chatID int64) (PendingReply, bool)
	SetReply(chatID int64, pending PendingReply)
	DeleteReply(chatID int64)

	SupportPending(chatID int64) bool
	SetSupportPending(chatID int64)
	DeleteSupportPending(chatID int64)
}
