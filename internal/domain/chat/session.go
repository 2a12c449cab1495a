// internal/domain/chat/session.go
package chat

import (
	"context"
	"errors"
)

// Custom errors surfaced by Session implementations.
var (
	// ErrUnauthorized means the session credentials were rejected by the
	// network. It requires an externally re-issued session string and is
	// never retried within a run.
	ErrUnauthorized = errors.New("chat session is not authorized")
	// ErrNoButton means a click targeted a button position the message
	// does not have.
	ErrNoButton = errors.New("message has no button at the given position")
	// ErrMessageNotFound means a fetch-by-id found no message.
	ErrMessageNotFound = errors.New("message not found")
)

// Identity is a resolved chat peer: a channel, a group or a single user/bot.
type Identity struct {
	ID     int64  // numeric peer ID, used for sender matching
	Handle string // the @username the identity was resolved from
	Title  string // display title, informational only
}

// Button is one inline action affordance attached to a message.
type Button struct {
	Label string
	Data  []byte // opaque callback payload
}

// Message is one inbound chat message as seen by the correlator.
// IDs are monotonic per chat, so they double as an ordering threshold.
type Message struct {
	ID       int
	SenderID int64
	Outgoing bool
	Text     string
	Buttons  [][]Button // inline keyboard rows, empty when none
}

// Button returns the affordance at (row, col), or false when out of range.
func (m *Message) Button(row, col int) (Button, bool) {
	if row < 0 || row >= len(m.Buttons) {
		return Button{}, false
	}
	if col < 0 || col >= len(m.Buttons[row]) {
		return Button{}, false
	}
	return m.Buttons[row][col], true
}

// Session defines the chat transport capability the check-in flow depends on.
// This decouples the orchestration logic from the specific client library.
type Session interface {
	// Connect opens the underlying connection. It does not verify
	// authorization; use IsAuthorized for that.
	Connect(ctx context.Context) error
	// IsAuthorized reports whether the session credentials are accepted.
	IsAuthorized(ctx context.Context) (bool, error)
	// Resolve turns an @username handle into a peer Identity.
	Resolve(ctx context.Context, handle string) (Identity, error)
	// SendMessage sends text to the target and returns the new message ID.
	SendMessage(ctx context.Context, target Identity, text string) (int, error)
	// ListRecent returns up to limit messages from the target chat,
	// newest first.
	ListRecent(ctx context.Context, target Identity, limit int) ([]Message, error)
	// FetchMessage re-fetches a single message by ID, or
	// ErrMessageNotFound.
	FetchMessage(ctx context.Context, target Identity, id int) (*Message, error)
	// Click activates the inline affordance at (row, col) of msg.
	Click(ctx context.Context, target Identity, msg *Message, row, col int) error
	// Close releases the connection. Safe to call on every exit path.
	Close() error
}

// Dialer builds a fresh Session per run. Each check-in run opens and closes
// its own connection.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}
