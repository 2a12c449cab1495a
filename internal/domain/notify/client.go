package notify

// Client defines the outbound notification capability: a single push-style
// message to a fixed chat. Delivery is strictly advisory; callers treat
// failures as warnings.
type Client interface {
	Send(chatID int64, markdown string) error
}
