// internal/infra/telegram/session.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"tg_checkin_bot/internal/domain/chat"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/unpack"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
)

// UserSession implements the chat.Session interface over an MTProto user
// session. It accepts the same Telethon string-session format the original
// export script produces, so TG_SESSION_STR keeps working unchanged.
type UserSession struct {
	client *telegram.Client
	api    *tg.Client
	sender *message.Sender
	stop   bg.StopFunc
	peers  map[string]tg.InputPeerClass // normalized handle -> resolved peer
	logger *logrus.Logger
}

// Dialer builds a fresh UserSession per run.
type Dialer struct {
	apiID         int
	apiHash       string
	sessionString string
	logger        *logrus.Logger
}

func NewDialer(apiID int, apiHash, sessionString string, logger *logrus.Logger) *Dialer {
	return &Dialer{apiID: apiID, apiHash: apiHash, sessionString: sessionString, logger: logger}
}

func (d *Dialer) Dial(ctx context.Context) (chat.Session, error) {
	return NewUserSession(ctx, d.apiID, d.apiHash, d.sessionString, d.logger)
}

func NewUserSession(ctx context.Context, apiID int, apiHash, sessionString string, logger *logrus.Logger) (*UserSession, error) {
	data, err := session.TelethonSession(sessionString)
	if err != nil {
		return nil, fmt.Errorf("decode session string: %w", err)
	}

	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("seed session storage: %w", err)
	}

	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: storage,
	})
	return &UserSession{
		client: client,
		peers:  make(map[string]tg.InputPeerClass),
		logger: logger,
	}, nil
}

// Connect starts the client in the background so the rest of the run can
// drive it with plain calls. The paired Close stops it.
func (s *UserSession) Connect(ctx context.Context) error {
	stop, err := bg.Connect(s.client)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.stop = stop
	s.api = s.client.API()
	s.sender = message.NewSender(s.api)
	s.logger.Debug("mtproto client connected")
	return nil
}

func (s *UserSession) IsAuthorized(ctx context.Context) (bool, error) {
	status, err := s.client.Auth().Status(ctx)
	if err != nil {
		return false, fmt.Errorf("auth status: %w", err)
	}
	return status.Authorized, nil
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(handle, "@"))
}

// Resolve turns an @username into an Identity and caches the peer for the
// send/list/fetch/click calls that follow.
func (s *UserSession) Resolve(ctx context.Context, handle string) (chat.Identity, error) {
	username := normalizeHandle(handle)
	resolved, err := s.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return chat.Identity{}, fmt.Errorf("resolve %s: %w", handle, err)
	}

	for _, u := range resolved.Users {
		user, ok := u.(*tg.User)
		if !ok || !strings.EqualFold(user.Username, username) {
			continue
		}
		s.peers[username] = &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}
		title := strings.TrimSpace(user.FirstName + " " + user.LastName)
		s.logger.Debugf("resolved %s to user %d", handle, user.ID)
		return chat.Identity{ID: user.ID, Handle: handle, Title: title}, nil
	}
	for _, c := range resolved.Chats {
		channel, ok := c.(*tg.Channel)
		if !ok || !strings.EqualFold(channel.Username, username) {
			continue
		}
		s.peers[username] = &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
		s.logger.Debugf("resolved %s to channel %d", handle, channel.ID)
		return chat.Identity{ID: channel.ID, Handle: handle, Title: channel.Title}, nil
	}
	return chat.Identity{}, fmt.Errorf("resolve %s: no matching peer in response", handle)
}

func (s *UserSession) peer(target chat.Identity) (tg.InputPeerClass, error) {
	peer, ok := s.peers[normalizeHandle(target.Handle)]
	if !ok {
		return nil, fmt.Errorf("peer %s was not resolved in this session", target.Handle)
	}
	return peer, nil
}

func (s *UserSession) SendMessage(ctx context.Context, target chat.Identity, text string) (int, error) {
	peer, err := s.peer(target)
	if err != nil {
		return 0, err
	}
	id, err := unpack.MessageID(s.sender.To(peer).Text(ctx, text))
	if err != nil {
		return 0, fmt.Errorf("send %q to %s: %w", text, target.Handle, err)
	}
	return id, nil
}

func (s *UserSession) ListRecent(ctx context.Context, target chat.Identity, limit int) ([]chat.Message, error) {
	peer, err := s.peer(target)
	if err != nil {
		return nil, err
	}
	history, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get history of %s: %w", target.Handle, err)
	}
	modified, ok := history.AsModified()
	if !ok {
		return nil, fmt.Errorf("get history of %s: unexpected response %T", target.Handle, history)
	}

	// Telegram returns history newest first, which is the order the
	// correlator scans in.
	var out []chat.Message
	for _, m := range modified.GetMessages() {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue // service messages carry no reply text
		}
		out = append(out, toDomainMessage(msg))
	}
	return out, nil
}

func (s *UserSession) FetchMessage(ctx context.Context, target chat.Identity, id int) (*chat.Message, error) {
	peer, err := s.peer(target)
	if err != nil {
		return nil, err
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: id}}
	var result tg.MessagesMessagesClass
	if channel, ok := peer.(*tg.InputPeerChannel); ok {
		result, err = s.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: channel.ChannelID, AccessHash: channel.AccessHash},
			ID:      ids,
		})
	} else {
		result, err = s.api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch message %d from %s: %w", id, target.Handle, err)
	}
	modified, ok := result.AsModified()
	if !ok {
		return nil, fmt.Errorf("fetch message %d from %s: unexpected response %T", id, target.Handle, result)
	}
	for _, m := range modified.GetMessages() {
		if msg, ok := m.(*tg.Message); ok && msg.ID == id {
			out := toDomainMessage(msg)
			return &out, nil
		}
	}
	return nil, chat.ErrMessageNotFound
}

// Click fires the callback behind an inline button. Bots often answer the
// callback slowly or not at all, so a timeout here is reported to the
// caller, which treats it as a soft failure.
func (s *UserSession) Click(ctx context.Context, target chat.Identity, msg *chat.Message, row, col int) error {
	peer, err := s.peer(target)
	if err != nil {
		return err
	}
	button, ok := msg.Button(row, col)
	if !ok {
		return chat.ErrNoButton
	}
	req := &tg.MessagesGetBotCallbackAnswerRequest{
		Peer:  peer,
		MsgID: msg.ID,
	}
	req.SetData(button.Data)
	if _, err := s.api.MessagesGetBotCallbackAnswer(ctx, req); err != nil {
		return fmt.Errorf("click (%d,%d) on message %d: %w", row, col, msg.ID, err)
	}
	return nil
}

func (s *UserSession) Close() error {
	if s.stop == nil {
		return nil
	}
	return s.stop()
}

func toDomainMessage(msg *tg.Message) chat.Message {
	return chat.Message{
		ID:       msg.ID,
		SenderID: senderOf(msg),
		Outgoing: msg.Out,
		Text:     msg.Message,
		Buttons:  inlineButtons(msg),
	}
}

// senderOf recovers the sender's numeric ID. In private chats incoming
// messages may omit FromID, in which case the sender is the peer itself.
func senderOf(msg *tg.Message) int64 {
	if from, ok := msg.GetFromID(); ok {
		if user, ok := from.(*tg.PeerUser); ok {
			return user.UserID
		}
		if channel, ok := from.(*tg.PeerChannel); ok {
			return channel.ChannelID
		}
		return 0
	}
	if msg.Out {
		return 0
	}
	if user, ok := msg.PeerID.(*tg.PeerUser); ok {
		return user.UserID
	}
	return 0
}

func inlineButtons(msg *tg.Message) [][]chat.Button {
	markup, ok := msg.GetReplyMarkup()
	if !ok {
		return nil
	}
	inline, ok := markup.(*tg.ReplyInlineMarkup)
	if !ok {
		return nil
	}
	rows := make([][]chat.Button, 0, len(inline.Rows))
	for _, row := range inline.Rows {
		buttons := make([]chat.Button, 0, len(row.Buttons))
		for _, b := range row.Buttons {
			switch btn := b.(type) {
			case *tg.KeyboardButtonCallback:
				buttons = append(buttons, chat.Button{Label: btn.Text, Data: btn.Data})
			default:
				// Preserve positions so (row, col) coordinates
				// still line up with what the user sees.
				buttons = append(buttons, chat.Button{Label: buttonLabel(b)})
			}
		}
		rows = append(rows, buttons)
	}
	return rows
}

func buttonLabel(b tg.KeyboardButtonClass) string {
	type texter interface{ GetText() string }
	if t, ok := b.(texter); ok {
		return t.GetText()
	}
	return ""
}
