package app

import (
	"context"

	"tg_checkin_bot/internal/domain/chat"
	"tg_checkin_bot/internal/domain/checkin"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// fakeSession scripts the chat transport. Each SendMessage consumes one
// batch of replies, which then show up at the head of the history.
type fakeSession struct {
	authorized bool
	connectErr error
	sendErr    error
	listErr    error
	clickErr   error

	botID   int64
	peers   map[string]int64 // handle -> peer id; fallback is botID
	history []chat.Message   // newest first
	replies [][]chat.Message // batch i arrives after the i-th send

	// refreshQueue feeds FetchMessage: each fetch pops the next text,
	// simulating the bot editing the message after a button click.
	refreshQueue []string

	nextID int
	sends  []string
	clicks [][2]int
	closes int
}

func (f *fakeSession) Connect(ctx context.Context) error { return f.connectErr }

func (f *fakeSession) IsAuthorized(ctx context.Context) (bool, error) { return f.authorized, nil }

func (f *fakeSession) Resolve(ctx context.Context, handle string) (chat.Identity, error) {
	if id, ok := f.peers[handle]; ok {
		return chat.Identity{ID: id, Handle: handle}, nil
	}
	return chat.Identity{ID: f.botID, Handle: handle}, nil
}

func (f *fakeSession) SendMessage(ctx context.Context, target chat.Identity, text string) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	id := f.nextID
	f.sends = append(f.sends, text)
	f.history = append([]chat.Message{{ID: id, Outgoing: true, Text: text}}, f.history...)

	if len(f.replies) > 0 {
		batch := f.replies[0]
		f.replies = f.replies[1:]
		for _, m := range batch {
			f.nextID++
			m.ID = f.nextID
			if m.SenderID == 0 {
				m.SenderID = f.botID
			}
			f.history = append([]chat.Message{m}, f.history...)
		}
	}
	return id, nil
}

func (f *fakeSession) ListRecent(ctx context.Context, target chat.Identity, limit int) ([]chat.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > len(f.history) {
		limit = len(f.history)
	}
	out := make([]chat.Message, limit)
	copy(out, f.history[:limit])
	return out, nil
}

func (f *fakeSession) FetchMessage(ctx context.Context, target chat.Identity, id int) (*chat.Message, error) {
	for _, m := range f.history {
		if m.ID != id {
			continue
		}
		if len(f.refreshQueue) > 0 {
			m.Text = f.refreshQueue[0]
			f.refreshQueue = f.refreshQueue[1:]
		}
		return &m, nil
	}
	return nil, chat.ErrMessageNotFound
}

func (f *fakeSession) Click(ctx context.Context, target chat.Identity, msg *chat.Message, row, col int) error {
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks = append(f.clicks, [2]int{row, col})
	return nil
}

func (f *fakeSession) Close() error {
	f.closes++
	return nil
}

type fakeDialer struct {
	sess    *fakeSession
	dialErr error
}

func (d *fakeDialer) Dial(ctx context.Context) (chat.Session, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.sess, nil
}

type fakeNotifyClient struct {
	sent    []string
	chatIDs []int64
	err     error
}

func (c *fakeNotifyClient) Send(chatID int64, markdown string) error {
	if c.err != nil {
		return c.err
	}
	c.chatIDs = append(c.chatIDs, chatID)
	c.sent = append(c.sent, markdown)
	return nil
}

type fakeReportRepo struct {
	saved []*checkin.Report
}

func (r *fakeReportRepo) Save(ctx context.Context, report *checkin.Report) error {
	r.saved = append(r.saved, report)
	return nil
}

func (r *fakeReportRepo) ListRecent(ctx context.Context, provider string, limit int) ([]*checkin.Report, error) {
	return r.saved, nil
}
