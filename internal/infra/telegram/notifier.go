// internal/infra/telegram/notifier.go
package telegram

import (
	"net/http"
	"time"

	"gopkg.in/telebot.v3"
)

// TelebotNotifier implements the notify.Client interface using the
// gopkg.in/telebot.v3 library. It is send-only; no poller is attached.
type TelebotNotifier struct {
	bot *telebot.Bot
}

func NewTelebotNotifier(token string) (*TelebotNotifier, error) {
	b, err := telebot.NewBot(telebot.Settings{
		Token: token,
		// A finished run must not hang on the advisory notification.
		Client: &http.Client{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &TelebotNotifier{bot: b}, nil
}

// Send delivers a Markdown-formatted message to the notification chat.
func (n *TelebotNotifier) Send(chatID int64, markdown string) error {
	_, err := n.bot.Send(telebot.ChatID(chatID), markdown, &telebot.SendOptions{
		ParseMode: telebot.ModeMarkdown,
	})
	return err
}
