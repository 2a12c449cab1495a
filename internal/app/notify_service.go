// internal/app/notify_service.go
package app

import (
	"fmt"
	"strings"

	"tg_checkin_bot/internal/domain/checkin"
	"tg_checkin_bot/internal/domain/notify"

	"github.com/sirupsen/logrus"
)

// statusLabels are the human-readable terminal states embedded in the
// notification and the console summary.
var statusLabels = map[checkin.Classification]string{
	checkin.ClassSuccess:        "成功",
	checkin.ClassAlreadyDone:    "今日已签到",
	checkin.ClassUnrecognized:   "未知响应",
	checkin.ClassNoReply:        "未收到回复",
	checkin.ClassTransportError: "错误",
}

// StatusLabel returns the display name for a terminal classification.
func StatusLabel(c checkin.Classification) string {
	if label, ok := statusLabels[c]; ok {
		return label
	}
	return string(c)
}

// StatusGlyph maps a classification onto the three notification glyphs.
func StatusGlyph(c checkin.Classification) string {
	switch c {
	case checkin.ClassSuccess:
		return "✅"
	case checkin.ClassAlreadyDone:
		return "ℹ️"
	default:
		return "❌"
	}
}

// NotifyService formats the final run report and delivers it through the
// outbound notification channel. Delivery is fire-and-forget, at most once;
// failures are logged and never affect the run's own terminal status.
type NotifyService struct {
	client notify.Client // nil when notification credentials are not set
	chatID int64
	logger *logrus.Logger
}

func NewNotifyService(client notify.Client, chatID int64, logger *logrus.Logger) *NotifyService {
	return &NotifyService{client: client, chatID: chatID, logger: logger}
}

// Notify sends the summary message for a finished run.
func (s *NotifyService) Notify(p checkin.Provider, report *checkin.Report) {
	if s.client == nil {
		s.logger.Warn("TG_BOT_TOKEN or TG_CHAT_ID not set; skipping notification")
		return
	}
	if err := s.client.Send(s.chatID, ComposeNotification(p, report)); err != nil {
		s.logger.Errorf("sending notification: %v", err)
		return
	}
	s.logger.Info("notification sent")
}

// ComposeNotification builds the fixed-template Markdown message: provider
// header, status line with glyph, target link and every parsed field.
func ComposeNotification(p checkin.Provider, report *checkin.Report) string {
	handle := p.ChatHandle()
	link := handle
	if strings.HasPrefix(handle, "@") {
		link = "t.me/" + strings.TrimPrefix(handle, "@")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* %s\n", p.HeaderGlyph, p.Title, p.HeaderGlyph)
	b.WriteString("====================\n")
	fmt.Fprintf(&b, "%s 状态: %s\n", StatusGlyph(report.Status), StatusLabel(report.Status))
	fmt.Fprintf(&b, "🎯 目标: [%s](%s)", handle, link)
	for _, line := range p.NotifyLines {
		fmt.Fprintf(&b, "\n%s: %s", line.Label, report.Fields[line.Key])
	}
	return b.String()
}
