// internal/app/correlator.go
package app

import (
	"context"
	"fmt"
	"time"

	"tg_checkin_bot/internal/domain/chat"
	"tg_checkin_bot/internal/domain/checkin"

	"github.com/sirupsen/logrus"
)

// ReplyCorrelator matches an inbound message to the command that elicited
// it. It waits a fixed settle duration once, then scans the most recent
// messages newest-first. There is no polling loop: the settle duration is
// assumed to exceed the bot backend's reply latency.
type ReplyCorrelator struct {
	logger *logrus.Logger
}

func NewReplyCorrelator(logger *logrus.Logger) *ReplyCorrelator {
	return &ReplyCorrelator{logger: logger}
}

// AwaitReply returns the reply belonging to the just-sent command, or
// (nil, nil) when the bot did not answer within the scan window. A record is
// accepted only if its sender matches the bot identity and, in threshold
// mode, its ID is strictly greater than minID. A nil result is an expected
// outcome, not an error; errors are reserved for transport faults.
func (c *ReplyCorrelator) AwaitReply(
	ctx context.Context,
	sess chat.Session,
	target, bot chat.Identity,
	settle time.Duration,
	window int,
	minID int,
	mode checkin.CorrelationMode,
) (*chat.Message, error) {
	c.logger.Infof("waiting %s before scanning for a reply from %s", settle, bot.Handle)
	if err := sleep(ctx, settle); err != nil {
		return nil, err
	}

	c.logger.Infof("scanning the %d most recent messages", window)
	messages, err := sess.ListRecent(ctx, target, window)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}

	for i := range messages {
		m := messages[i]
		if m.Outgoing || m.SenderID != bot.ID {
			continue
		}
		if mode == checkin.CorrelateThreshold && m.ID <= minID {
			continue
		}
		c.logger.Infof("found reply from %s (message %d)", bot.Handle, m.ID)
		return &m, nil
	}
	return nil, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
