// internal/app/checkin_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tg_checkin_bot/internal/domain/chat"
	"tg_checkin_bot/internal/domain/checkin"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CheckInService drives the check-in state machine for one provider per
// call: send the command, correlate the reply, classify it, run the optional
// follow-up or inline-action rounds and aggregate everything into a Report.
//
// Soft outcomes (no reply, unrecognized text, missed field extractions) are
// classification/result data, never errors. Transport faults are absorbed
// into a TRANSPORT_ERROR report. The only error Run returns is an expired
// session authorization, which is fatal for the run and skips notification.
type CheckInService struct {
	dialer     chat.Dialer
	correlator *ReplyCorrelator
	notifier   *NotifyService
	reports    checkin.Repository
	logger     *logrus.Logger
}

func NewCheckInService(
	dialer chat.Dialer,
	notifier *NotifyService,
	reports checkin.Repository,
	logger *logrus.Logger,
) *CheckInService {
	return &CheckInService{
		dialer:     dialer,
		correlator: NewReplyCorrelator(logger),
		notifier:   notifier,
		reports:    reports,
		logger:     logger,
	}
}

// Run executes one full check-in for the provider. The chat session is
// closed exactly once on every path, and the final notification is sent
// exactly once for every terminal state except an authorization failure.
func (s *CheckInService) Run(ctx context.Context, p checkin.Provider) (*checkin.Report, error) {
	report := &checkin.Report{
		RunID:     uuid.NewString(),
		Provider:  p.Name,
		Status:    checkin.ClassNoReply,
		Fields:    checkin.NewResult(p.Fields),
		StartedAt: time.Now(),
	}
	s.logger.Infof("run %s: starting %s check-in", report.RunID, p.Name)

	sess, err := s.dialer.Dial(ctx)
	if err != nil {
		s.fail(report, fmt.Errorf("open chat session: %w", err))
		s.finish(ctx, p, report)
		return report, nil
	}

	err = s.runSession(ctx, sess, p, report)
	if errors.Is(err, chat.ErrUnauthorized) {
		// No notification about chat state can meaningfully be sent
		// without a working session.
		report.FinishedAt = time.Now()
		return report, err
	}

	s.finish(ctx, p, report)
	return report, nil
}

// runSession owns the session lifetime: whatever happens inside, the
// connection is released before returning.
func (s *CheckInService) runSession(ctx context.Context, sess chat.Session, p checkin.Provider, report *checkin.Report) error {
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.logger.Warnf("closing chat session: %v", cerr)
		} else {
			s.logger.Info("chat session closed")
		}
	}()

	if err := sess.Connect(ctx); err != nil {
		s.fail(report, fmt.Errorf("connect: %w", err))
		return nil
	}

	authorized, err := sess.IsAuthorized(ctx)
	if err != nil {
		s.fail(report, fmt.Errorf("check authorization: %w", err))
		return nil
	}
	if !authorized {
		s.logger.Error("session string rejected; re-issue TG_SESSION_STR")
		report.Status = checkin.ClassTransportError
		report.Error = chat.ErrUnauthorized.Error()
		return chat.ErrUnauthorized
	}

	s.execute(ctx, sess, p, report)
	return nil
}

// execute performs the command/reply rounds. Transport faults end the run
// with a TRANSPORT_ERROR classification; everything else degrades softly.
func (s *CheckInService) execute(ctx context.Context, sess chat.Session, p checkin.Provider, report *checkin.Report) {
	target, err := sess.Resolve(ctx, p.ChatHandle())
	if err != nil {
		s.fail(report, fmt.Errorf("resolve chat %s: %w", p.ChatHandle(), err))
		return
	}
	bot := target
	if p.Chat != "" {
		if bot, err = sess.Resolve(ctx, p.Bot); err != nil {
			s.fail(report, fmt.Errorf("resolve bot %s: %w", p.Bot, err))
			return
		}
	}
	s.logger.Infof("resolved chat %q, bot id %d", target.Handle, bot.ID)

	sentID, err := sess.SendMessage(ctx, target, p.Command)
	if err != nil {
		s.fail(report, fmt.Errorf("send %s: %w", p.Command, err))
		return
	}
	s.logger.Infof("sent %s (message %d)", p.Command, sentID)

	reply, err := s.correlator.AwaitReply(ctx, sess, target, bot, p.Settle, p.ScanWindow, sentID, p.Correlation)
	if err != nil {
		s.fail(report, fmt.Errorf("await %s reply: %w", p.Command, err))
		return
	}
	if reply == nil || reply.Text == "" {
		s.logger.Warnf("no reply to %s within the scan window", p.Command)
		report.Status = checkin.ClassNoReply
		return
	}
	s.logger.Infof("reply to %s:\n%s", p.Command, reply.Text)

	report.Status = checkin.Classify(reply.Text, p.SuccessKeywords, p.AlreadyKeywords)
	switch report.Status {
	case checkin.ClassSuccess:
		s.logger.Info("check-in succeeded")
		report.Fields = checkin.Extract(reply.Text, p.CheckinRules, report.Fields)
	case checkin.ClassAlreadyDone:
		if p.FollowupCommand == "" {
			s.logger.Warn("already checked in today")
			report.Fields = checkin.Extract(reply.Text, p.CheckinRules, report.Fields)
			break
		}
		s.logger.Warnf("already checked in today; sending %s for details", p.FollowupCommand)
		if !s.followUp(ctx, sess, p, target, bot, report) {
			return
		}
	default:
		s.logger.Warn("reply matched neither success nor already-done keywords")
	}

	if len(p.InlineRounds) > 0 {
		s.inlineRounds(ctx, sess, p, target, reply, report)
	}
}

// followUp runs the balance/points query round. A missing follow-up reply is
// a soft warning and never downgrades the ALREADY_DONE classification; only
// a transport fault ends the run. Reports whether the run may continue.
func (s *CheckInService) followUp(ctx context.Context, sess chat.Session, p checkin.Provider, target, bot chat.Identity, report *checkin.Report) bool {
	sentID, err := sess.SendMessage(ctx, target, p.FollowupCommand)
	if err != nil {
		s.fail(report, fmt.Errorf("send %s: %w", p.FollowupCommand, err))
		return false
	}

	reply, err := s.correlator.AwaitReply(ctx, sess, target, bot, p.Settle, p.ScanWindow, sentID, p.Correlation)
	if err != nil {
		s.fail(report, fmt.Errorf("await %s reply: %w", p.FollowupCommand, err))
		return false
	}
	if reply == nil || reply.Text == "" {
		s.logger.Warnf("no reply to %s; keeping previously merged fields", p.FollowupCommand)
		return true
	}
	s.logger.Infof("reply to %s:\n%s", p.FollowupCommand, reply.Text)
	report.Fields = checkin.Extract(reply.Text, p.QueryRules, report.Fields)
	return true
}

// inlineRounds clicks through the reply's inline keyboard to reveal extra
// detail, re-fetching the same message by ID after each click. Every round
// is independently best-effort: a missing button, failed click or failed
// refresh logs a warning and leaves previously merged fields untouched.
func (s *CheckInService) inlineRounds(ctx context.Context, sess chat.Session, p checkin.Provider, target chat.Identity, reply *chat.Message, report *checkin.Report) {
	current := reply
	for _, round := range p.InlineRounds {
		if _, ok := current.Button(round.Row, round.Col); !ok {
			s.logger.Warnf("no %q button on message %d", round.Label, current.ID)
			continue
		}
		if err := sess.Click(ctx, target, current, round.Row, round.Col); err != nil {
			s.logger.Warnf("clicking %q failed: %v", round.Label, err)
			continue
		}
		s.logger.Infof("clicked %q, waiting %s for the message to update", round.Label, p.Settle)
		if err := sleep(ctx, p.Settle); err != nil {
			s.logger.Warnf("inline round %q interrupted: %v", round.Label, err)
			return
		}
		refreshed, err := sess.FetchMessage(ctx, target, current.ID)
		if err != nil {
			s.logger.Warnf("refreshing message %d after %q failed: %v", current.ID, round.Label, err)
			continue
		}
		report.Fields = checkin.Extract(refreshed.Text, round.Rules, report.Fields)
		current = refreshed
	}
}

func (s *CheckInService) fail(report *checkin.Report, err error) {
	s.logger.Errorf("run %s: %v", report.RunID, err)
	report.Status = checkin.ClassTransportError
	report.Error = err.Error()
}

// finish seals the report, sends the advisory notification and persists the
// run. Exactly one notification attempt per run.
func (s *CheckInService) finish(ctx context.Context, p checkin.Provider, report *checkin.Report) {
	report.FinishedAt = time.Now()
	s.notifier.Notify(p, report)
	if err := s.reports.Save(ctx, report); err != nil {
		s.logger.Warnf("saving run %s: %v", report.RunID, err)
	}
	s.logger.Infof("run %s finished: %s", report.RunID, report.Status)
}
