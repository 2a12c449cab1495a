// internal/domain/checkin/provider.go
package checkin

import "time"

// CorrelationMode selects how a reply is matched to the command that
// elicited it.
type CorrelationMode string

const (
	// CorrelateThreshold accepts only replies whose message ID is strictly
	// greater than the just-sent command's ID.
	CorrelateThreshold CorrelationMode = "threshold"
	// CorrelateLatest accepts the most recent message from the bot within
	// the scan window, with no ID threshold. Weaker guarantee; safe only
	// because the sender filter still applies.
	CorrelateLatest CorrelationMode = "latest"
)

// InlineRound is one best-effort click/refetch/merge round on the reply
// message's inline keyboard.
type InlineRound struct {
	Label    string
	Row, Col int
	Rules    []Rule
}

// NotifyLine pairs a result field with its label in the notification and the
// console summary.
type NotifyLine struct {
	Key   string
	Label string
}

// Provider is the immutable command spec for one reward bot: identities,
// commands, timing, keyword sets and parse rules. Constructed once at
// process start and passed into the orchestrator.
type Provider struct {
	Name        string
	Title       string // notification header text
	HeaderGlyph string

	Chat string // @handle of the channel to post into; empty = message the bot directly
	Bot  string // @handle of the replying bot

	Command         string
	FollowupCommand string // balance/points query sent on ALREADY_DONE; empty = none

	Settle      time.Duration // fixed wait before scanning for the reply
	ScanWindow  int
	Correlation CorrelationMode

	SuccessKeywords []string
	AlreadyKeywords []string

	Fields       []Field
	CheckinRules []Rule // post-checkin parsing mode
	QueryRules   []Rule // follow-up query parsing mode
	InlineRounds []InlineRound

	NotifyLines []NotifyLine
	Acceptable  []Classification
}

// ChatHandle is the peer the check-in command is sent to.
func (p Provider) ChatHandle() string {
	if p.Chat != "" {
		return p.Chat
	}
	return p.Bot
}

// AcceptableOutcome reports whether c counts as a successful run for exit
// status purposes.
func (p Provider) AcceptableOutcome(c Classification) bool {
	for _, a := range p.Acceptable {
		if a == c {
			return true
		}
	}
	return false
}
