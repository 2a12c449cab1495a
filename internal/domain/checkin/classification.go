// internal/domain/checkin/classification.go
package checkin

import "strings"

// Classification is the closed-set outcome of one check-in round, derived
// only from the literal text of the round's reply.
type Classification string

const (
	ClassSuccess        Classification = "SUCCESS"
	ClassAlreadyDone    Classification = "ALREADY_DONE"
	ClassUnrecognized   Classification = "UNRECOGNIZED"
	ClassNoReply        Classification = "NO_REPLY"
	ClassTransportError Classification = "TRANSPORT_ERROR"
)

// Classify matches reply text against the provider keyword sets. Success
// keywords are checked first, so text containing both a success and an
// already-done keyword classifies as SUCCESS.
func Classify(text string, successKeywords, alreadyKeywords []string) Classification {
	for _, kw := range successKeywords {
		if strings.Contains(text, kw) {
			return ClassSuccess
		}
	}
	for _, kw := range alreadyKeywords {
		if strings.Contains(text, kw) {
			return ClassAlreadyDone
		}
	}
	return ClassUnrecognized
}
