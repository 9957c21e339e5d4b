package core

const (
	BrokerName      = "ctxbroker"
	BrokerUserAgent = "ctxbroker/0.1"
	BrokerVersion   = "0.1.0"

	DefaultUserID = "default"
)

// Intents produced by the extractor. IntentManual marks contexts set by hand.
const (
	IntentStatement     = "statement"
	IntentQuestion      = "question"
	IntentGreeting      = "greeting"
	IntentFarewell      = "farewell"
	IntentRequest       = "request"
	IntentCommand       = "command"
	IntentOpinion       = "opinion"
	IntentPreference    = "preference"
	IntentClarification = "clarification"
	IntentAgreement     = "agreement"
	IntentDisagreement  = "disagreement"
	IntentGratitude     = "gratitude"
	IntentApology       = "apology"
	IntentManual        = "manual"
)

// Capabilities recognised by the broker's cue table.
const (
	CapabilityTalk  = "talk"
	CapabilityThink = "think"
	CapabilityLearn = "learn"
)

// UserIDOrDefault maps an empty user id to DefaultUserID.
func UserIDOrDefault(userID string) string {
	if userID == "" {
		return DefaultUserID
	}
	return userID
}
