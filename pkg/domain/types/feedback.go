package types

import "github.com/m-mizutani/goerr/v2"

// FeedbackSignal classifies user feedback observed after an exchange
type FeedbackSignal string

const (
	SignalStronglyPositive FeedbackSignal = "strongly_positive"
	SignalStronglyNegative FeedbackSignal = "strongly_negative"
	SignalNeutral          FeedbackSignal = "neutral"
)

func (x FeedbackSignal) String() string { return string(x) }

// Validate checks if the FeedbackSignal is one of the known values
func (x FeedbackSignal) Validate() error {
	switch x {
	case SignalStronglyPositive, SignalStronglyNegative, SignalNeutral:
		return nil
	default:
		return goerr.New("invalid feedback signal", goerr.V("signal", string(x)))
	}
}

// IsStrong returns true when the signal warrants a learning update
// (if it also comes with an actionable pattern).
func (x FeedbackSignal) IsStrong() bool {
	return x == SignalStronglyPositive || x == SignalStronglyNegative
}
