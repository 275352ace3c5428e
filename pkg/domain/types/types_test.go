package types_test

import (
	"testing"

	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestRole(t *testing.T) {
	t.Run("valid roles", func(t *testing.T) {
		gt.NoError(t, types.RoleUser.Validate())
		gt.NoError(t, types.RoleAssistant.Validate())
	})

	t.Run("invalid role", func(t *testing.T) {
		gt.Error(t, types.Role("system").Validate())
		gt.Error(t, types.Role("").Validate())
	})
}

func TestFeedbackSignal(t *testing.T) {
	t.Run("strong signals", func(t *testing.T) {
		gt.Bool(t, types.SignalStronglyPositive.IsStrong()).True()
		gt.Bool(t, types.SignalStronglyNegative.IsStrong()).True()
		gt.Bool(t, types.SignalNeutral.IsStrong()).False()
	})

	t.Run("invalid signal", func(t *testing.T) {
		gt.Error(t, types.FeedbackSignal("positive").Validate())
	})
}

func TestConversationID(t *testing.T) {
	t.Run("generated IDs are unique", func(t *testing.T) {
		a := types.NewConversationID()
		b := types.NewConversationID()
		gt.Value(t, a).NotEqual(b)
		gt.String(t, a.String()).NotEqual("")
	})
}

func TestUserID(t *testing.T) {
	t.Run("empty user ID is invalid", func(t *testing.T) {
		gt.Error(t, types.UserID("").Validate())
		gt.NoError(t, types.UserID("U0123456789").Validate())
	})
}
