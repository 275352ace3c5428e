package agent_test

import (
	"testing"

	"github.com/hiraku-lab/mentor/pkg/agent"
	"github.com/m-mizutani/gt"
)

func TestParseDecision_Action(t *testing.T) {
	t.Run("action with JSON args", func(t *testing.T) {
		d := agent.ParseDecision("ACTION: search_mail\nARGS: {\"query\": \"venue contract\", \"max_results\": 5}")

		gt.Value(t, d.Kind).Equal(agent.DecisionAction)
		gt.Value(t, d.ToolName).Equal("search_mail")
		gt.Value(t, d.ToolArgs["query"]).Equal("venue contract")
		gt.Value(t, d.ToolArgs["max_results"]).Equal(float64(5))
	})

	t.Run("action without args", func(t *testing.T) {
		d := agent.ParseDecision("ACTION: clear_task_brief")

		gt.Value(t, d.Kind).Equal(agent.DecisionAction)
		gt.Value(t, d.ToolName).Equal("clear_task_brief")
		gt.Value(t, len(d.ToolArgs)).Equal(0)
	})

	t.Run("multiline JSON args", func(t *testing.T) {
		raw := "ACTION: create_mail_draft\nARGS: {\n  \"to\": \"john@example.com\",\n  \"subject\": \"Deadline\",\n  \"body\": \"Hi John,\\nthe deadline moved.\"\n}"
		d := agent.ParseDecision(raw)

		gt.Value(t, d.Kind).Equal(agent.DecisionAction)
		gt.Value(t, d.ToolArgs["to"]).Equal("john@example.com")
	})

	t.Run("leading thought text is ignored", func(t *testing.T) {
		raw := "I should look up the email first.\nACTION: search_mail\nARGS: {\"query\": \"deadline\"}"
		d := agent.ParseDecision(raw)

		gt.Value(t, d.Kind).Equal(agent.DecisionAction)
		gt.Value(t, d.ToolName).Equal("search_mail")
	})
}

func TestParseDecision_FinalAnswer(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		d := agent.ParseDecision("FINAL_ANSWER: Done, the draft is ready for your review.")

		gt.Value(t, d.Kind).Equal(agent.DecisionFinalAnswer)
		gt.Value(t, d.Answer).Equal("Done, the draft is ready for your review.")
	})

	t.Run("multi line answer is preserved", func(t *testing.T) {
		d := agent.ParseDecision("FINAL_ANSWER: Here is the draft:\n\nHi John,\nthe deadline moved to Friday.")

		gt.Value(t, d.Kind).Equal(agent.DecisionFinalAnswer)
		gt.String(t, d.Answer).Contains("Hi John,")
	})
}

func TestParseDecision_Focus(t *testing.T) {
	t.Run("focus with action", func(t *testing.T) {
		d := agent.ParseDecision("FOCUS: replying to John about the deadline\nACTION: search_mail\nARGS: {\"query\": \"john deadline\"}")

		gt.Value(t, d.Kind).Equal(agent.DecisionAction)
		gt.Value(t, d.Focus).Equal("replying to John about the deadline")
	})

	t.Run("focus with final answer", func(t *testing.T) {
		d := agent.ParseDecision("FOCUS: party planning\nFINAL_ANSWER: The invitations are drafted.")

		gt.Value(t, d.Kind).Equal(agent.DecisionFinalAnswer)
		gt.Value(t, d.Focus).Equal("party planning")
	})

	t.Run("no focus leaves it empty", func(t *testing.T) {
		d := agent.ParseDecision("FINAL_ANSWER: ok")
		gt.Value(t, d.Focus).Equal("")
	})
}

func TestParseDecision_Malformed(t *testing.T) {
	t.Run("neither shape", func(t *testing.T) {
		d := agent.ParseDecision("I think we should probably search the mailbox.")

		gt.Value(t, d.Kind).Equal(agent.DecisionMalformed)
		gt.String(t, d.ParseError).NotEqual("")
		gt.Value(t, d.Raw).Equal("I think we should probably search the mailbox.")
	})

	t.Run("action without tool name", func(t *testing.T) {
		d := agent.ParseDecision("ACTION:")
		gt.Value(t, d.Kind).Equal(agent.DecisionMalformed)
	})

	t.Run("invalid args JSON", func(t *testing.T) {
		d := agent.ParseDecision("ACTION: search_mail\nARGS: {query: unquoted}")
		gt.Value(t, d.Kind).Equal(agent.DecisionMalformed)
		gt.String(t, d.ParseError).Contains("JSON")
	})

	t.Run("empty response", func(t *testing.T) {
		d := agent.ParseDecision("")
		gt.Value(t, d.Kind).Equal(agent.DecisionMalformed)
	})
}
