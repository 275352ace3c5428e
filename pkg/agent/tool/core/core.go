package core

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/service/docstore"
	"github.com/hiraku-lab/mentor/pkg/service/mailbox"
	"github.com/m-mizutani/gollem"
)

// BriefManager is the slice of the task-brief use case the tools need
type BriefManager interface {
	Set(ctx context.Context, userID types.UserID, title, brief string) error
	Clear(ctx context.Context, userID types.UserID) error
}

// EditObserver receives before/after document content when a save replaces
// an existing document, so revisions can be mined for corrective feedback
type EditObserver interface {
	ObserveEdit(ctx context.Context, userID types.UserID, original, edited string) error
}

// New builds the tool set for one agent run. Mail and document tools are
// only included when the corresponding service is configured.
func New(repo interfaces.Repository, userID types.UserID, briefs BriefManager, mail mailbox.Service, docs docstore.Service, edits EditObserver) []gollem.Tool {
	tools := []gollem.Tool{
		&rememberFactTool{repo: repo, userID: userID},
		&updateFactTool{repo: repo, userID: userID},
	}

	if briefs != nil {
		tools = append(tools,
			&setTaskBriefTool{briefs: briefs, userID: userID},
			&clearTaskBriefTool{briefs: briefs, userID: userID},
		)
	}

	if mail != nil {
		tools = append(tools,
			&searchMailTool{mail: mail},
			&readMailTool{mail: mail},
			&createMailDraftTool{mail: mail},
			&sendMailDraftTool{mail: mail},
		)
	}

	if docs != nil {
		tools = append(tools,
			&saveDocumentTool{docs: docs, userID: userID, edits: edits},
			&getDocumentTool{docs: docs, userID: userID},
			&listDocumentsTool{docs: docs, userID: userID},
		)
	}

	return tools
}
