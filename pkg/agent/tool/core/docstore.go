package core

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/agent"
	"github.com/hiraku-lab/mentor/pkg/agent/tool"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/service/docstore"
	"github.com/hiraku-lab/mentor/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// saveDocumentTool writes a named document. When the save replaces an
// existing document, the revision is handed to the edit observer: what got
// changed between versions often encodes feedback about the first attempt.
type saveDocumentTool struct {
	docs   docstore.Service
	userID types.UserID
	edits  EditObserver
}

func (t *saveDocumentTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "save_document",
		Description: "Save a text document under a name. Saving to an existing name overwrites it.",
		Parameters: map[string]*gollem.Parameter{
			"name": {
				Type:        gollem.TypeString,
				Description: "Document name, e.g. \"party-plan.md\"",
				Required:    true,
			},
			"content": {
				Type:        gollem.TypeString,
				Description: "Full document content",
				Required:    true,
			},
		},
	}
}

func (t *saveDocumentTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, _ := args["name"].(string)
	content, _ := args["content"].(string)
	if name == "" || content == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "name and content are required")
	}

	tool.Update(ctx, "Saving document "+name+"...")

	previous := ""
	if t.edits != nil {
		if existing, err := t.docs.Get(ctx, string(t.userID), name); err == nil && existing != nil {
			previous = existing.Content
		}
	}

	if err := t.docs.Save(ctx, string(t.userID), name, content); err != nil {
		return nil, goerr.Wrap(err, "failed to save document", goerr.V("name", name))
	}

	if t.edits != nil && previous != "" && previous != content {
		userID := t.userID
		async.Dispatch(ctx, func(ctx context.Context) error {
			return t.edits.ObserveEdit(ctx, userID, previous, content)
		})
	}

	return map[string]any{
		"name": name,
		"refs": []string{name},
	}, nil
}

// getDocumentTool retrieves a document by name
type getDocumentTool struct {
	docs   docstore.Service
	userID types.UserID
}

func (t *getDocumentTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_document",
		Description: "Retrieve a saved document by its exact name.",
		Parameters: map[string]*gollem.Parameter{
			"name": {
				Type:        gollem.TypeString,
				Description: "Document name",
				Required:    true,
			},
		},
	}
}

func (t *getDocumentTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, _ := args["name"].(string)
	if name == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "name is required")
	}

	tool.Update(ctx, "Loading document "+name+"...")

	doc, err := t.docs.Get(ctx, string(t.userID), name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("name", name))
	}
	if doc == nil {
		return map[string]any{
			"found": false,
			"name":  name,
		}, nil
	}

	return map[string]any{
		"found":   true,
		"name":    doc.Name,
		"content": doc.Content,
		"refs":    []string{doc.Name},
	}, nil
}

// listDocumentsTool lists saved document names
type listDocumentsTool struct {
	docs   docstore.Service
	userID types.UserID
}

func (t *listDocumentsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "list_documents",
		Description: "List saved document names, optionally filtered by prefix.",
		Parameters: map[string]*gollem.Parameter{
			"prefix": {
				Type:        gollem.TypeString,
				Description: "Name prefix to filter by",
			},
		},
	}
}

func (t *listDocumentsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	prefix, _ := args["prefix"].(string)

	tool.Update(ctx, "Listing documents...")

	names, err := t.docs.List(ctx, string(t.userID), prefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents", goerr.V("prefix", prefix))
	}

	return map[string]any{
		"count": len(names),
		"names": names,
	}, nil
}
