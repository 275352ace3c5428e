package tool

import "context"

// UpdateFunc receives progress messages emitted by tools while they run.
// The Slack gateway points it at the thread trace message; the local REPL
// prints the steps inline.
type UpdateFunc func(ctx context.Context, message string)

type contextKey struct{}

// WithUpdate attaches fn to the context so tools further down the run can
// report progress through Update
func WithUpdate(ctx context.Context, fn UpdateFunc) context.Context {
	return context.WithValue(ctx, contextKey{}, fn)
}

// Update reports one progress message to the run's UpdateFunc. Without one
// in ctx it does nothing, so tools call it unconditionally.
func Update(ctx context.Context, message string) {
	if fn, ok := ctx.Value(contextKey{}).(UpdateFunc); ok {
		fn(ctx, message)
	}
}
