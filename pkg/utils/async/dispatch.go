package async

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs handler in a new goroutine detached from the caller's
// cancellation, so background work like the learning observer survives the
// request that triggered it. The caller's logger is preserved and failures
// and panics are reported through errutil.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := goerr.New("panic in async handler", goerr.V("panic", r))
				_ = errutil.Handle(bgCtx, err, "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}
