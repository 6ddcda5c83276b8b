package wrap

import (
	"context"
)

// Error wraps an error with the current LogCtx from the context.
// ErrorCtx later restores the outermost wrapped LogCtx.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	c, _ := ctx.Value(LogCtxKey).(LogCtx)
	return &errorWithLogCtx{
		err:    err,
		logCtx: c,
	}
}
