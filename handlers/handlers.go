package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type handler[I, O any] = func(context.Context, *I) (*O, error)

// handlerWithErrorHandler maps errors returned by handler with [MapError]
// and passes the result to do before returning it.
func handlerWithErrorHandler[I, O any](handler handler[I, O], details bool, do func(context.Context, error)) handler[I, O] {
	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err == nil {
			return o, nil
		}
		statusErr := MapError(err, details)
		if do != nil {
			do(ctx, statusErr)
		}
		return nil, statusErr
	}
}

func opErrors(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}

func opInfo(id, summary string) func(*huma.Operation) {
	return func(o *huma.Operation) { o.OperationID, o.Summary = id, summary }
}

func opStatus(code int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.DefaultStatus = code }
}
