package authctx

import (
	"context"
)

type ctxKey string

const actorKey ctxKey = "actor"

// WithActor records who is performing an admin change (a uid, or "cli").
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func Actor(ctx context.Context) (string, bool) {
	v := ctx.Value(actorKey)
	actor, ok := v.(string)
	return actor, ok && actor != ""
}
