package api

import "context"

type ctxKey string

const ctxKeyAdmin ctxKey = "admin"

func WithAdmin(ctx context.Context, a *AdminSession) context.Context {
	return context.WithValue(ctx, ctxKeyAdmin, a)
}

func AdminFromContext(ctx context.Context) *AdminSession {
	v := ctx.Value(ctxKeyAdmin)
	if v == nil {
		return nil
	}
	a, _ := v.(*AdminSession)
	return a
}
