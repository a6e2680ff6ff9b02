package web

import "context"

type sessionKey struct{}

// WithSession stores the portal session id. Drafts are scoped to it.
func WithSession(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sid)
}

func SessionFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKey{}).(string)
	return v, ok && v != ""
}
