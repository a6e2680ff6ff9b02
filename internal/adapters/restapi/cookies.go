package restapi

import (
	"context"
	"net/http"
)

type cookiesKey struct{}

// WithCookies returns a copy of ctx whose API calls carry cookies. The portal uses
// it to forward the caller's backend session.
func WithCookies(ctx context.Context, cookies ...*http.Cookie) context.Context {
	if len(cookies) == 0 {
		return ctx
	}
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

func cookiesFrom(ctx context.Context) []*http.Cookie {
	cs, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return cs
}
