package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/domain"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// Status is the lifecycle state of the authentication context.
type Status int

const (
	Unresolved Status = iota
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unresolved"
	}
}

// Context is who is using the portal. User is set only when Authenticated.
type Context struct {
	Status Status
	User   domain.User
}

func (c Context) Authenticated() bool { return c.Status == Authenticated }

// AnonymousLogin is the login the backend reports for callers without a session.
const AnonymousLogin = "anonymous"

// Resolver turns an unresolved context into an authenticated or anonymous one.
type Resolver interface {
	Resolve(ctx context.Context) Context
}

// APIResolver asks the insurance API who the caller is.
type APIResolver struct {
	api insuranceapi.Client
	log *zap.Logger
}

func NewAPIResolver(api insuranceapi.Client, log *zap.Logger) *APIResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIResolver{api: api, log: log}
}

// Resolve never fails: any error resolves to Anonymous. Unexpected errors are logged.
func (r *APIResolver) Resolve(ctx context.Context) Context {
	u, err := r.api.Me(ctx)
	if err != nil {
		if !errors.Is(err, insuranceapi.ErrUnauthenticated) {
			r.log.Error("resolving current user failed", zap.Error(err))
		}
		return Context{Status: Anonymous}
	}
	if u.Login == "" || u.Login == AnonymousLogin {
		return Context{Status: Anonymous}
	}
	return Context{Status: Authenticated, User: u}
}

// DevResolver authenticates every caller as a fixed user. For local development only.
type DevResolver struct {
	User domain.User
}

func (r DevResolver) Resolve(context.Context) Context {
	return Context{Status: Authenticated, User: r.User}
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying c.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the authentication context of ctx, or an Unresolved one.
func FromContext(ctx context.Context) Context {
	c, ok := ctx.Value(ctxKey{}).(Context)
	if !ok {
		return Context{Status: Unresolved}
	}
	return c
}
