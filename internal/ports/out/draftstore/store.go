package draftstore

import (
	"context"
	"errors"
	"time"

	"github.com/iskrendev/insurance-portal/internal/domain"
)

// ErrNotFound indicates the draft does not exist or has expired.
var ErrNotFound = errors.New("draft not found")

// ErrInvalidDraft indicates a draft the store refuses to keep: no owner, or an
// expiry that is not after its update time.
var ErrInvalidDraft = errors.New("invalid draft")

// Key identifies a draft. Owner is the portal session id; drafts never cross sessions.
type Key struct {
	Owner   string
	DraftID domain.DraftID
}

// Record is a stored draft. Payload is opaque to the store.
type Record struct {
	Payload   []byte
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Store keeps form drafts between requests of the same screen.
type Store interface {
	Get(ctx context.Context, key Key) (Record, error)
	Put(ctx context.Context, key Key, rec Record) error
	Delete(ctx context.Context, key Key) error
}
