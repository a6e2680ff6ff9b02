package form

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/domain"
	clockport "github.com/iskrendev/insurance-portal/internal/ports/out/clock"
	"github.com/iskrendev/insurance-portal/internal/ports/out/draftstore"
)

// Drafts keeps form drafts between the requests of one screen.
type Drafts struct {
	store draftstore.Store
	clk   clockport.Clock
	log   *zap.Logger

	// TTL bounds how long an untouched draft survives.
	TTL time.Duration

	newDraftID func() domain.DraftID
}

func NewDrafts(store draftstore.Store, clk clockport.Clock, log *zap.Logger) *Drafts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Drafts{
		store: store,
		clk:   clk,
		log:   log,
		TTL:   2 * time.Hour,
		newDraftID: func() domain.DraftID {
			return domain.DraftID(uuid.NewString())
		},
	}
}

// Start stores f as a new draft of owner and returns its id.
func (d *Drafts) Start(ctx context.Context, owner string, f *Form) (domain.DraftID, error) {
	id := d.newDraftID()
	if err := d.Save(ctx, owner, id, f); err != nil {
		return "", err
	}
	return id, nil
}

// Open restores a stored draft. draftstore.ErrNotFound means the draft is gone.
func (d *Drafts) Open(ctx context.Context, owner string, id domain.DraftID) (*Form, error) {
	rec, err := d.store.Get(ctx, draftstore.Key{Owner: owner, DraftID: id})
	if err != nil {
		return nil, err
	}
	var draft Draft
	if err := json.Unmarshal(rec.Payload, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return Restore(draft, d.log), nil
}

func (d *Drafts) Save(ctx context.Context, owner string, id domain.DraftID, f *Form) error {
	b, err := json.Marshal(f.Draft())
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", id, err)
	}
	now := d.clk.Now().UTC()
	err = d.store.Put(ctx, draftstore.Key{Owner: owner, DraftID: id}, draftstore.Record{
		Payload:   b,
		UpdatedAt: now,
		ExpiresAt: now.Add(d.TTL),
	})
	if err != nil {
		return fmt.Errorf("store draft %s: %w", id, err)
	}
	return nil
}

// Discard drops a draft after the screen navigated away.
func (d *Drafts) Discard(ctx context.Context, owner string, id domain.DraftID) {
	if err := d.store.Delete(ctx, draftstore.Key{Owner: owner, DraftID: id}); err != nil {
		d.log.Warn("discarding draft failed", zap.String("draft", string(id)), zap.Error(err))
	}
}
