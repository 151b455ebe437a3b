package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// ListingStore persists the listing-set generations
type ListingStore interface {
	LoadListingSet(ctx context.Context, kind domain.ListingSetKind) (domain.ListingSet, error)
	SaveListingSet(ctx context.Context, kind domain.ListingSetKind, set domain.ListingSet) error
}

// Tracker computes the newly observed listings across runs
type Tracker struct {
	store  ListingStore
	logger *logging.Logger
}

// New builds a Tracker over store
func New(store ListingStore, logger *logging.Logger) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("tracker: listing store is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{store: store, logger: logger}, nil
}

// Diff returns the entries of current whose job id is absent from the
// previous generation. Without a previous generation every entry is new.
//
// current is stored as the "all" generation and the result as the "new"
// generation; the previous generation is then overwritten with current as the
// last step, even when an earlier step failed.
func (t *Tracker) Diff(ctx context.Context, current domain.ListingSet) (domain.ListingSet, error) {
	var errs []error

	if err := t.store.SaveListingSet(ctx, domain.ListingSetAll, current); err != nil {
		errs = append(errs, err)
	}

	fresh, err := t.compute(ctx, current)
	if err != nil {
		errs = append(errs, err)
	} else if err := t.store.SaveListingSet(ctx, domain.ListingSetNew, fresh); err != nil {
		errs = append(errs, err)
	}

	if err := t.store.SaveListingSet(ctx, domain.ListingSetPrevious, current); err != nil {
		errs = append(errs, fmt.Errorf("tracker: rotate previous: %w", err))
	}

	if len(errs) > 0 {
		return fresh, errors.Join(errs...)
	}

	t.logger.Info("listing diff computed", "current", len(current), "new", len(fresh))
	return fresh, nil
}

func (t *Tracker) compute(ctx context.Context, current domain.ListingSet) (domain.ListingSet, error) {
	previous, err := t.store.LoadListingSet(ctx, domain.ListingSetPrevious)
	if errors.Is(err, domain.ErrListingSetNotFound) {
		t.logger.Info("no previous listing set, treating every listing as new")
		return onlyIdentified(current), nil
	}
	if err != nil {
		return nil, fmt.Errorf("tracker: load previous: %w", err)
	}

	seen := previous.IDs()
	fresh := make(domain.ListingSet, 0)
	for _, l := range current {
		if !l.HasID() {
			continue
		}
		if _, ok := seen[l.JobID]; ok {
			continue
		}
		fresh = append(fresh, l)
	}
	return fresh, nil
}

func onlyIdentified(set domain.ListingSet) domain.ListingSet {
	out := make(domain.ListingSet, 0, len(set))
	for _, l := range set {
		if l.HasID() {
			out = append(out, l)
		}
	}
	return out
}
