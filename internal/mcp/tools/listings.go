package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// ListingReader loads the persisted listing sets
type ListingReader interface {
	LoadListingSet(ctx context.Context, kind domain.ListingSetKind) (domain.ListingSet, error)
}

// ListingSetsParams defines the arguments for the listing_sets tool
type ListingSetsParams struct {
	Kind string `json:"kind,omitempty" jsonschema:"all, previous, or new; empty returns every set"`
}

// ListingSetView is one listing set file
type ListingSetView struct {
	Kind     domain.ListingSetKind `json:"kind"`
	Present  bool                  `json:"present"`
	Count    int                   `json:"count"`
	Listings domain.ListingSet     `json:"listings,omitempty"`
}

// ListingSetsResult is the structured response of listing_sets
type ListingSetsResult struct {
	Sets []ListingSetView `json:"sets"`
}

type listingSetsTool struct {
	store  ListingReader
	logger *logging.Logger
}

// WithListingSets registers the listing_sets tool
func WithListingSets(store ListingReader) Option {
	return func(reg *registry) {
		handler := listingSetsTool{store: store, logger: reg.logger}
		addTool(reg, &sdkmcp.Tool{
			Name:        "listing_sets",
			Description: "Read the current, previous, and newly observed listing sets from the last run",
		}, handler.handle)
	}
}

func (t listingSetsTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params ListingSetsParams) (*sdkmcp.CallToolResult, any, error) {
	if t.store == nil {
		return nil, nil, fmt.Errorf("listing store not configured")
	}

	kinds := domain.ListingSetKinds()
	if params.Kind != "" {
		kind, err := domain.ParseListingSetKind(params.Kind)
		if err != nil {
			return nil, nil, err
		}
		kinds = []domain.ListingSetKind{kind}
	}

	result := ListingSetsResult{Sets: make([]ListingSetView, 0, len(kinds))}
	for _, kind := range kinds {
		set, err := t.store.LoadListingSet(ctx, kind)
		switch {
		case errors.Is(err, domain.ErrListingSetNotFound):
			result.Sets = append(result.Sets, ListingSetView{Kind: kind})
			continue
		case err != nil:
			t.logger.Error("listing_sets: load failed", "kind", kind, "err", err)
			return nil, nil, fmt.Errorf("load %s listings: %w", kind, err)
		}
		result.Sets = append(result.Sets, ListingSetView{Kind: kind, Present: true, Count: len(set), Listings: set})
	}

	return textResult(formatListingSets(result)), result, nil
}

func formatListingSets(result ListingSetsResult) string {
	var b strings.Builder
	b.WriteString("[listing_sets]")
	for _, s := range result.Sets {
		if !s.Present {
			fmt.Fprintf(&b, "\n• %s: absent", s.Kind)
			continue
		}
		fmt.Fprintf(&b, "\n• %s: %d listing(s)", s.Kind, s.Count)
	}
	return b.String()
}
