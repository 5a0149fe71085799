package tenant

import (
	"context"
)

// Lookup is the tenant store as the resolver sees it. FindByID returns
// ErrNotFound for a missing id.
type Lookup interface {
	FindBySlug(ctx context.Context, slug string) ([]Tenant, error)
	FindByID(ctx context.Context, id string) (*Tenant, error)
}

// Resolution is either a found tenant or not-found.
type Resolution struct {
	tenant Tenant
	found  bool
}

func Found(t Tenant) Resolution { return Resolution{tenant: t, found: true} }

func NotFound() Resolution { return Resolution{} }

func (r Resolution) Found() bool { return r.found }

func (r Resolution) Tenant() Tenant { return r.tenant }

type Resolver struct {
	Lookup Lookup
}

func NewResolver(l Lookup) *Resolver {
	return &Resolver{Lookup: l}
}

// Resolve looks a slug up case-insensitively. A lookup with no match is
// NotFound, not an error; errors are store failures only. Should the store
// ever hold several matches the first one wins.
func (r *Resolver) Resolve(ctx context.Context, slug string) (Resolution, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return NotFound(), nil
	}

	matches, err := r.Lookup.FindBySlug(ctx, slug)
	if err != nil {
		return NotFound(), err
	}
	if len(matches) == 0 {
		return NotFound(), nil
	}
	return Found(matches[0]), nil
}

func (r *Resolver) ByID(ctx context.Context, id string) (Resolution, error) {
	if id == "" {
		return NotFound(), nil
	}
	t, err := r.Lookup.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return NotFound(), nil
		}
		return NotFound(), err
	}
	return Found(*t), nil
}
