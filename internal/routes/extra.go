package routes

import (
	"context"

	"git.home.luguber.info/inful/prismicgen/internal/util/sets"
)

// Extra is a source of routes merged in after pagination. It is either
// StaticRoutes or a RouteProducer; a nil Extra contributes nothing.
type Extra interface {
	resolve(ctx context.Context) ([]string, error)
}

// StaticRoutes is a fixed list of extra routes.
type StaticRoutes []string

func (s StaticRoutes) resolve(context.Context) ([]string, error) {
	return []string(s), nil
}

// RouteProducer computes extra routes on demand. It is invoked once per
// collection and may block.
type RouteProducer func(ctx context.Context) ([]string, error)

func (p RouteProducer) resolve(ctx context.Context) ([]string, error) {
	if p == nil {
		return nil, nil
	}
	return p(ctx)
}

// ResolveExtra evaluates extra, invoking it if it is a producer.
func ResolveExtra(ctx context.Context, extra Extra) ([]string, error) {
	if extra == nil {
		return nil, nil
	}
	return extra.resolve(ctx)
}

// Merge returns the ordered union of lists: each route appears once, at the
// position of its first occurrence.
func Merge(lists ...[]string) []string {
	return sets.Union(lists...)
}
