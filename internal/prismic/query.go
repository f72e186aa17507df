package prismic

import (
	"context"
	"net/url"
	"strconv"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
)

// API fetches the repository description from the endpoint root.
func (c *Client) API(ctx context.Context) (*API, error) {
	req, err := c.newRequest(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	var api API
	if err := c.doRequest(req, &api); err != nil {
		return nil, err
	}
	return &api, nil
}

// MasterRef returns the ref queries run against. A ref pinned with WithRef
// wins; otherwise the master ref is looked up once and reused, so every page
// of a search sees the same release.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	ref := c.ref
	c.mu.Unlock()
	if ref != "" {
		return ref, nil
	}

	api, err := c.API(ctx)
	if err != nil {
		return "", err
	}
	for _, r := range api.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.ref = r.Ref
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", errors.ContentError("content repository advertises no master ref").
		WithContext("endpoint", c.Endpoint()).
		Build()
}

// Query runs a documents search. An empty predicate returns all documents.
func (c *Client) Query(ctx context.Context, predicate string, opts QueryOptions) (*QueryPage, error) {
	ref, err := c.MasterRef(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("ref", ref)
	if predicate != "" {
		q.Set("q", predicate)
	}
	if opts.PageSize > 0 {
		pageSize := opts.PageSize
		if pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Lang != "" {
		q.Set("lang", opts.Lang)
	}
	if opts.Orderings != "" {
		q.Set("orderings", opts.Orderings)
	}

	req, err := c.newRequest(ctx, "documents/search", q)
	if err != nil {
		return nil, err
	}
	var page QueryPage
	if err := c.doRequest(req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
