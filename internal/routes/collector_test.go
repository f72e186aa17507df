package routes

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/metrics"
	"git.home.luguber.info/inful/prismicgen/internal/prismic"
)

// fakeQuerier serves pre-built pages and records every call.
type fakeQuerier struct {
	pages  []prismic.QueryPage
	failOn int
	err    error
	calls  []prismic.QueryOptions
	preds  []string
}

func (f *fakeQuerier) Query(_ context.Context, predicate string, opts prismic.QueryOptions) (*prismic.QueryPage, error) {
	f.calls = append(f.calls, opts)
	f.preds = append(f.preds, predicate)
	if f.failOn == opts.Page {
		return nil, f.err
	}
	if opts.Page < 1 || opts.Page > len(f.pages) {
		return &prismic.QueryPage{Page: opts.Page}, nil
	}
	p := f.pages[opts.Page-1]
	return &p, nil
}

// repositoryOf splits n documents with ids 1..n into pages of size.
func repositoryOf(n, size int) *fakeQuerier {
	f := &fakeQuerier{}
	for start := 0; start < n; start += size {
		var docs []prismic.Document
		for i := start; i < start+size && i < n; i++ {
			docs = append(docs, prismic.Document{ID: fmt.Sprint(i + 1), Type: "page"})
		}
		f.pages = append(f.pages, prismic.QueryPage{
			Page:             len(f.pages) + 1,
			ResultsSize:      len(docs),
			TotalResultsSize: n,
			Results:          docs,
		})
	}
	return f
}

func docRoute(doc prismic.Document) (string, error) {
	return "/doc/" + doc.ID, nil
}

// recordingRecorder captures the metrics a collection emits.
type recordingRecorder struct {
	pageQueries []bool
	durations   int
	routes      int
	outcomes    []metrics.OutcomeLabel
}

func (r *recordingRecorder) ObservePageQuery(_ time.Duration, ok bool) {
	r.pageQueries = append(r.pageQueries, ok)
}
func (r *recordingRecorder) ObserveCollectionDuration(time.Duration) { r.durations++ }
func (r *recordingRecorder) SetRoutesCollected(n int)                { r.routes = n }
func (r *recordingRecorder) IncCollectionOutcome(o metrics.OutcomeLabel) {
	r.outcomes = append(r.outcomes, o)
}

func TestNewCollector_RequiresCollaborators(t *testing.T) {
	_, err := NewCollector(nil, docRoute)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))

	_, err = NewCollector(&fakeQuerier{}, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
}

func TestCollect_ConcreteScenario(t *testing.T) {
	q := &fakeQuerier{pages: []prismic.QueryPage{
		{Page: 1, ResultsSize: 2, TotalResultsSize: 3, Results: []prismic.Document{{ID: "1"}, {ID: "2"}}},
		{Page: 2, ResultsSize: 1, TotalResultsSize: 3, Results: []prismic.Document{{ID: "3"}}},
	}}
	c, err := NewCollector(q, docRoute)
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), StaticRoutes{"/about"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/doc/1", "/doc/2", "/doc/3", "/about"}, got)
	assert.Len(t, q.calls, 2)
}

func TestCollect_QueryOptions(t *testing.T) {
	q := repositoryOf(150, 100)
	c, err := NewCollector(q, docRoute)
	require.NoError(t, err)

	_, err = c.Collect(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, q.calls, 2)
	for i, opts := range q.calls {
		assert.Equal(t, i+1, opts.Page)
		assert.Equal(t, 100, opts.PageSize)
		assert.Equal(t, "*", opts.Lang)
		assert.Empty(t, q.preds[i])
	}
}

func TestCollect_PaginationCompleteness(t *testing.T) {
	tests := []struct {
		docs      int
		wantPages int
	}{
		{docs: 1, wantPages: 1},
		{docs: 99, wantPages: 1},
		{docs: 100, wantPages: 1},
		{docs: 101, wantPages: 2},
		{docs: 250, wantPages: 3},
		{docs: 1000, wantPages: 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d documents", tt.docs), func(t *testing.T) {
			q := repositoryOf(tt.docs, PageSize)
			c, err := NewCollector(q, docRoute)
			require.NoError(t, err)

			got, err := c.Collect(context.Background(), nil)
			require.NoError(t, err)
			assert.Len(t, got, tt.docs)
			assert.Len(t, q.calls, tt.wantPages)
		})
	}
}

func TestCollect_EmptyRepository(t *testing.T) {
	q := &fakeQuerier{pages: []prismic.QueryPage{{Page: 1}}}
	c, err := NewCollector(q, docRoute)
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Len(t, q.calls, 1)
}

func TestCollect_DeduplicatesAcrossPages(t *testing.T) {
	q := repositoryOf(250, 100)
	byBucket := func(doc prismic.Document) (string, error) {
		// 250 documents collapse onto 3 routes.
		var n int
		_, _ = fmt.Sscan(doc.ID, &n)
		return fmt.Sprintf("/bucket/%d", n%3), nil
	}
	c, err := NewCollector(q, byBucket)
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), StaticRoutes{"/bucket/0", "/bucket/1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/bucket/1", "/bucket/2", "/bucket/0"}, got)
}

func TestCollect_ProducerExtras(t *testing.T) {
	q := &fakeQuerier{pages: []prismic.QueryPage{{
		Page: 1, ResultsSize: 2, TotalResultsSize: 2,
		Results: []prismic.Document{{ID: "a"}, {ID: "c"}},
	}}}
	resolver := func(doc prismic.Document) (string, error) { return "/" + doc.ID, nil }
	c, err := NewCollector(q, resolver)
	require.NoError(t, err)

	calls := 0
	producer := RouteProducer(func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"/a", "/b"}, ctx.Err()
	})

	got, err := c.Collect(context.Background(), producer)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/a", "/b", "/c"}, got)
	assert.Equal(t, 1, calls)
}

func TestCollect_ProducerFailure(t *testing.T) {
	q := repositoryOf(1, 100)
	c, err := NewCollector(q, docRoute)
	require.NoError(t, err)

	boom := stderrors.New("boom")
	got, err := c.Collect(context.Background(), RouteProducer(func(context.Context) ([]string, error) {
		return nil, boom
	}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, errors.CategoryBuild, errors.GetCategory(err))
	assert.Nil(t, got)
}

func TestCollect_PropagatesQueryFailure(t *testing.T) {
	queryErr := errors.NetworkError("connection reset").Build()
	q := repositoryOf(250, 100)
	q.failOn = 2
	q.err = queryErr
	rec := &recordingRecorder{}
	c, err := NewCollector(q, docRoute, WithRecorder(rec))
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), StaticRoutes{"/about"})
	require.Error(t, err)
	assert.Same(t, queryErr, err)
	assert.Nil(t, got)
	assert.Len(t, q.calls, 2)
	assert.Equal(t, []bool{true, false}, rec.pageQueries)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeFailed}, rec.outcomes)
}

func TestCollect_ResolverFailureAborts(t *testing.T) {
	q := repositoryOf(3, 100)
	resolver := func(doc prismic.Document) (string, error) {
		if doc.ID == "2" {
			return "", stderrors.New("no rule for type")
		}
		return "/doc/" + doc.ID, nil
	}
	c, err := NewCollector(q, resolver)
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, got)

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryResolver, ce.Category())
	id, _ := ce.Context().GetString("document_id")
	assert.Equal(t, "2", id)
}

func TestCollect_EmptyRouteIsResolverError(t *testing.T) {
	q := repositoryOf(1, 100)
	c, err := NewCollector(q, func(prismic.Document) (string, error) { return "", nil })
	require.NoError(t, err)

	_, err = c.Collect(context.Background(), nil)
	assert.Equal(t, errors.CategoryResolver, errors.GetCategory(err))
}

func TestCollect_SnapshotsFirstTotal(t *testing.T) {
	// The total grows while walking; the walk still ends at the first total.
	q := repositoryOf(250, 100)
	q.pages[1].TotalResultsSize = 400
	q.pages[2].TotalResultsSize = 400
	c, err := NewCollector(q, docRoute)
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 250)
	assert.Len(t, q.calls, 3)
}

func TestCollect_StopsOnShortRepository(t *testing.T) {
	// First page claims 300 documents but only 150 exist.
	q := repositoryOf(150, 100)
	q.pages[0].TotalResultsSize = 300
	c, err := NewCollector(q, docRoute)
	require.NoError(t, err)

	got, err := c.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 150)
	assert.Len(t, q.calls, 3, "third page comes back empty and ends the walk")
}

func TestCollect_CanceledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := repositoryOf(250, 100)
	resolver := func(doc prismic.Document) (string, error) {
		if doc.ID == "100" {
			cancel()
		}
		return "/doc/" + doc.ID, nil
	}
	rec := &recordingRecorder{}
	c, err := NewCollector(q, resolver, WithRecorder(rec))
	require.NoError(t, err)

	_, err = c.Collect(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, q.calls, 1)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeCanceled}, rec.outcomes)
}

func TestCollect_RecordsSuccessMetrics(t *testing.T) {
	q := repositoryOf(120, 100)
	rec := &recordingRecorder{}
	c, err := NewCollector(q, docRoute, WithRecorder(rec))
	require.NoError(t, err)

	_, err = c.Collect(context.Background(), StaticRoutes{"/"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, rec.pageQueries)
	assert.Equal(t, 1, rec.durations)
	assert.Equal(t, 121, rec.routes)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeSuccess}, rec.outcomes)
}

func TestCollector_Reusable(t *testing.T) {
	q := repositoryOf(2, 100)
	c, err := NewCollector(q, docRoute)
	require.NoError(t, err)

	first, err := c.Collect(context.Background(), nil)
	require.NoError(t, err)
	second, err := c.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
