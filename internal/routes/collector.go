package routes

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/logfields"
	"git.home.luguber.info/inful/prismicgen/internal/metrics"
	"git.home.luguber.info/inful/prismicgen/internal/prismic"
)

// PageSize is the number of documents requested per page.
const PageSize = prismic.MaxPageSize

// Querier runs one documents search page. *prismic.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, predicate string, opts prismic.QueryOptions) (*prismic.QueryPage, error)
}

// Resolver maps one document to its route path.
type Resolver func(doc prismic.Document) (string, error)

// Collector walks a content repository and produces its route list.
// A Collector holds no per-run state and may be reused; runs for the same
// build should not overlap.
type Collector struct {
	querier  Querier
	resolve  Resolver
	logger   *slog.Logger
	recorder metrics.Recorder
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithLogger sets the logger used for progress and warnings.
func WithLogger(l *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) CollectorOption {
	return func(c *Collector) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewCollector returns a Collector. Both querier and resolver are required.
func NewCollector(querier Querier, resolver Resolver, opts ...CollectorOption) (*Collector, error) {
	if querier == nil {
		return nil, errors.ConfigError("route collector requires a content repository client").Build()
	}
	if resolver == nil {
		return nil, errors.ConfigError("route collector requires a route resolver").Build()
	}
	c := &Collector{
		querier:  querier,
		resolve:  resolver,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Collect returns every route of the repository merged with extra, without
// duplicates. Pagination stops once the number of collected documents reaches
// the total reported by the first page.
func (c *Collector) Collect(ctx context.Context, extra Extra) ([]string, error) {
	start := time.Now()
	out, err := c.collect(ctx, extra)
	elapsed := time.Since(start)
	c.recorder.ObserveCollectionDuration(elapsed)

	switch {
	case err == nil:
		c.recorder.IncCollectionOutcome(metrics.OutcomeSuccess)
		c.recorder.SetRoutesCollected(len(out))
		c.logger.Info("Collected routes",
			logfields.Routes(len(out)),
			logfields.DurationMS(float64(elapsed.Milliseconds())))
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		c.recorder.IncCollectionOutcome(metrics.OutcomeCanceled)
	default:
		c.recorder.IncCollectionOutcome(metrics.OutcomeFailed)
	}
	return out, err
}

func (c *Collector) collect(ctx context.Context, extra Extra) ([]string, error) {
	paginated, err := c.walk(ctx)
	if err != nil {
		return nil, err
	}

	extraRoutes, err := ResolveExtra(ctx, extra)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.BuildError("failed to produce extra routes").WithCause(err).Build()
	}

	return Merge(paginated, extraRoutes), nil
}

// walk issues page queries sequentially and resolves every document.
func (c *Collector) walk(ctx context.Context) ([]string, error) {
	var acc []string
	total := -1

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		qStart := time.Now()
		res, err := c.querier.Query(ctx, "", prismic.QueryOptions{
			PageSize: PageSize,
			Page:     page,
			Lang:     prismic.AllLanguages,
		})
		c.recorder.ObservePageQuery(time.Since(qStart), err == nil && res != nil)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, errors.ContentError("content repository returned no page").
				WithContext("page", page).
				Build()
		}

		if total < 0 {
			total = res.TotalResultsSize
		} else if res.TotalResultsSize != total {
			c.logger.Debug("Repository total changed during collection; keeping first value",
				logfields.Page(page),
				logfields.Total(total),
				slog.Int("reported_total", res.TotalResultsSize))
		}

		for _, doc := range res.Results {
			route, err := c.resolve(doc)
			if err == nil && route == "" {
				err = stderrors.New("empty route")
			}
			if err != nil {
				return nil, errors.ResolverError("failed to resolve route for document").
					WithCause(err).
					WithContext("document_id", doc.ID).
					WithContext("document_type", doc.Type).
					Build()
			}
			acc = append(acc, route)
		}

		c.logger.Debug("Fetched page",
			logfields.Page(page),
			slog.Int("results", len(res.Results)),
			logfields.Total(total))

		if len(acc) >= total {
			break
		}
		if len(res.Results) == 0 {
			c.logger.Warn("Repository ran out of documents before reported total",
				logfields.Page(page),
				logfields.Total(total),
				slog.Int("collected", len(acc)))
			break
		}
	}

	return Merge(acc), nil
}
