package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/traslados/commute-ranker/pkg/batch"
	"github.com/traslados/commute-ranker/pkg/logging"
	"github.com/traslados/commute-ranker/pkg/matrix"
)

// Ranker runs ranking queries against a Fetcher.
// It holds no per-run state and is safe for concurrent use.
type Ranker struct {
	fetcher Fetcher
	builder matrix.Builder
	logger  zerolog.Logger
}

// New creates a Ranker that issues requests built by builder through fetcher.
func New(fetcher Fetcher, builder matrix.Builder) *Ranker {
	return &Ranker{
		fetcher: fetcher,
		builder: builder,
		logger:  logging.NewLogger(logging.ComponentRanker),
	}
}

// FetchAndRank resolves every destination of q and returns them ordered by
// travel time. Batches are fetched sequentially and ctx is checked before
// each one. On any fatal error the result is nil.
func (r *Ranker) FetchAndRank(ctx context.Context, q Query) (*Result, error) {
	q, err := normalize(q)
	if err != nil {
		runsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.logger.With().
		Str("run_id", runID).
		Str("mode", q.Mode.String()).
		Logger()

	start := time.Now()
	specs := BuildSpecs(q.Names, q.AddressSuffix)
	batches := batch.Split(specs, q.BatchSize)

	logger.Debug().
		Int("destinations", len(specs)).
		Int("batches", len(batches)).
		Msg("Starting ranking run")

	res := &Result{
		Outcomes: make([]Outcome, 0, len(specs)),
		Batches:  len(batches),
	}

	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			runsTotal.WithLabelValues("cancelled").Inc()
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}

		outcomes, dropped, err := r.fetchBatch(ctx, i, b, q)
		if err != nil {
			runsTotal.WithLabelValues("failed").Inc()
			logger.Error().
				Err(err).
				Int("batch", i).
				Int("batches", len(batches)).
				Msg("Ranking run failed")
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}

		for _, d := range dropped {
			logger.Warn().
				Str("name", d.Name).
				Str("status", d.Status).
				Msg("Destination dropped")
			droppedTotal.WithLabelValues(d.Status).Inc()
		}

		res.Outcomes = append(res.Outcomes, outcomes...)
		res.Dropped = append(res.Dropped, dropped...)
	}

	Sort(res.Outcomes)

	runsTotal.WithLabelValues("ok").Inc()
	logger.Info().
		Int("ranked", len(res.Outcomes)).
		Int("dropped", len(res.Dropped)).
		Int("batches", res.Batches).
		Dur("duration", time.Since(start)).
		Msg("Ranking run complete")

	return res, nil
}

// fetchBatch issues the request for one batch and converts its elements.
func (r *Ranker) fetchBatch(ctx context.Context, index int, specs []DestinationSpec, q Query) ([]Outcome, []Dropped, error) {
	addresses := make([]string, len(specs))
	for i, s := range specs {
		addresses[i] = s.Address
	}

	req := r.builder.Build(q.Origin, addresses, q.Mode, q.Credential)
	batchesTotal.Inc()

	r.logger.Debug().
		Int("batch", index).
		Int("size", len(specs)).
		Str("url", req.Redacted()).
		Msg("Fetching batch")

	resp, err := r.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	if !resp.OK() {
		return nil, nil, &APIError{
			Status:  resp.Status,
			Message: resp.ErrorMessage,
			Payload: resp.Raw,
		}
	}

	if len(resp.Rows) == 0 {
		return nil, nil, &AlignmentError{Expected: len(specs), Got: 0}
	}
	elements := resp.Rows[0].Elements
	if len(elements) != len(specs) {
		return nil, nil, &AlignmentError{Expected: len(specs), Got: len(elements)}
	}

	// destination_addresses is optional; use it only when it lines up.
	resolved := resp.DestinationAddresses
	if len(resolved) != len(specs) {
		resolved = nil
	}

	outcomes := make([]Outcome, 0, len(specs))
	var dropped []Dropped
	for i, el := range elements {
		spec := specs[i]
		if !el.OK() {
			dropped = append(dropped, Dropped{
				Name:    spec.Name,
				Address: spec.Address,
				Status:  el.Status,
			})
			continue
		}

		o := Outcome{
			Name:            spec.Name,
			Address:         spec.Address,
			DurationSeconds: el.Duration.Value,
			DurationText:    el.Duration.Text,
			DistanceMeters:  el.Distance.Value,
			DistanceText:    el.Distance.Text,
		}
		if resolved != nil {
			o.ResolvedAddress = resolved[i]
		}
		outcomes = append(outcomes, o)
	}

	return outcomes, dropped, nil
}

// normalize validates q and fills defaults.
func normalize(q Query) (Query, error) {
	if strings.TrimSpace(q.Credential) == "" {
		return q, fmt.Errorf("%w: credential is required", ErrInvalidQuery)
	}
	if strings.TrimSpace(q.Origin) == "" {
		return q, fmt.Errorf("%w: origin is required", ErrInvalidQuery)
	}
	if len(q.Names) == 0 {
		return q, fmt.Errorf("%w: at least one destination is required", ErrInvalidQuery)
	}
	for i, name := range q.Names {
		if strings.TrimSpace(name) == "" {
			return q, fmt.Errorf("%w: destination %d is empty", ErrInvalidQuery, i)
		}
	}

	switch {
	case q.BatchSize == 0:
		q.BatchSize = DefaultBatchSize
	case q.BatchSize < 0 || q.BatchSize > matrix.MaxDestinations:
		return q, fmt.Errorf("%w: batch size must be between 1 and %d (got %d)",
			ErrInvalidQuery, matrix.MaxDestinations, q.BatchSize)
	}

	if q.Mode == "" {
		q.Mode = matrix.ModeDriving
	}
	if !q.Mode.Valid() {
		return q, fmt.Errorf("%w: unsupported travel mode %q", ErrInvalidQuery, q.Mode)
	}

	return q, nil
}
