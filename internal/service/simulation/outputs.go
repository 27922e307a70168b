package simulation

import (
	"context"
	"fmt"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/csvtable"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/ougirez/supplytwin/internal/pkg/metrics"
	"github.com/ougirez/supplytwin/internal/service/aggregate"
	"github.com/ougirez/supplytwin/internal/service/kpi"
	"golang.org/x/sync/errgroup"
)

const fetchConcurrency = 4

var ErrStaleRefresh = constants.NewCodedError("refresh superseded by a newer one", 409)

// Outputs fetches every output of run that is not cached yet. A failed output only marks its
// own status; the others are still fetched.
func (s *Service) Outputs(ctx context.Context, run *domain.Run) []domain.OutputStatus {
	statuses := make([]domain.OutputStatus, len(domain.OutputKinds))
	gen := s.generations.Current(run.ID.String())

	var eg errgroup.Group
	eg.SetLimit(fetchConcurrency)

	for i, kind := range domain.OutputKinds {
		i, kind := i, kind
		statuses[i].Kind = kind

		url, ok := run.URLs.URL(kind)
		if !ok {
			statuses[i].Error = "not produced"
			continue
		}
		if t, ok := s.cache.get(run.ID, kind); ok {
			statuses[i].Available, statuses[i].Rows = true, len(t.Rows)
			continue
		}

		eg.Go(func() error {
			t, err := s.fetch(ctx, kind, url)
			if err != nil {
				statuses[i].Error = err.Error()
				return nil
			}
			t = s.keep(run, kind, gen, t)
			statuses[i].Available, statuses[i].Rows = true, len(t.Rows)
			return nil
		})
	}

	_ = eg.Wait()
	return statuses
}

// Refresh re-fetches every output of run. The result replaces the cache only if no newer
// refresh of the same run started in the meantime; otherwise ErrStaleRefresh is returned and
// the fetched tables are discarded.
func (s *Service) Refresh(ctx context.Context, run *domain.Run) ([]domain.OutputStatus, error) {
	key := run.ID.String()
	gen := s.generations.Begin(key)

	statuses := make([]domain.OutputStatus, len(domain.OutputKinds))
	tables := make([]*domain.Table, len(domain.OutputKinds))

	var eg errgroup.Group
	eg.SetLimit(fetchConcurrency)

	for i, kind := range domain.OutputKinds {
		i, kind := i, kind
		statuses[i].Kind = kind

		url, ok := run.URLs.URL(kind)
		if !ok {
			statuses[i].Error = "not produced"
			continue
		}

		eg.Go(func() error {
			t, err := s.fetch(ctx, kind, url)
			if err != nil {
				statuses[i].Error = err.Error()
				return nil
			}
			tables[i] = t
			statuses[i].Available, statuses[i].Rows = true, len(t.Rows)
			return nil
		})
	}
	_ = eg.Wait()

	fresh := make(map[domain.OutputKind]*domain.Table)
	for i, t := range tables {
		if t != nil {
			fresh[domain.OutputKinds[i]] = t
		}
	}

	if !s.generations.Commit(key, gen, func() { s.cache.replace(run.ID, fresh) }) {
		logger.Debugf(ctx, "discarding stale refresh of run %s (generation %d)", key, gen)
		return nil, ErrStaleRefresh
	}

	return statuses, nil
}

// Chart aggregates one charted output of run. Outputs the run did not produce yield an empty
// chart.
func (s *Service) Chart(ctx context.Context, run *domain.Run, f aggregate.Filter) (domain.ChartData, error) {
	f, err := chartFilter(f)
	if err != nil {
		return domain.ChartData{}, err
	}

	t, err := s.table(ctx, run, f.Output)
	if err != nil {
		return domain.ChartData{}, err
	}
	if t == nil {
		return aggregate.Build(nil, f), nil
	}

	return aggregate.Build(t.Rows, f), nil
}

// Compare overlays baseline onto current for one charted output.
func (s *Service) Compare(ctx context.Context, baseline, current *domain.Run, f aggregate.Filter) (domain.ChartData, error) {
	f, err := chartFilter(f)
	if err != nil {
		return domain.ChartData{}, err
	}

	var base, cur []domain.Row
	if t, err := s.table(ctx, baseline, f.Output); err != nil {
		return domain.ChartData{}, fmt.Errorf("baseline: %w", err)
	} else if t != nil {
		base = t.Rows
	}
	if t, err := s.table(ctx, current, f.Output); err != nil {
		return domain.ChartData{}, err
	} else if t != nil {
		cur = t.Rows
	}

	return aggregate.Compare(base, cur, f), nil
}

// KPIs computes every KPI group from the filtered rows of each charted output. An output that
// cannot be loaded leaves its group empty.
func (s *Service) KPIs(ctx context.Context, run *domain.Run, f aggregate.Filter) domain.KPIs {
	rows := make(map[domain.OutputKind][]domain.Row)
	for _, kind := range domain.ChartKinds {
		t, err := s.table(ctx, run, kind)
		if err != nil {
			logger.Warnf(ctx, "kpis: %s output of run %s unavailable: %v", kind, run.ID, err)
			continue
		}
		if t != nil {
			rows[kind] = aggregate.Apply(t.Rows, f)
		}
	}
	return kpi.Compute(rows)
}

// Table returns the filtered rows of any output.
func (s *Service) Table(ctx context.Context, run *domain.Run, kind domain.OutputKind, f aggregate.Filter) (*domain.Table, error) {
	t, err := s.table(ctx, run, kind)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%s output: %w", kind, constants.ErrDBNotFound)
	}

	return &domain.Table{Header: t.Header, Rows: aggregate.Apply(t.Rows, f)}, nil
}

func (s *Service) ExportCSV(ctx context.Context, run *domain.Run, kind domain.OutputKind, f aggregate.Filter) ([]byte, error) {
	t, err := s.Table(ctx, run, kind, f)
	if err != nil {
		return nil, err
	}
	return csvtable.Serialize(t)
}

// table returns the cached table for kind, fetching it on a miss. A nil table with a nil
// error means the run has no such output.
func (s *Service) table(ctx context.Context, run *domain.Run, kind domain.OutputKind) (*domain.Table, error) {
	if t, ok := s.cache.get(run.ID, kind); ok {
		return t, nil
	}

	url, ok := run.URLs.URL(kind)
	if !ok {
		return nil, nil
	}

	gen := s.generations.Current(run.ID.String())
	t, err := s.fetch(ctx, kind, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrBackend, err.Error())
	}

	return s.keep(run, kind, gen, t), nil
}

// keep caches a table fetched on a cache miss, unless a refresh of the run began after gen
// was read. Then the refreshed table is returned when there is one.
func (s *Service) keep(run *domain.Run, kind domain.OutputKind, gen uint64, t *domain.Table) *domain.Table {
	if s.generations.Commit(run.ID.String(), gen, func() { s.cache.put(run.ID, kind, t) }) {
		return t
	}
	if cached, ok := s.cache.get(run.ID, kind); ok {
		return cached
	}
	return t
}

func (s *Service) fetch(ctx context.Context, kind domain.OutputKind, url string) (*domain.Table, error) {
	t, err := s.backend.FetchCSV(ctx, url)
	if err != nil {
		metrics.OutputFetches.WithLabelValues(string(kind), "error").Inc()
		logger.Warnf(ctx, "fetch %s output failed: %v", kind, err)
		return nil, err
	}
	metrics.OutputFetches.WithLabelValues(string(kind), "ok").Inc()
	return t, nil
}

func chartFilter(f aggregate.Filter) (aggregate.Filter, error) {
	if f.Output == "" {
		f.Output = domain.OutputInventory
	}
	if !f.Output.Charted() {
		return f, fmt.Errorf("%w: %s output has no chart", constants.ErrBadRequest, f.Output)
	}
	return f, nil
}
