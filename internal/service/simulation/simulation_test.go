package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/backend"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/csvtable"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/ougirez/supplytwin/internal/service/aggregate"
	"github.com/ougirez/supplytwin/internal/service/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	inventoryCSV = "date,sku,facility,inventory\n2025-01-01,A,DC1,10\n2025-01-01,B,DC2,20\n2025-01-02,A,DC1,30\n"
	flowCSV      = "date,sku,quantity,cost_per_unit,expedited\n2025-01-01,A,2,5,yes\n2025-01-01,B,1,,no\n"
)

type fakeBackend struct {
	mu       sync.Mutex
	urls     domain.OutputURLs
	runErr   error
	runCalls int
	files    map[string]string
	fetches  map[string]int
	onFetch  func(url string)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		urls: domain.OutputURLs{
			domain.OutputInventory.URLKey():  "inv",
			domain.OutputFlow.URLKey():       "flow",
			domain.OutputProduction.URLKey(): "gone",
		},
		files:   map[string]string{"inv": inventoryCSV, "flow": flowCSV},
		fetches: map[string]int{},
	}
}

func (f *fakeBackend) Run(_ context.Context, body io.Reader, _, _ string) (domain.OutputURLs, error) {
	_, _ = io.Copy(io.Discard, body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.runCalls++
	return f.urls, f.runErr
}

func (f *fakeBackend) FetchCSV(_ context.Context, url string) (*domain.Table, error) {
	if f.onFetch != nil {
		f.onFetch(url)
	}

	f.mu.Lock()
	f.fetches[url]++
	text, ok := f.files[url]
	f.mu.Unlock()

	if !ok {
		return nil, errors.New("status code error: 404 Not Found")
	}
	return csvtable.ParseBytes([]byte(text))
}

func (f *fakeBackend) fetchCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[url]
}

func uploads() map[string]Upload {
	files := make(map[string]Upload, len(scenario.RequiredFiles))
	for _, name := range scenario.RequiredFiles {
		files[name] = Upload{Filename: name + ".csv", Data: []byte("id,value\n1,2\n")}
	}
	files[scenario.FileDemand] = Upload{
		Filename: "demand.csv",
		Data:     []byte("date,sku,demand\n2025-08-05,SKU1,100\n2025-08-20,SKU1,100\n"),
	}
	return files
}

func newRun(urls domain.OutputURLs) *domain.Run {
	return &domain.Run{ID: uuid.New(), UserID: 1, URLs: urls}
}

func TestSubmitRejectsMissingFilesBeforeNetwork(t *testing.T) {
	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})

	files := uploads()
	delete(files, scenario.FileBOM)
	files[scenario.FileLocations] = Upload{Filename: "locations.csv"}

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, Files: files})

	require.ErrorIs(t, err, constants.ErrMissingInput)
	assert.Contains(t, err.Error(), "locations, bom")
	assert.Equal(t, 0, fb.runCalls)
}

func TestSubmitAgainstHTTPBackend(t *testing.T) {
	var (
		mu       sync.Mutex
		received = map[string][]string{}
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/run", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		mu.Lock()
		for name, values := range r.MultipartForm.Value {
			received[name] = values
		}
		for name, headers := range r.MultipartForm.File {
			for _, h := range headers {
				file, err := h.Open()
				require.NoError(t, err)
				data, _ := io.ReadAll(file)
				_ = file.Close()
				received[name] = append(received[name], string(data))
			}
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"inventory_output_file_url":"/files/inventory.csv","flow_output_file_url":"/files/flow.csv"}`)
	})
	mux.HandleFunc("/files/inventory.csv", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, inventoryCSV)
	})
	mux.HandleFunc("/files/flow.csv", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	st := store.NewMemoryStore()
	svc := NewService(client, StoreRecorder(st), st, Config{})

	scenarioID := uuid.New()
	demand := 1.5
	res, err := svc.Submit(context.Background(), SubmitRequest{
		UserID: 7,
		Name:   "strike",
		Files:  uploads(),
		Scenario: &domain.ScenarioPayload{
			Scope:      domain.ScenarioScope{StartDate: "2025-08-01", EndDate: "2025-08-15"},
			Transforms: domain.ScenarioTransforms{Demand: &domain.DemandTransform{Multiplier: &demand}},
		},
		ScenarioID:   &scenarioID,
		ScenarioName: "Port strike",
	})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"date,sku,demand\n2025-08-05,SKU1,150\n2025-08-20,SKU1,100\n"}, received[scenario.FileDemand])
	assert.Len(t, received[scenario.FieldScenario], 1)
	assert.Contains(t, received[scenario.FieldScenario][0], `"multiplier":1.5`)
	mu.Unlock()

	assert.Equal(t, "strike", res.Run.Name)
	assert.True(t, res.Transforms[0].Applied)
	require.NotNil(t, res.Run.KPIs.Inventory)
	assert.Equal(t, 20.0, res.Run.KPIs.Inventory.AvgInventory)
	assert.Nil(t, res.Run.KPIs.Flow, "flow fetch failed")

	byKind := map[domain.OutputKind]domain.OutputStatus{}
	for _, st := range res.Outputs {
		byKind[st.Kind] = st
	}
	assert.True(t, byKind[domain.OutputInventory].Available)
	assert.Equal(t, 3, byKind[domain.OutputInventory].Rows)
	assert.False(t, byKind[domain.OutputFlow].Available)
	assert.Contains(t, byKind[domain.OutputFlow].Error, "404")
	assert.Equal(t, "not produced", byKind[domain.OutputRisk].Error)

	stored, err := st.GetRun(context.Background(), res.Run.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Port strike", stored.ScenarioName)
	assert.Equal(t, &scenarioID, stored.ScenarioID)
}

func TestSubmitSurvivesRecorderFailure(t *testing.T) {
	fb := newFakeBackend()
	recorder := RecorderFunc(func(context.Context, *domain.Run) error {
		return errors.New("quota exceeded")
	})
	svc := NewService(fb, recorder, store.NewMemoryStore(), Config{})

	res, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, Files: uploads()})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Run.Name, "Run "))
	assert.Equal(t, fb.urls, res.Run.URLs)
}

func TestSubmitBackendError(t *testing.T) {
	fb := newFakeBackend()
	fb.runErr = fmt.Errorf("%w: Internal Server Error", constants.ErrBackend)
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: 1, Files: uploads()})

	assert.ErrorIs(t, err, constants.ErrBackend)
	assert.Equal(t, 502, constants.CodeOf(err))
}

func TestOutputsIsolatesFailuresAndCaches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})
	run := newRun(fb.urls)

	statuses := svc.Outputs(context.Background(), run)
	require.Len(t, statuses, len(domain.OutputKinds))
	assert.Equal(t, domain.OutputStatus{Kind: domain.OutputInventory, Available: true, Rows: 3}, statuses[0])
	assert.False(t, statuses[1].Available)
	assert.Contains(t, statuses[1].Error, "404")
	assert.Equal(t, domain.OutputStatus{Kind: domain.OutputFlow, Available: true, Rows: 2}, statuses[2])

	svc.Outputs(context.Background(), run)
	assert.Equal(t, 1, fb.fetchCount("inv"))
	assert.Equal(t, 2, fb.fetchCount("gone"), "failures are not cached")
}

func TestChartFromCachedRows(t *testing.T) {
	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})
	run := newRun(fb.urls)
	ctx := context.Background()

	chart, err := svc.Chart(ctx, run, aggregate.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, chart.Labels)
	require.Len(t, chart.Datasets, 2)
	assert.Equal(t, []float64{10, 30}, chart.Datasets[0].Data)
	assert.Equal(t, []float64{20, 0}, chart.Datasets[1].Data)

	chart, err = svc.Chart(ctx, run, aggregate.Filter{Facility: "dc2"})
	require.NoError(t, err)
	require.Len(t, chart.Datasets, 1)
	assert.Equal(t, "B", chart.Datasets[0].Label)
	assert.Equal(t, 1, fb.fetchCount("inv"))

	_, err = svc.Chart(ctx, run, aggregate.Filter{Output: domain.OutputProduction})
	assert.ErrorIs(t, err, constants.ErrBackend)

	_, err = svc.Chart(ctx, run, aggregate.Filter{Output: domain.OutputRisk})
	assert.ErrorIs(t, err, constants.ErrBadRequest)

	chart, err = svc.Chart(ctx, run, aggregate.Filter{Output: domain.OutputOccurrence})
	require.NoError(t, err)
	assert.Empty(t, chart.Datasets)
}

func TestKPIsFollowFilters(t *testing.T) {
	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})
	run := newRun(fb.urls)

	all := svc.KPIs(context.Background(), run, aggregate.Filter{})
	require.NotNil(t, all.Inventory)
	require.NotNil(t, all.Flow)
	assert.Nil(t, all.Production)
	assert.Equal(t, 20.0, all.Inventory.AvgInventory)
	assert.Equal(t, 2*5+1*10.0, all.Flow.CostToServe)
	assert.Equal(t, 50.0, all.Flow.ExpediteRatio)

	onlyA := svc.KPIs(context.Background(), run, aggregate.Filter{SKUs: []string{"A"}})
	assert.Equal(t, 20.0, onlyA.Inventory.AvgInventory)
	assert.Equal(t, 10.0, onlyA.Flow.CostToServe)
}

func TestTableAndExport(t *testing.T) {
	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})
	run := newRun(fb.urls)
	ctx := context.Background()

	table, err := svc.Table(ctx, run, domain.OutputInventory, aggregate.Filter{From: "2025-01-02"})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "sku", "facility", "inventory"}, table.Header)
	assert.Len(t, table.Rows, 1)

	out, err := svc.ExportCSV(ctx, run, domain.OutputInventory, aggregate.Filter{SKUs: []string{"B"}})
	require.NoError(t, err)
	assert.Equal(t, "date,sku,facility,inventory\n2025-01-01,B,DC2,20\n", string(out))

	_, err = svc.Table(ctx, run, domain.OutputLocation, aggregate.Filter{})
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
}

func TestCompareRuns(t *testing.T) {
	fb := newFakeBackend()
	fb.files["inv2"] = "date,sku,inventory\n2025-01-03,A,5\n"
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})

	baseline := newRun(fb.urls)
	current := newRun(domain.OutputURLs{domain.OutputInventory.URLKey(): "inv2"})

	chart, err := svc.Compare(context.Background(), baseline, current, aggregate.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, chart.Labels)
	require.Len(t, chart.Datasets, 3)
	assert.Equal(t, "A", chart.Datasets[0].Label)
	assert.Equal(t, "A (baseline)", chart.Datasets[1].Label)
	assert.True(t, chart.Datasets[1].Dashed)
	assert.Equal(t, chart.Datasets[0].Color, chart.Datasets[1].Color)
}

func TestRefreshReplacesCache(t *testing.T) {
	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})
	run := newRun(fb.urls)
	ctx := context.Background()

	_, err := svc.Chart(ctx, run, aggregate.Filter{})
	require.NoError(t, err)

	fb.mu.Lock()
	fb.files["inv"] = "date,sku,inventory\n2025-02-01,Z,1\n"
	fb.mu.Unlock()

	statuses, err := svc.Refresh(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 1, statuses[0].Rows)

	chart, err := svc.Chart(ctx, run, aggregate.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-01"}, chart.Labels)
}

func TestRefreshDiscardsStaleResult(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})
	run := newRun(fb.urls)
	ctx := context.Background()

	require.Len(t, svc.Outputs(ctx, run), len(domain.OutputKinds))

	var once sync.Once
	fb.onFetch = func(string) {
		once.Do(func() { svc.generations.Begin(run.ID.String()) })
	}
	fb.mu.Lock()
	fb.files["inv"] = "date,sku,inventory\n2025-02-01,Z,1\n"
	fb.mu.Unlock()

	_, err := svc.Refresh(ctx, run)
	assert.ErrorIs(t, err, ErrStaleRefresh)

	chart, err := svc.Chart(ctx, run, aggregate.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, chart.Labels, "stale tables were not applied")
}

func TestCacheMissFetchLosesToNewerRefresh(t *testing.T) {
	fb := newFakeBackend()
	svc := NewService(fb, nil, store.NewMemoryStore(), Config{})
	run := newRun(fb.urls)
	ctx := context.Background()

	const refreshed = "date,sku,inventory\n2025-02-01,Z,1\n"
	var started atomic.Bool
	fb.onFetch = func(url string) {
		if url != "inv" || !started.CompareAndSwap(false, true) {
			return
		}
		fb.mu.Lock()
		fb.files["inv"] = refreshed
		fb.mu.Unlock()

		_, err := svc.Refresh(ctx, run)
		assert.NoError(t, err)

		fb.mu.Lock()
		fb.files["inv"] = inventoryCSV
		fb.mu.Unlock()
	}

	table, err := svc.Table(ctx, run, domain.OutputInventory, aggregate.Filter{})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	chart, err := svc.Chart(ctx, run, aggregate.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-01"}, chart.Labels)
}

func TestDeleteDropsCache(t *testing.T) {
	fb := newFakeBackend()
	st := store.NewMemoryStore()
	svc := NewService(fb, nil, st, Config{})
	ctx := context.Background()

	run := newRun(fb.urls)
	require.NoError(t, st.CreateRun(ctx, run))
	svc.Outputs(ctx, run)
	require.Equal(t, 1, svc.cache.len())

	other := int64(2)
	assert.ErrorIs(t, svc.Delete(ctx, &other, run.ID), constants.ErrDBNotFound)

	owner := int64(1)
	require.NoError(t, svc.Delete(ctx, &owner, run.ID))
	assert.Equal(t, 0, svc.cache.len())
}

func TestRowCacheEvictsOldest(t *testing.T) {
	c := newRowCache(2)
	a, b, d := uuid.New(), uuid.New(), uuid.New()
	table := &domain.Table{}

	c.put(a, domain.OutputInventory, table)
	c.put(b, domain.OutputInventory, table)
	c.put(a, domain.OutputFlow, table)
	c.put(d, domain.OutputInventory, table)

	_, ok := c.get(a, domain.OutputInventory)
	assert.False(t, ok)
	_, ok = c.get(b, domain.OutputInventory)
	assert.True(t, ok)
	_, ok = c.get(d, domain.OutputInventory)
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}
