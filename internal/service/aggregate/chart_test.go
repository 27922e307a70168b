package aggregate

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/csvtable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string) []domain.Row {
	t.Helper()
	table, err := csvtable.ParseBytes([]byte(text))
	require.NoError(t, err)
	return table.Rows
}

func TestBuildTwoSKUsOneDate(t *testing.T) {
	rows := parse(t, "date,SKU,Initial Inventory\n2025-01-01,A,10\n2025-01-01,B,20")

	got := Build(rows, Filter{Output: domain.OutputInventory})
	want := domain.ChartData{
		Labels: []string{"2025-01-01"},
		Datasets: []domain.Dataset{
			{Label: "A", Data: []float64{10}, Color: ColorAt(0)},
			{Label: "B", Data: []float64{20}, Color: ColorAt(1)},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("chart mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildZeroFillsAndNormalizesDates(t *testing.T) {
	rows := parse(t, "date,sku,inventory\n"+
		"2025-01-02,A,5\n"+
		"2025/01/01,B,7\n"+
		"01/02/2025,B,NaN\n"+
		"2025-01-02,A,\"1,000\"\n")

	got := Build(rows, Filter{})

	assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, got.Labels)
	require.Len(t, got.Datasets, 2)
	assert.Equal(t, []float64{0, 1005}, got.Datasets[0].Data)
	assert.Equal(t, []float64{7, 0}, got.Datasets[1].Data)

	for _, ds := range got.Datasets {
		require.Len(t, ds.Data, len(got.Labels))
		for _, v := range ds.Data {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	rows := parse(t, "date,sku,facility,production\n"+
		"2025-01-01,A,DC1,3\n2025-01-02,B,DC2,4\n2025-01-01,C,DC1,5\n")
	f := Filter{Output: domain.OutputProduction, SKUs: []string{"A", "C"}}

	first := Build(rows, f)
	second := Build(rows, f)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("not idempotent:\n%s", diff)
	}
	assert.Len(t, first.Datasets, 2)
}

func TestBuildFilters(t *testing.T) {
	rows := parse(t, "date,sku,location,quantity\n"+
		"2025-01-01,A, dc1 ,3\n"+
		"2025-01-05,A,DC1,4\n"+
		"2025-01-01,A,DC2,5\n")

	got := Build(rows, Filter{Output: domain.OutputFlow, Facility: "DC1", To: "2025-01-03"})
	assert.Equal(t, []string{"2025-01-01"}, got.Labels)
	require.Len(t, got.Datasets, 1)
	assert.Equal(t, []float64{3}, got.Datasets[0].Data)
}

func TestBuildGroupByFacility(t *testing.T) {
	rows := parse(t, "date,sku,facility,event\n"+
		"2025-01-01,A,DC1,1\n2025-01-01,B,DC1,2\n2025-01-01,A,DC2,4\n")

	got := Build(rows, Filter{Output: domain.OutputOccurrence, GroupBy: GroupByFacility})
	require.Len(t, got.Datasets, 2)
	assert.Equal(t, "DC1", got.Datasets[0].Label)
	assert.Equal(t, []float64{3}, got.Datasets[0].Data)
}

func TestBuildEmpty(t *testing.T) {
	got := Build(nil, Filter{})
	assert.Empty(t, got.Labels)
	assert.Empty(t, got.Datasets)
}

func TestCompareUsesStableColors(t *testing.T) {
	base := parse(t, "date,sku,inventory\n2025-01-01,B,1\n2025-01-01,A,2\n")
	cur := parse(t, "date,sku,inventory\n2025-01-01,A,3\n2025-01-02,B,4\n")

	got := Compare(base, cur, Filter{})

	assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, got.Labels)
	require.Len(t, got.Datasets, 4)

	colors := map[string]string{}
	for _, ds := range got.Datasets {
		require.Len(t, ds.Data, 2)
		sku := ds.Label[:1]
		if c, ok := colors[sku]; ok {
			assert.Equal(t, c, ds.Color, sku)
		}
		colors[sku] = ds.Color
	}
	assert.Equal(t, "B (baseline)", got.Datasets[2].Label)
	assert.True(t, got.Datasets[2].Dashed)
	assert.Equal(t, ColorFor("A"), got.Datasets[0].Color)
}

func TestDistinct(t *testing.T) {
	rows := parse(t, "date,sku,site\n2025-01-01,B,X\n2025-01-01,A,X\n2025-01-01,B,Y\n")
	assert.Equal(t, []string{"B", "A"}, SKUs(rows))
	assert.Equal(t, []string{"X", "Y"}, Facilities(rows))
}
