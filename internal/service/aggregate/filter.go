package aggregate

import (
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/columns"
)

type GroupBy string

const (
	GroupBySKU      GroupBy = "sku"
	GroupByFacility GroupBy = "facility"
)

type ColorMode int

const (
	// ColorFirstSeen indexes the palette by a series' position in first-seen order.
	ColorFirstSeen ColorMode = iota
	// ColorHash indexes the palette by a hash of the series label, so the same SKU gets the
	// same color in two independently fetched runs.
	ColorHash
)

// Filter selects rows and says how to group them. The zero value selects everything.
type Filter struct {
	SKUs     []string
	Facility string
	From     string
	To       string
	Output   domain.OutputKind
	GroupBy  GroupBy
	Color    ColorMode
}

// ValueField is the logical column charted for an output kind.
func ValueField(kind domain.OutputKind) columns.Field {
	switch kind {
	case domain.OutputProduction:
		return columns.Produced
	case domain.OutputFlow:
		return columns.Flow
	case domain.OutputOccurrence:
		return columns.Event
	default:
		return columns.Inventory
	}
}

// Apply returns the rows that pass the SKU, facility and date filters, in input order.
func Apply(rows []domain.Row, f Filter) []domain.Row {
	skus := make(map[string]struct{}, len(f.SKUs))
	for _, s := range f.SKUs {
		if s = strings.TrimSpace(s); s != "" {
			skus[s] = struct{}{}
		}
	}
	facility := strings.ToLower(strings.TrimSpace(f.Facility))

	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if len(skus) > 0 {
			sku, _ := columns.Value(r, columns.SKU)
			if _, ok := skus[strings.TrimSpace(sku)]; !ok {
				continue
			}
		}
		if facility != "" && !MatchFacility(r, facility) {
			continue
		}
		if f.From != "" || f.To != "" {
			d, ok := columns.Value(r, columns.Date)
			if !ok || !columns.InWindow(d, f.From, f.To) {
				continue
			}
		}
		out = append(out, r)
	}

	return out
}

// MatchFacility compares the row's facility to want using a trimmed, case-insensitive match.
func MatchFacility(r domain.Row, want string) bool {
	got, ok := columns.Value(r, columns.Facility)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}
