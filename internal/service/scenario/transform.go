package scenario

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/columns"
	"github.com/shopspring/decimal"
)

var (
	errNothingToDo = errors.New("no transform configured")
	errMalformed   = errors.New("malformed multiplier")
	errNoColumn    = errors.New("required column not detected")
	errNoMatch     = errors.New("no rows matched")
)

// Transform rewrites a parsed input table. It returns the new table and the number of rows
// it touched. The input table is never modified.
type Transform func(t *domain.Table, p *domain.ScenarioPayload) (*domain.Table, int, error)

// Demand scales the demand quantity of every row dated inside the scope window.
func Demand(t *domain.Table, p *domain.ScenarioPayload) (*domain.Table, int, error) {
	if p.Transforms.Demand == nil {
		return nil, 0, errNothingToDo
	}
	m, err := multiplier(p.Transforms.Demand.Multiplier)
	if err != nil {
		return nil, 0, err
	}

	qtyCol, ok := columns.Detect(t.Header, columns.Quantity)
	if !ok {
		return nil, 0, fmt.Errorf("%w: quantity", errNoColumn)
	}
	dateCol, ok := columns.Detect(t.Header, columns.Date)
	if !ok {
		return nil, 0, fmt.Errorf("%w: date", errNoColumn)
	}

	return scale(t, qtyCol, m, func(row domain.Row) bool {
		d, _ := row.Get(dateCol)
		return columns.InWindow(d, p.Scope.StartDate, p.Scope.EndDate)
	})
}

// Supply scales the capacity column of location-materials rows for the scoped facility.
// An empty scope facility selects every row; a date window applies only when the file has a
// date column.
func Supply(t *domain.Table, p *domain.ScenarioPayload) (*domain.Table, int, error) {
	if p.Transforms.Supply == nil {
		return nil, 0, errNothingToDo
	}
	m, err := multiplier(p.Transforms.Supply.CapacityMultiplier)
	if err != nil {
		return nil, 0, err
	}

	capCol, ok := columns.Detect(t.Header, columns.Capacity)
	if !ok {
		return nil, 0, fmt.Errorf("%w: capacity", errNoColumn)
	}

	facility := strings.TrimSpace(p.Scope.Facility)
	facilityCol, hasFacility := columns.Detect(t.Header, columns.Facility)
	if facility != "" && !hasFacility {
		return nil, 0, fmt.Errorf("%w: facility", errNoColumn)
	}
	dateCol, hasDate := columns.Detect(t.Header, columns.Date)

	return scale(t, capCol, m, func(row domain.Row) bool {
		if facility != "" {
			v, _ := row.Get(facilityCol)
			if !strings.EqualFold(strings.TrimSpace(v), facility) {
				return false
			}
		}
		if hasDate {
			d, _ := row.Get(dateCol)
			return columns.InWindow(d, p.Scope.StartDate, p.Scope.EndDate)
		}
		return true
	})
}

// Disruptions appends one row per injected disruption. Existing rows keep their source text;
// when the file lacks a disruption column it is added to the header only. Fields an entry
// leaves empty fall back to the scenario scope.
func Disruptions(t *domain.Table, p *domain.ScenarioPayload) (*domain.Table, int, error) {
	if len(p.Transforms.Disruptions) == 0 {
		return nil, 0, errNothingToDo
	}
	if len(t.Header) == 0 {
		return nil, 0, fmt.Errorf("%w: header", errNoColumn)
	}

	header := append([]string{}, t.Header...)
	column := func(f columns.Field) string {
		if c, ok := columns.Detect(header, f); ok {
			return c
		}
		header = append(header, string(f))
		return string(f)
	}
	typeCol := column(columns.DisruptionType)
	facilityCol := column(columns.Facility)
	startCol := column(columns.StartDate)
	endCol := column(columns.EndDate)
	severityCol := column(columns.Severity)

	out := &domain.Table{Header: header, Rows: append([]domain.Row{}, t.Rows...), Trailer: t.Trailer}
	if len(header) == len(t.Header) {
		out.HeaderSource = t.HeaderSource
	}
	for _, d := range p.Transforms.Disruptions {
		severity := p.Scope.Severity
		if d.Severity != nil {
			severity = *d.Severity
		}
		values := map[string]string{
			typeCol:     d.Type,
			facilityCol: orDefault(d.Facility, p.Scope.Facility),
			startCol:    orDefault(d.StartDate, p.Scope.StartDate),
			endCol:      orDefault(d.EndDate, p.Scope.EndDate),
			severityCol: strconv.FormatFloat(severity, 'f', -1, 64),
		}
		out.Rows = append(out.Rows, domain.RowFromMap(header, values))
	}

	return out, len(p.Transforms.Disruptions), nil
}

func scale(t *domain.Table, col string, m decimal.Decimal, match func(domain.Row) bool) (*domain.Table, int, error) {
	out := &domain.Table{
		Header:       t.Header,
		Rows:         make([]domain.Row, len(t.Rows)),
		HeaderSource: t.HeaderSource,
		Trailer:      t.Trailer,
	}
	changed := 0

	for i, row := range t.Rows {
		out.Rows[i] = row
		if !match(row) {
			continue
		}
		raw, _ := row.Get(col)
		v, ok := columns.ParseNumeric(raw)
		if !ok {
			continue
		}
		out.Rows[i] = row.With(col, decimal.NewFromFloat(v).Mul(m).String())
		changed++
	}

	if changed == 0 {
		return nil, 0, errNoMatch
	}
	return out, changed, nil
}

// multiplier rejects values that would corrupt the file and treats a missing value or 1 as
// nothing to do.
func multiplier(p *float64) (decimal.Decimal, error) {
	if p == nil {
		return decimal.Zero, errNothingToDo
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero, fmt.Errorf("%w: %v", errMalformed, v)
	}
	if v == 1 {
		return decimal.Zero, errNothingToDo
	}
	return decimal.NewFromFloat(v), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
