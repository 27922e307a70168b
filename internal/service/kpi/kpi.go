// Package kpi derives the scalar tile metrics from whatever rows are currently filtered in.
// Every function is pure and recomputes from scratch.
package kpi

import (
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/columns"
	"github.com/shopspring/decimal"
)

// DefaultCostPerUnit applies to flow rows without a cost column.
const DefaultCostPerUnit = 10

// Inventory computes average inventory, turns and the on-time proxy.
//
// OnTimeFulfillment is an approximation: 100% when any positive inventory is present,
// otherwise 0%. It is not a fulfillment calculation.
func Inventory(rows []domain.Row) domain.InventoryKPIs {
	sum, positive := decimal.Zero, decimal.Zero
	for _, r := range rows {
		v := decimal.NewFromFloat(columns.FieldNumber(r, columns.Inventory))
		sum = sum.Add(v)
		if v.IsPositive() {
			positive = positive.Add(v)
		}
	}

	avg := decimal.Zero
	if len(rows) > 0 {
		avg = sum.Div(decimal.NewFromInt(int64(len(rows))))
	}

	turns := "0.00"
	if !avg.IsZero() {
		turns = positive.Div(avg).StringFixed(2)
	}

	onTime := "0.0%"
	if positive.IsPositive() {
		onTime = "100.0%"
	}

	return domain.InventoryKPIs{
		AvgInventory:      avg.Round(2).InexactFloat64(),
		InventoryTurns:    turns,
		OnTimeFulfillment: onTime,
	}
}

// Production sums production and averages the worst-case recovery time per facility,
// counting only facilities that produced anything.
func Production(rows []domain.Row) domain.ProductionKPIs {
	total := decimal.Zero

	type facilityStats struct {
		produced    decimal.Decimal
		maxRecovery float64
		seen        bool
	}
	byFacility := make(map[string]*facilityStats)
	order := make([]string, 0)

	for _, r := range rows {
		produced := decimal.NewFromFloat(columns.FieldNumber(r, columns.Produced))
		total = total.Add(produced)

		facility, _ := columns.Value(r, columns.Facility)
		facility = strings.ToLower(strings.TrimSpace(facility))

		st, ok := byFacility[facility]
		if !ok {
			st = &facilityStats{}
			byFacility[facility] = st
			order = append(order, facility)
		}
		st.produced = st.produced.Add(produced)

		if days, ok := columns.StrictNumber(r, columns.RecoveryDays); ok {
			if !st.seen || days > st.maxRecovery {
				st.maxRecovery = days
			}
			st.seen = true
		}
	}

	sumMax, n := decimal.Zero, 0
	for _, f := range order {
		st := byFacility[f]
		if !st.produced.IsPositive() {
			continue
		}
		sumMax = sumMax.Add(decimal.NewFromFloat(st.maxRecovery))
		n++
	}

	avgTTR := decimal.Zero
	if n > 0 {
		avgTTR = sumMax.Div(decimal.NewFromInt(int64(n)))
	}

	return domain.ProductionKPIs{
		TotalProduction:   total.Round(2).InexactFloat64(),
		AvgTimeToRecovery: avgTTR.Round(2).InexactFloat64(),
	}
}

// Flow computes cost to serve and the share of expedited shipments in percent.
func Flow(rows []domain.Row) domain.FlowKPIs {
	cost := decimal.Zero
	expedited := 0

	for _, r := range rows {
		qty := decimal.NewFromFloat(columns.FieldNumber(r, columns.Flow))

		unit, ok := columns.StrictNumber(r, columns.CostPerUnit)
		if !ok {
			unit = DefaultCostPerUnit
		}
		cost = cost.Add(qty.Mul(decimal.NewFromFloat(unit)))

		if flag, ok := columns.Value(r, columns.Expedited); ok && columns.ParseBool(flag) {
			expedited++
		}
	}

	ratio := decimal.Zero
	if len(rows) > 0 {
		ratio = decimal.NewFromInt(int64(expedited * 100)).Div(decimal.NewFromInt(int64(len(rows))))
	}

	return domain.FlowKPIs{
		CostToServe:   cost.Round(2).InexactFloat64(),
		ExpediteRatio: ratio.Round(2).InexactFloat64(),
	}
}

func Occurrence(rows []domain.Row) domain.OccurrenceKPIs {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(decimal.NewFromFloat(columns.FieldNumber(r, columns.Event)))
	}
	return domain.OccurrenceKPIs{BackorderVolume: sum.Round(2).InexactFloat64()}
}

// Compute fills the KPI group for every charted output present in rowsByKind.
func Compute(rowsByKind map[domain.OutputKind][]domain.Row) domain.KPIs {
	var out domain.KPIs
	if rows, ok := rowsByKind[domain.OutputInventory]; ok {
		v := Inventory(rows)
		out.Inventory = &v
	}
	if rows, ok := rowsByKind[domain.OutputProduction]; ok {
		v := Production(rows)
		out.Production = &v
	}
	if rows, ok := rowsByKind[domain.OutputFlow]; ok {
		v := Flow(rows)
		out.Flow = &v
	}
	if rows, ok := rowsByKind[domain.OutputOccurrence]; ok {
		v := Occurrence(rows)
		out.Occurrence = &v
	}
	return out
}
