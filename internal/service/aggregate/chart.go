// Package aggregate turns flat output rows into chart series.
package aggregate

import (
	"sort"
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/columns"
)

const unknownLabel = "unknown"

type series struct {
	label  string
	byDate map[string]float64
}

// Build filters rows and groups them into one series per SKU (or facility), aligned with a
// sorted list of normalized dates. A missing date/series combination is 0.
func Build(rows []domain.Row, f Filter) domain.ChartData {
	labels, all := group(Apply(rows, f), f)
	return render(labels, all, f.Color, "", false)
}

// Compare overlays a baseline run on the current one. Colors are hash-based so a SKU keeps
// its color across both runs; baseline series are dashed.
func Compare(baseline, current []domain.Row, f Filter) domain.ChartData {
	baseLabels, base := group(Apply(baseline, f), f)
	curLabels, cur := group(Apply(current, f), f)

	labels := mergeLabels(baseLabels, curLabels)

	out := render(labels, cur, ColorHash, "", false)
	based := render(labels, base, ColorHash, " (baseline)", true)
	out.Datasets = append(out.Datasets, based.Datasets...)

	return out
}

func group(rows []domain.Row, f Filter) ([]string, []*series) {
	field := ValueField(f.Output)
	keyField := columns.SKU
	if f.GroupBy == GroupByFacility {
		keyField = columns.Facility
	}

	dates := make(map[string]struct{})
	index := make(map[string]*series)
	order := make([]*series, 0)

	for _, r := range rows {
		rawDate, ok := columns.Value(r, columns.Date)
		if !ok {
			continue
		}
		date := columns.NormalizeDate(rawDate)

		key, ok := columns.Value(r, keyField)
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			key = unknownLabel
		}

		s, ok := index[key]
		if !ok {
			s = &series{label: key, byDate: make(map[string]float64)}
			index[key] = s
			order = append(order, s)
		}

		s.byDate[date] += columns.FieldNumber(r, field)
		dates[date] = struct{}{}
	}

	labels := make([]string, 0, len(dates))
	for d := range dates {
		labels = append(labels, d)
	}
	sort.Strings(labels)

	return labels, order
}

func render(labels []string, all []*series, mode ColorMode, suffix string, dashed bool) domain.ChartData {
	out := domain.ChartData{
		Labels:   labels,
		Datasets: make([]domain.Dataset, 0, len(all)),
	}

	for i, s := range all {
		data := make([]float64, len(labels))
		for j, d := range labels {
			data[j] = s.byDate[d]
		}

		color := ColorAt(i)
		if mode == ColorHash {
			color = ColorFor(s.label)
		}

		out.Datasets = append(out.Datasets, domain.Dataset{
			Label:  s.label + suffix,
			Data:   data,
			Color:  color,
			Dashed: dashed,
		})
	}

	return out
}

func mergeLabels(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, l := range list {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// SKUs lists the distinct SKUs in rows in first-seen order, for filter pickers.
func SKUs(rows []domain.Row) []string {
	return distinct(rows, columns.SKU)
}

// Facilities lists the distinct facilities in rows in first-seen order.
func Facilities(rows []domain.Row) []string {
	return distinct(rows, columns.Facility)
}

func distinct(rows []domain.Row, f columns.Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		v, ok := columns.Value(r, f)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
