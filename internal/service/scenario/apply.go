package scenario

import (
	"context"
	"errors"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/csvtable"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/ougirez/supplytwin/internal/pkg/metrics"
)

// Input file field names expected by the simulation backend.
const (
	FileDemand            = "demand"
	FileDisruptions       = "disruptions"
	FileLocations         = "locations"
	FileProcesses         = "processes"
	FileBOM               = "bom"
	FileLocationMaterials = "location_materials"
)

var RequiredFiles = []string{
	FileDemand, FileDisruptions, FileLocations, FileProcesses, FileBOM, FileLocationMaterials,
}

// FieldScenario carries the scenario JSON alongside the files.
const FieldScenario = "scenario"

var transforms = []struct {
	file string
	fn   Transform
}{
	{FileDemand, Demand},
	{FileDisruptions, Disruptions},
	{FileLocationMaterials, Supply},
}

// FileReport tells whether a scenario transform replaced an uploaded file.
type FileReport struct {
	File    string `json:"file"`
	Applied bool   `json:"applied"`
	Rows    int    `json:"rows,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ApplyScenario runs every file transform against form. A field is overwritten only when the
// transformed CSV passes csvtable.ValidShape; on any failure the uploaded bytes stay in place.
func ApplyScenario(ctx context.Context, form *Form, p *domain.ScenarioPayload) []FileReport {
	if p == nil {
		return nil
	}

	reports := make([]FileReport, 0, len(transforms))
	for _, t := range transforms {
		report := applyOne(form, t.file, t.fn, p)
		reports = append(reports, report)

		result := "applied"
		if !report.Applied {
			result = "skipped"
			logger.Debugf(ctx, "scenario transform %s skipped: %s", t.file, report.Reason)
		}
		metrics.ScenarioTransforms.WithLabelValues(t.file, result).Inc()
	}

	return reports
}

func applyOne(form *Form, file string, fn Transform, p *domain.ScenarioPayload) FileReport {
	skip := func(reason string) FileReport {
		return FileReport{File: file, Reason: reason}
	}

	field, ok := form.Get(file)
	if !ok {
		return skip("file not uploaded")
	}

	table, err := csvtable.ParseBytes(field.Data)
	if err != nil {
		return skip(err.Error())
	}

	transformed, n, err := fn(table, p)
	if errors.Is(err, errNothingToDo) {
		return skip("nothing to apply")
	}
	if err != nil {
		return skip(err.Error())
	}

	out, err := csvtable.Serialize(transformed)
	if err != nil {
		return skip(err.Error())
	}
	if !csvtable.ValidShape(out) {
		return skip("transformed csv failed shape check")
	}

	form.Set(file, field.Filename, out)
	return FileReport{File: file, Applied: true, Rows: n}
}
