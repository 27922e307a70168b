package domain

import "strings"

type OutputKind string

const (
	OutputInventory       OutputKind = "inventory"
	OutputProduction      OutputKind = "production"
	OutputFlow            OutputKind = "flow"
	OutputOccurrence      OutputKind = "occurrence"
	OutputImpact          OutputKind = "impact"
	OutputRisk            OutputKind = "risk"
	OutputCountermeasures OutputKind = "countermeasures"
	OutputLocation        OutputKind = "location"
)

const outputURLSuffix = "_output_file_url"

// OutputKinds lists every output the backend may return, charted kinds first.
var OutputKinds = []OutputKind{
	OutputInventory,
	OutputProduction,
	OutputFlow,
	OutputOccurrence,
	OutputImpact,
	OutputRisk,
	OutputCountermeasures,
	OutputLocation,
}

// ChartKinds are the outputs that have a value column to chart.
var ChartKinds = []OutputKind{OutputInventory, OutputProduction, OutputFlow, OutputOccurrence}

func ParseOutputKind(s string) (OutputKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range OutputKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func (k OutputKind) Charted() bool {
	for _, c := range ChartKinds {
		if c == k {
			return true
		}
	}
	return false
}

// URLKey is the response key the backend uses for this output, e.g. inventory_output_file_url.
func (k OutputKind) URLKey() string {
	return string(k) + outputURLSuffix
}

// OutputURLs maps *_output_file_url keys to remote file URLs for one run.
type OutputURLs map[string]string

func (u OutputURLs) URL(k OutputKind) (string, bool) {
	v, ok := u[k.URLKey()]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// OutputStatus is the per-output fetch outcome; one failed output never hides the others.
type OutputStatus struct {
	Kind      OutputKind `json:"kind"`
	Available bool       `json:"available"`
	Rows      int        `json:"rows"`
	Error     string     `json:"error,omitempty"`
}
