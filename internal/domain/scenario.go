package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type ScenarioMeta struct {
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Notes     string    `json:"notes,omitempty" yaml:"notes"`
}

type ScenarioScope struct {
	Facility        string   `json:"facility,omitempty" yaml:"facility"`
	StartDate       string   `json:"start_date,omitempty" yaml:"start_date"`
	EndDate         string   `json:"end_date,omitempty" yaml:"end_date"`
	DisruptionTypes []string `json:"disruption_types,omitempty" yaml:"disruption_types"`
	Severity        float64  `json:"severity" yaml:"severity"`
	SourcingMode    string   `json:"sourcing_mode,omitempty" yaml:"sourcing_mode"`
}

// DemandTransform scales demand. A missing multiplier means no change.
type DemandTransform struct {
	Multiplier *float64 `json:"multiplier,omitempty" yaml:"multiplier"`
}

type InjectedDisruption struct {
	Type      string   `json:"type" yaml:"type"`
	Facility  string   `json:"facility" yaml:"facility"`
	StartDate string   `json:"start_date" yaml:"start_date"`
	EndDate   string   `json:"end_date" yaml:"end_date"`
	Severity  *float64 `json:"severity,omitempty" yaml:"severity"`
}

type SupplyTransform struct {
	CapacityMultiplier *float64 `json:"capacity_multiplier,omitempty" yaml:"capacity_multiplier"`
}

type ScenarioTransforms struct {
	Demand       *DemandTransform     `json:"demand,omitempty" yaml:"demand"`
	Disruptions  []InjectedDisruption `json:"disruptions,omitempty" yaml:"disruptions"`
	Supply       *SupplyTransform     `json:"supply,omitempty" yaml:"supply"`
	SourcingMode string               `json:"sourcing_mode,omitempty" yaml:"sourcing_mode"`
}

// ScenarioPayload is a what-if description applied to the uploaded inputs before a run.
type ScenarioPayload struct {
	Meta       ScenarioMeta       `json:"meta" yaml:"meta"`
	Scope      ScenarioScope      `json:"scope" yaml:"scope"`
	Transforms ScenarioTransforms `json:"transforms" yaml:"transforms"`
}

// ClampSeverity keeps every severity inside 0..100. NaN becomes 0.
func (p *ScenarioPayload) ClampSeverity() {
	p.Scope.Severity = clamp(p.Scope.Severity, 0, 100)
	for i := range p.Transforms.Disruptions {
		if s := p.Transforms.Disruptions[i].Severity; s != nil {
			v := clamp(*s, 0, 100)
			p.Transforms.Disruptions[i].Severity = &v
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type Scenario struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Name      string          `db:"name" json:"name"`
	Payload   ScenarioPayload `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
