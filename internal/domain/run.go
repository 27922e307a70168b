package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run is the record kept after each successful submission. It is never mutated, only
// deleted.
type Run struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	UserID       int64            `db:"user_id" json:"user_id"`
	Name         string           `db:"name" json:"name"`
	Timestamp    time.Time        `db:"created_at" json:"timestamp"`
	URLs         OutputURLs       `db:"urls" json:"urls"`
	KPIs         KPIs             `db:"kpis" json:"kpis"`
	Scenario     *ScenarioPayload `db:"scenario" json:"scenario,omitempty"`
	ScenarioID   *uuid.UUID       `db:"scenario_id" json:"scenario_id,omitempty"`
	ScenarioName string           `db:"scenario_name" json:"scenario_name,omitempty"`
}
