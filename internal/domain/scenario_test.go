package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampSeverity(t *testing.T) {
	nan, high, mid := math.NaN(), 250.0, 40.0
	p := ScenarioPayload{
		Scope: ScenarioScope{Severity: math.NaN()},
		Transforms: ScenarioTransforms{Disruptions: []InjectedDisruption{
			{Severity: &nan},
			{Severity: &high},
			{Severity: &mid},
			{},
		}},
	}

	p.ClampSeverity()

	assert.Equal(t, 0.0, p.Scope.Severity)
	assert.Equal(t, 0.0, *p.Transforms.Disruptions[0].Severity)
	assert.Equal(t, 100.0, *p.Transforms.Disruptions[1].Severity)
	assert.Equal(t, 40.0, *p.Transforms.Disruptions[2].Severity)
	assert.Nil(t, p.Transforms.Disruptions[3].Severity)
}

func TestClampSeverityNegative(t *testing.T) {
	p := ScenarioPayload{Scope: ScenarioScope{Severity: -5}}
	p.ClampSeverity()
	assert.Equal(t, 0.0, p.Scope.Severity)
}
