// Package prefs is the typed key/value layer for the small pieces of state the front end
// keeps between sessions: token, current scenario, run history and so on. Values are stored
// as versioned envelopes so the layout can change without breaking old entries.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

type Key string

const (
	KeyToken               Key = "token"
	KeyRole                Key = "role"
	KeyPlan                Key = "plan"
	KeyUserName            Key = "userName"
	KeyCurrentScenario     Key = "currentScenario"
	KeyCurrentScenarioName Key = "currentScenarioName"
	KeyReports             Key = "reports"
	KeySimulationRuns      Key = "simulation_runs"
	KeyScenarios           Key = "forc_scenarios"
	KeyBaselineRunID       Key = "baselineRunId"
)

// SchemaVersion is written into every envelope.
const SchemaVersion = 1

var known = map[Key]struct{}{
	KeyToken: {}, KeyRole: {}, KeyPlan: {}, KeyUserName: {},
	KeyCurrentScenario: {}, KeyCurrentScenarioName: {},
	KeyReports: {}, KeySimulationRuns: {}, KeyScenarios: {}, KeyBaselineRunID: {},
}

var (
	ErrNotFound          = constants.ErrDBNotFound
	ErrUnsupportedSchema = errors.New("prefs: unsupported schema version")
)

func ParseKey(s string) (Key, error) {
	k := Key(s)
	if _, ok := known[k]; !ok {
		return "", fmt.Errorf("%w: %q", constants.ErrUnknownPrefKey, s)
	}
	return k, nil
}

// Engine is the raw storage under a Store. Implementations return ErrNotFound for a
// missing key.
type Engine interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, raw []byte) error
	Remove(ctx context.Context, key string) error
}

// Store is the typed interface all call sites use.
type Store interface {
	Get(ctx context.Context, key Key, dst interface{}) error
	Set(ctx context.Context, key Key, value interface{}) error
	Delete(ctx context.Context, key Key) error
}

type envelope struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

type store struct {
	engine Engine
}

func New(engine Engine) Store {
	return &store{engine: engine}
}

func (s *store) Get(ctx context.Context, key Key, dst interface{}) error {
	if _, ok := known[key]; !ok {
		return fmt.Errorf("%w: %q", constants.ErrUnknownPrefKey, key)
	}

	raw, err := s.engine.Load(ctx, string(key))
	if err != nil {
		return err
	}

	data, err := unwrap(raw)
	if err != nil {
		return fmt.Errorf("prefs %s: %w", key, err)
	}

	if err := sonic.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("prefs %s: decode: %w", key, err)
	}

	return nil
}

func (s *store) Set(ctx context.Context, key Key, value interface{}) error {
	if _, ok := known[key]; !ok {
		return fmt.Errorf("%w: %q", constants.ErrUnknownPrefKey, key)
	}

	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("prefs %s: encode: %w", key, err)
	}

	raw, err := sonic.Marshal(envelope{V: SchemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("prefs %s: encode envelope: %w", key, err)
	}

	return s.engine.Save(ctx, string(key), raw)
}

func (s *store) Delete(ctx context.Context, key Key) error {
	if _, ok := known[key]; !ok {
		return fmt.Errorf("%w: %q", constants.ErrUnknownPrefKey, key)
	}
	return s.engine.Remove(ctx, string(key))
}

// unwrap accepts current envelopes and bare legacy values written before versioning.
func unwrap(raw []byte) ([]byte, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err == nil && env.V > 0 && env.Data != nil {
		if env.V > SchemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, env.V)
		}
		return env.Data, nil
	}
	return raw, nil
}
