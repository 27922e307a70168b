package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/service/scenario"
	"gopkg.in/yaml.v3"
)

// loadScenario reads a scenario payload from a .json file or, for anything else, YAML.
func loadScenario(path string) (*domain.ScenarioPayload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var payload domain.ScenarioPayload
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = sonic.Unmarshal(raw, &payload)
	default:
		err = yaml.Unmarshal(raw, &payload)
	}
	if err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", filepath.Base(path), err)
	}

	payload.ClampSeverity()
	return &payload, nil
}

// readInputs loads <name>.csv for every input file present in dir. Absent files are left out.
func readInputs(dir string) (map[string][]byte, error) {
	files := make(map[string][]byte, len(scenario.RequiredFiles))
	for _, name := range scenario.RequiredFiles {
		data, err := os.ReadFile(filepath.Join(dir, name+".csv"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		files[name] = data
	}
	return files, nil
}

func printJSON(w interface{ Write([]byte) (int, error) }, v interface{}) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}
