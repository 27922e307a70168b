package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/prefs"
	"github.com/ougirez/supplytwin/internal/service/simulation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCmd() *cobra.Command {
	var dir, scenarioFile, name string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a simulation run straight to the backend",
		Long: `Reads the six input CSVs from --dir, applies the optional scenario, submits the run
and prints the run record, the per-file transform report and the output status as JSON.
The run is appended to the local run history in the prefs file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			files, err := readInputs(dir)
			if err != nil {
				return err
			}

			req := simulation.SubmitRequest{
				Name:  name,
				Files: make(map[string]simulation.Upload, len(files)),
			}
			for file, data := range files {
				req.Files[file] = simulation.Upload{Filename: file + ".csv", Data: data}
			}

			if scenarioFile != "" {
				if req.Scenario, err = loadScenario(scenarioFile); err != nil {
					return err
				}
				req.ScenarioName = strings.TrimSuffix(filepath.Base(scenarioFile), filepath.Ext(scenarioFile))
			}

			path, err := prefsPath()
			if err != nil {
				return err
			}
			store := prefs.New(prefs.NewFileEngine(path))

			var token string
			if err := store.Get(ctx, prefs.KeyToken, &token); err != nil && !errors.Is(err, prefs.ErrNotFound) {
				return err
			}
			req.AuthToken = token

			client, err := newBackendClient()
			if err != nil {
				return err
			}

			svc := simulation.NewService(client, prefs.NewRunLog(store, prefs.DefaultRunLogLimit), nil, simulation.Config{})
			result, err := svc.Submit(ctx, req)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory with demand.csv, disruptions.csv, locations.csv, processes.csv, bom.csv and location_materials.csv")
	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (.yaml or .json)")
	cmd.Flags().StringVar(&name, "name", "", "run name")

	return cmd
}

// prefsPath is prefs.file when set, otherwise supplytwin/prefs.json under the user config dir.
func prefsPath() (string, error) {
	if p := viper.GetString(constants.ViperPrefsFile); p != "" {
		return p, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "supplytwin", "prefs.json"), nil
}
