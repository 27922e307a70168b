package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ougirez/supplytwin/internal/service/scenario"
	"github.com/spf13/cobra"
)

func newTransformCmd() *cobra.Command {
	var scenarioFile, inDir, outDir string

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Apply a scenario to local input CSVs",
		Long: `Reads the input CSVs from --in, applies the scenario transforms and writes every
file to --out. Files a transform could not be applied to are copied unchanged; the
per-file report is printed as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := loadScenario(scenarioFile)
			if err != nil {
				return err
			}

			files, err := readInputs(inDir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no input csv files found in %s", inDir)
			}

			form := scenario.NewForm()
			for _, name := range scenario.RequiredFiles {
				if data, ok := files[name]; ok {
					form.Set(name, name+".csv", data)
				}
			}

			reports := scenario.ApplyScenario(cmd.Context(), form, payload)

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, field := range form.Fields() {
				if field.Filename == "" {
					continue
				}
				target := filepath.Join(outDir, filepath.Base(field.Filename))
				if err := os.WriteFile(target, field.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
			}

			return printJSON(cmd.OutOrStdout(), reports)
		},
	}

	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (.yaml or .json)")
	cmd.Flags().StringVar(&inDir, "in", ".", "directory with the input CSVs")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write the transformed CSVs to")
	_ = cmd.MarkFlagRequired("scenario")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
