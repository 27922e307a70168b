package main

import (
	"os"
	"strings"
	"time"

	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SUPPLYTWIN"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "supplytwin",
		Short: "Digital twin client for the supply-chain simulation backend",
		Long: `supplytwin serves the HTTP API used by the web front end and can drive the
simulation backend directly from the command line.

  supplytwin serve
  supplytwin run --dir ./inputs --scenario port_strike.yaml
  supplytwin transform --scenario port_strike.yaml --in ./inputs --out ./patched
  supplytwin chart --file inventory.csv --output inventory --sku SKU1`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			return logger.Init(viper.GetString(constants.ViperLogLevel))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, constants.ViperConfigFile, "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newTransformCmd(),
		newChartCmd(),
	)

	return root
}

func initConfig(cfgFile string) error {
	viper.SetDefault(constants.ViperServerAddr, ":8080")
	viper.SetDefault(constants.ViperServerAllowedOrigins, []string{"http://localhost:3000"})
	viper.SetDefault(constants.ViperBackendBaseURL, "http://localhost:5000")
	viper.SetDefault(constants.ViperBackendTimeout, 5*time.Minute)
	viper.SetDefault(constants.ViperBackendFetchRetries, 2)
	viper.SetDefault(constants.ViperAuthTokenTTL, 24*time.Hour)
	viper.SetDefault(constants.ViperLogLevel, "info")
	viper.SetDefault(constants.ViperCacheMaxRuns, 32)
	viper.SetDefault(constants.ViperStripeSuccessURL, "http://localhost:3000/billing/success")
	viper.SetDefault(constants.ViperStripeCancelURL, "http://localhost:3000/billing/cancel")
	viper.SetDefault(constants.ViperStripePortalReturnURL, "http://localhost:3000/account")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}

	viper.SetConfigFile(cfgFile)
	return viper.ReadInConfig()
}
