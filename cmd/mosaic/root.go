// The mosaic command inspects compiled templates and scaffolds component
// definitions.
//
// Configuration resolves through multiple sources with clear precedence:
//  1. Command-line flags (--output, --log-level, etc.) - highest priority
//  2. MOSAIC_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (MOSAIC_PREVIEW_PORT, etc.)
//  4. Configuration files (.mosaic.yml) - lowest priority
//
// Environment variables follow the MOSAIC_<SECTION>_<OPTION> pattern:
//
//	MOSAIC_CONFIG_FILE: Path to custom configuration file
//	MOSAIC_LOG_LEVEL: Override log level
//	MOSAIC_MARKUP_OUTPUT: Default inspect output format
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atilaykosker/Mosaic/internal/logging"
)

var cfgFile string

// cliLogger is rebuilt from the resolved config before any command runs.
var cliLogger logging.Logger = logging.NewNopLogger()

var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "Tooling for the Mosaic compile-once, patch-many template engine",
	Long: `Mosaic compiles HTML templates once and patches only the slots whose
values changed. This tool works on templates outside a running program.

Commands:
  mosaic inspect '<h1 class="' '">' '</h1>'   Show compiled markup and slots
  mosaic new my-counter                       Scaffold a component definition
  mosaic version                              Show build information

Documentation: https://github.com/atilaykosker/Mosaic`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cliLogger = logging.NewLogger(&logging.LoggerConfig{
			Level:  logging.ParseLevel(viper.GetString("log.level")),
			Format: viper.GetString("log.format"),
			Output: os.Stderr,
		})
	},
}

// Execute runs the root command with all subcommands attached.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .mosaic.yml, can also use MOSAIC_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig wires the config sources in precedence order: the --config
// flag, then MOSAIC_CONFIG_FILE, then .mosaic.yml in the current
// directory. A missing file is not an error; env vars and flags still
// apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MOSAIC_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mosaic")
	}

	viper.SetEnvPrefix("MOSAIC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
