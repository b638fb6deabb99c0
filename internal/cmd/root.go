package cmd

import (
	"fmt"
	"strings"

	configcmd "github.com/Iron-Ham/adaptui/internal/cmd/config"
	"github.com/Iron-Ham/adaptui/internal/config"
	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "adaptui",
	Short: "Adaptive UI layout scheduler",
	Long: `adaptui watches the cost of a UI layout and decides when to optimize it
and when the improvement is worth applying. It runs a simulated scene of
elements whose ideal positions drift over time, so the scheduler's
decisions can be observed end to end.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return configErr
	},
}

// configErr is the config file read failure, reported before any command
// runs.
var configErr error

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/adaptui/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	configcmd.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ADAPTUI")
	// Replace dots with underscores for nested keys in env vars
	// e.g., ADAPTUI_TRIGGER_PERIOD for trigger.period
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	configErr = readConfig(cfgFile != "")
}

// readConfig reads the config file. A missing file is only an error when
// it was named explicitly; otherwise the defaults apply.
func readConfig(explicit bool) error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !explicit && errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read config: %w", err)
}
