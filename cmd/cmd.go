package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces overrides of config.yml keys, e.g. HOSTEL_DATABASE_SOURCE.
const envPrefix = "HOSTEL"

var (
	configDir string
	clearData bool
)

var rootCmd = &cobra.Command{
	Use:           "hostel-management",
	Short:         "Hostel Management",
	Long:          `Student registration, hostel allocation and staff administration for the college hostels.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fromEnvironment reports whether the process runs in a container that carries
// its settings as plain environment variables.
func fromEnvironment() bool {
	return os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true"
}

func loadConfig() (*internal.Config, error) {
	var cfg *internal.Config
	if fromEnvironment() {
		cfg = internal.LoadConfigFromEnv()
	} else {
		v := viper.New()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s/config.yml: %w", configDir, err)
		}
		cfg = &internal.Config{}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd, migrateCmd, seedCmd)
}
