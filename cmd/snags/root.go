// Root command for the snags CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/snags/internal/paths"
)

// version is stamped by the build; see magefiles.
var version = "0.2.0"

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagBackupDir string
	flagJSON      bool
	flagVerbose   bool
)

// Directory values loaded from config.yaml, set by PersistentPreRunE so
// all subcommands can use them.
var (
	configDataDir   string
	configBackupDir string
)

var rootCmd = &cobra.Command{
	Use:           "snags",
	Short:         "Snags is a local tracker for short-lived issues",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configBackupDir = cfg.GetString(cfgKeyBackupDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.snags-db)")
	rootCmd.PersistentFlags().StringVar(&flagBackupDir, "backup-dir", "", "backup directory (default: <data-dir>/backups)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(statsCmd)
}

// resolveConfigDir returns the configuration directory following the
// precedence chain: --config-dir flag > SNAGS_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir returns the data directory following the precedence chain:
// --data-dir flag > config.yaml data_dir > SNAGS_DATA_DIR env > CWD default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveBackupDir returns the backup directory override, empty for the
// engine default.
func resolveBackupDir() (string, error) {
	return paths.ResolveBackupDir(flagBackupDir, configBackupDir)
}
