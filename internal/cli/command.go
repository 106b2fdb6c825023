// Package cli wires flags, configuration and the terminal front end
// together. Configuration is layered viper-style: defaults, then an
// optional ~/.cephdu.yaml, then CEPHDU_* environment variables, then flags.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flatironinstitute/cephdu/internal/tree"
)

const (
	rootKey        = "root"
	sortKey        = "sort"
	descendingKey  = "descending"
	workersKey     = "workers"
	approximateKey = "approximate"
	debugKey       = "debug"
)

var cfgFile string

// New builds the root command.
func New(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cephdu [path]",
		Short: "Interactive Ceph space and file-count usage browser",
		Long: heredoc.Doc(`
			cephdu displays space and file count (inode) usage of a CephFS
			directory tree in an interactive terminal browser.

			CephFS maintains recursive byte and entry counts as directory
			metadata, so cephdu never crawls the tree: opening a directory is
			one listing call plus one O(1) attribute query per entry.

			Without a path argument the configured root directory is opened
			(default /mnt/ceph/users/$USER), falling back to the current
			directory. When stdout is not a terminal, or with
			--non-interactive, the top level is printed once as a table or
			JSON instead of entering the browser.
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cephdu.yaml)")
	cmd.Flags().String("sort", "bytes", "Initial sort field: bytes, entries, name or owner")
	cmd.Flags().Bool("descending", true, "Sort largest first")
	cmd.Flags().IntP("workers", "w", tree.DefaultWorkers, "Parallel attribute queries per directory")
	cmd.Flags().Bool("approximate", false, "Approximate missing recursive attributes from one level of children")
	cmd.Flags().Bool("debug", false, "Enable debug output on stderr")
	cmd.Flags().StringP("output", "o", "table", "Non-interactive output format: table or json")
	cmd.Flags().BoolP("non-interactive", "n", false, "Print the top level once instead of entering the browser")

	must(viper.BindPFlag(sortKey, cmd.Flags().Lookup("sort")))
	must(viper.BindPFlag(descendingKey, cmd.Flags().Lookup("descending")))
	must(viper.BindPFlag(workersKey, cmd.Flags().Lookup("workers")))
	must(viper.BindPFlag(approximateKey, cmd.Flags().Lookup("approximate")))
	must(viper.BindPFlag(debugKey, cmd.Flags().Lookup("debug")))

	viper.SetDefault(rootKey, filepath.Join("/mnt/ceph/users", os.Getenv("USER")))
	viper.SetDefault(sortKey, "bytes")
	viper.SetDefault(descendingKey, true)
	viper.SetDefault(workersKey, tree.DefaultWorkers)
	viper.SetDefault(approximateKey, false)
	viper.SetDefault(debugKey, false)

	cobra.OnInitialize(initConfig)

	return cmd
}

// Execute runs the CLI with the given build version.
func Execute(version string) error {
	return New(version).Execute()
}

// initConfig reads the optional config file and environment overrides.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cephdu")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	viper.SetEnvPrefix("cephdu")
	viper.AutomaticEnv()
}

// validateOptions rejects bad flag values before any filesystem work.
func validateOptions(output string, workers int, sort string) error {
	allowedOutputs := []string{"table", "json"}
	if !slices.Contains(allowedOutputs, output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", output, allowedOutputs)
	}

	if workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if _, ok := tree.ParseSortField(sort); !ok {
		return fmt.Errorf("invalid sort field %q: must be bytes, entries, name or owner", sort)
	}

	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
