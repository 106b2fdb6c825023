package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flatironinstitute/cephdu/internal/attr"
	"github.com/flatironinstitute/cephdu/internal/nav"
	"github.com/flatironinstitute/cephdu/internal/tree"
	"github.com/flatironinstitute/cephdu/internal/tui"
)

func run(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")

	if err := validateOptions(output, viper.GetInt(workersKey), viper.GetString(sortKey)); err != nil {
		return err
	}

	field, _ := tree.ParseSortField(viper.GetString(sortKey))
	sort := tree.Sort{Field: field, Descending: viper.GetBool(descendingKey)}

	path := viper.GetString(rootKey)
	explicit := len(args) > 0

	if explicit {
		path = args[0]
	}

	newBuilder := func(store *tree.Store) *tree.Builder {
		builder := tree.NewBuilder(store, attr.FS{}, viper.GetInt(workersKey), viper.GetBool(approximateKey))
		if viper.GetBool(debugKey) {
			builder.EnableDebug()
		}

		return builder
	}

	ctx := cmd.Context()
	store := tree.NewStore()
	builder := newBuilder(store)

	_, err := builder.Root(ctx, path)
	if err != nil && !explicit {
		// The configured default may not exist on this machine; fall back
		// to the current directory before giving up.
		fmt.Fprintf(os.Stderr, "Warning: %v, falling back to the current directory\n", err)

		store = tree.NewStore()
		builder = newBuilder(store)
		_, err = builder.Root(ctx, ".")
	}

	if err != nil {
		// The one fatal path: a session has nowhere to start.
		return err
	}

	navigator := nav.New(store, builder, sort)

	interactive := !nonInteractive &&
		output == "table" &&
		isatty.IsTerminal(os.Stdout.Fd())

	if interactive {
		return tui.New(navigator, cmd.Version).Run(ctx)
	}

	snap, snapErr := navigator.Snapshot(ctx)
	if snapErr != nil {
		return snapErr
	}

	report := NewReport(snap)

	if output == "json" {
		return PrintJSON(report, os.Stdout)
	}

	return PrintTable(report, os.Stdout)
}
