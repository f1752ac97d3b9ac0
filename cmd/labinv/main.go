package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const (
	configFlag = "config"
	dbFlag     = "db"
	addrFlag   = "addr"
)

var rootFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to the YAML config file (default $LABINV_CONFIG or labinv.yaml)",
	},
	dbFlag: &cobraflags.StringFlag{
		Name:  dbFlag,
		Value: "",
		Usage: "SQLite database path, overrides DB_PATH",
	},
	addrFlag: &cobraflags.StringFlag{
		Name:  addrFlag,
		Value: "",
		Usage: "Listen address, overrides LISTEN_ADDR",
	},
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "labinv",
		Short: "Laboratory stock inventory",
		Long: `labinv tracks stock preparations across temperature zones.

Available commands:
  serve    - Run the JSON API server
  export   - Write every record as CSV or XLSX
  import   - Load records from a CSV export
  legacy   - Inspect and migrate records still on grid addresses`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newLegacyCommand())
	return rootCmd
}

// withAppFlags registers the flags newApp reads on a command that opens the
// database.
func withAppFlags(cmd *cobra.Command) *cobra.Command {
	cobraflags.RegisterMap(cmd, rootFlags)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
