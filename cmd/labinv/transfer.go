package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/vbonduro/labinv/internal/store"
	"github.com/vbonduro/labinv/internal/transfer"
)

const (
	formatFlag = "format"
	outputFlag = "output"
)

var exportFlags = map[string]cobraflags.Flag{
	formatFlag: &cobraflags.StringFlag{
		Name:  formatFlag,
		Value: "csv",
		Usage: "Export format (csv, xlsx)",
	},
	outputFlag: &cobraflags.StringFlag{
		Name:  outputFlag,
		Value: "",
		Usage: "Output file. Defaults to stdout",
	},
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE:  exportCommand,
	}
	cobraflags.RegisterMap(cmd, exportFlags)
	return withAppFlags(cmd)
}

func exportCommand(cmd *cobra.Command, _ []string) error {
	write := transfer.WriteCSV
	switch format := exportFlags[formatFlag].GetString(); format {
	case "csv":
	case "xlsx":
		write = transfer.WriteXLSX
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.services.Records.ListRecords(cmd.Context(), store.RecordFilter{})
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if path := exportFlags[outputFlag].GetString(); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return write(out, records)
}

func newImportCommand() *cobra.Command {
	var skipDuplicates bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Load records from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			rows, err := transfer.ReadCSV(f)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.services.Records.ImportRecords(cmd.Context(), rows, skipDuplicates)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "Skip rows whose name already exists")
	return withAppFlags(cmd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
