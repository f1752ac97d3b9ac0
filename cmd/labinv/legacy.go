package main

import (
	"fmt"
	"strconv"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const (
	regionFlag = "region"
	zoneFlag   = "zone"
)

var migrateFlags = map[string]cobraflags.Flag{
	regionFlag: &cobraflags.StringFlag{
		Name:  regionFlag,
		Value: "",
		Usage: "Target region id (required)",
	},
}

var summaryFlags = map[string]cobraflags.Flag{
	zoneFlag: &cobraflags.StringFlag{
		Name:  zoneFlag,
		Value: "",
		Usage: "Limit the summary to one temperature zone",
	},
}

func newLegacyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Inspect and migrate records still on grid addresses",
	}

	groupsCmd := &cobra.Command{
		Use:   "groups <zone>",
		Short: "List grid-addressed records grouped by cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.services.Reconciler.GroupLegacyRecords(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), groups)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate <record-id>...",
		Short: "Move grid-addressed records into a region",
		Args:  cobra.MinimumNArgs(1),
		RunE:  migrateCommand,
	}
	cobraflags.RegisterMap(migrateCmd, migrateFlags)

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Count records by addressing scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.services.Reconciler.Summary(cmd.Context(), summaryFlags[zoneFlag].GetString())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	cobraflags.RegisterMap(summaryCmd, summaryFlags)

	cmd.AddCommand(withAppFlags(groupsCmd), withAppFlags(migrateCmd), withAppFlags(summaryCmd))
	return cmd
}

func migrateCommand(cmd *cobra.Command, args []string) error {
	regionID, err := strconv.ParseInt(migrateFlags[regionFlag].GetString(), 10, 64)
	if err != nil {
		return fmt.Errorf("--%s must be a region id", regionFlag)
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.services.Reconciler.Migrate(cmd.Context(), ids, regionID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid record id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
