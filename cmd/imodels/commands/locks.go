package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// NewLocksCommand creates the locks command group.
func NewLocksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locks",
		Aliases: []string{"lock"},
		Short:   "Inspect locks",
		Long:    "List the object locks held by the briefcases of an iModel",
	}

	cmd.PersistentFlags().String("imodel", "", "iModel ID")

	cmd.AddCommand(newLocksListCommand())

	return cmd
}

func newLocksListCommand() *cobra.Command {
	var briefcaseID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locks",
		Long:  "List locks, optionally only those of one briefcase",
		RunE: func(cmd *cobra.Command, args []string) error {
			iModelID, err := requireIModel(cmd)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			params := imodels.NewQueryParams()
			if cmd.Flags().Changed("briefcase") {
				params.WithFilter("briefcaseId", strconv.Itoa(briefcaseID))
			}

			list, err := client.Locks().List(context.Background(), iModelID, params).ToArray()
			if err != nil {
				return fmt.Errorf("failed to list locks: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), list, func(table *tablewriter.Table) {
				table.Header("Briefcase", "Level", "Objects")

				for _, lock := range list {
					for _, objects := range lock.LockedObjects {
						_ = table.Append(
							strconv.Itoa(lock.BriefcaseID),
							titleCase(string(objects.LockLevel)),
							truncate(strings.Join(objects.ObjectIDs, ", ")),
						)
					}
				}
			})
		},
	}

	cmd.Flags().IntVar(&briefcaseID, "briefcase", 0, "only locks held by this briefcase")

	return cmd
}
