package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// NewBriefcasesCommand creates the briefcases command group.
func NewBriefcasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "briefcases",
		Aliases: []string{"briefcase", "bc"},
		Short:   "Manage briefcases",
		Long:    "List, acquire and release the briefcases of an iModel",
	}

	cmd.PersistentFlags().String("imodel", "", "iModel ID")

	cmd.AddCommand(newBriefcasesListCommand())
	cmd.AddCommand(newBriefcasesAcquireCommand())
	cmd.AddCommand(newBriefcasesReleaseCommand())

	return cmd
}

func newBriefcasesListCommand() *cobra.Command {
	var (
		top  int
		mine bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List briefcases",
		Long:  "List the briefcases of an iModel",
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

			params := imodels.NewQueryParams().WithRepresentation(imodels.RepresentationFull)
			if mine {
				params.WithFilter("ownerId", "me")
			}

			list, err := collect(client.Briefcases().List(context.Background(), iModelID, params), top)
			if err != nil {
				return fmt.Errorf("failed to list briefcases: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), list, func(table *tablewriter.Table) {
				table.Header("Briefcase", "Name", "Device", "Owner", "Acquired")

				for _, briefcase := range list {
					_ = table.Append(
						strconv.Itoa(briefcase.BriefcaseID),
						truncate(briefcase.DisplayName),
						valueOrNA(briefcase.DeviceName),
						valueOrNA(briefcase.OwnerID),
						formatTime(briefcase.AcquiredDateTime),
					)
				}
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "maximum number of briefcases to list")
	cmd.Flags().BoolVar(&mine, "mine", false, "only briefcases owned by the current user")

	return cmd
}

func newBriefcasesAcquireCommand() *cobra.Command {
	var deviceName string

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire a new briefcase",
		Long:  "Acquire a new briefcase id for the current user",
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

			briefcase, err := client.Briefcases().Acquire(context.Background(), iModelID, &imodels.BriefcaseAcquireRequest{
				DeviceName: deviceName,
			})
			if err != nil {
				return fmt.Errorf("failed to acquire briefcase: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), briefcase, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Briefcase", strconv.Itoa(briefcase.BriefcaseID))
				_ = table.Append("Name", briefcase.DisplayName)
				_ = table.Append("Device", valueOrNA(briefcase.DeviceName))
				_ = table.Append("Acquired", formatTime(briefcase.AcquiredDateTime))
			})
		},
	}

	cmd.Flags().StringVar(&deviceName, "device", "", "device name recorded with the briefcase")

	return cmd
}

func newBriefcasesReleaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release BRIEFCASE_ID",
		Short: "Release a briefcase",
		Long:  "Release a briefcase and every lock it holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iModelID, err := requireIModel(cmd)
			if err != nil {
				return err
			}

			briefcaseID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid briefcase id %q: %w", args[0], err)
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			err = client.Briefcases().Release(context.Background(), iModelID, briefcaseID)
			if err != nil {
				return fmt.Errorf("failed to release briefcase: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Released briefcase %d\n", briefcaseID)

			return nil
		},
	}
}
