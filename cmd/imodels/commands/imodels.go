package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// NewIModelsCommand creates the imodels command group.
func NewIModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "imodels",
		Aliases: []string{"imodel"},
		Short:   "Browse iModels",
		Long:    "List and inspect the iModels of an iTwin",
	}

	cmd.AddCommand(newIModelsListCommand())
	cmd.AddCommand(newIModelsGetCommand())

	return cmd
}

func newIModelsListCommand() *cobra.Command {
	var (
		iTwinID string
		top     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List iModels",
		Long:  "List the iModels of an iTwin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iTwinID == "" {
				return constants.ErrITwinIDRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			params := imodels.NewQueryParams().WithRepresentation(imodels.RepresentationFull)

			list, err := collect(client.IModels().List(context.Background(), iTwinID, params), top)
			if err != nil {
				return fmt.Errorf("failed to list iModels: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), list, func(table *tablewriter.Table) {
				table.Header("ID", "Name", "State", "Created")

				for _, iModel := range list {
					_ = table.Append(iModel.ID, truncate(iModel.DisplayName), titleCase(string(iModel.State)), formatTime(iModel.CreatedDateTime))
				}
			})
		},
	}

	cmd.Flags().StringVar(&iTwinID, "itwin", "", "iTwin ID")
	cmd.Flags().IntVar(&top, "top", 0, "maximum number of iModels to list")

	return cmd
}

func newIModelsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get IMODEL_ID",
		Short: "Get iModel details",
		Long:  "Display detailed information about a specific iModel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			iModel, err := client.IModels().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get iModel: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), iModel, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", iModel.ID)
				_ = table.Append("Name", iModel.DisplayName)
				_ = table.Append("Description", valueOrNA(truncate(iModel.Description)))
				_ = table.Append("State", titleCase(string(iModel.State)))
				_ = table.Append("iTwin", valueOrNA(iModel.ITwinID))
				_ = table.Append("Created", formatTime(iModel.CreatedDateTime))
			})
		},
	}
}
