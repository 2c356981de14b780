package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// NewNamedVersionsCommand creates the named-versions command group.
func NewNamedVersionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "named-versions",
		Aliases: []string{"named-version", "nv"},
		Short:   "Manage named versions",
		Long:    "List and create the named versions of an iModel",
	}

	cmd.PersistentFlags().String("imodel", "", "iModel ID")

	cmd.AddCommand(newNamedVersionsListCommand())
	cmd.AddCommand(newNamedVersionsCreateCommand())

	return cmd
}

func newNamedVersionsListCommand() *cobra.Command {
	var (
		top  int
		name string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List named versions",
		Long:  "List the named versions of an iModel",
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
			if name != "" {
				params.WithFilter("name", name)
			}

			list, err := collect(client.NamedVersions().List(context.Background(), iModelID, params), top)
			if err != nil {
				return fmt.Errorf("failed to list named versions: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), list, func(table *tablewriter.Table) {
				table.Header("ID", "Name", "Changeset Index", "State", "Created")

				for _, version := range list {
					_ = table.Append(
						version.ID,
						truncate(version.DisplayName),
						strconv.Itoa(version.ChangesetIndex),
						titleCase(string(version.State)),
						formatTime(version.CreatedDateTime),
					)
				}
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "maximum number of named versions to list")
	cmd.Flags().StringVar(&name, "name", "", "only the named version with this name")

	return cmd
}

func newNamedVersionsCreateCommand() *cobra.Command {
	var (
		name        string
		description string
		changesetID string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a named version",
		Long:  "Name a changeset; without --changeset the baseline is named",
		RunE: func(cmd *cobra.Command, args []string) error {
			iModelID, err := requireIModel(cmd)
			if err != nil {
				return err
			}

			if name == "" {
				return constants.ErrNameRequired
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			version, err := client.NamedVersions().Create(context.Background(), iModelID, &imodels.NamedVersionCreateRequest{
				Name:        name,
				Description: description,
				ChangesetID: changesetID,
			})
			if err != nil {
				return fmt.Errorf("failed to create named version: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), version, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", version.ID)
				_ = table.Append("Name", version.DisplayName)
				_ = table.Append("Changeset ID", valueOrNA(version.ChangesetID))
				_ = table.Append("Changeset Index", strconv.Itoa(version.ChangesetIndex))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the new version")
	cmd.Flags().StringVar(&description, "description", "", "description of the new version")
	cmd.Flags().StringVar(&changesetID, "changeset", "", "changeset ID to name")

	return cmd
}
