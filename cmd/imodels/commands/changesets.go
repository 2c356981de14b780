package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// NewChangesetsCommand creates the changesets command group.
func NewChangesetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "changesets",
		Aliases: []string{"changeset", "cs"},
		Short:   "Browse and download changesets",
		Long:    "List, inspect and download the changesets of an iModel",
	}

	cmd.PersistentFlags().String("imodel", "", "iModel ID")

	cmd.AddCommand(newChangesetsListCommand())
	cmd.AddCommand(newChangesetsGetCommand())
	cmd.AddCommand(newChangesetsDownloadCommand())

	return cmd
}

func newChangesetsListCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List changesets",
		Long:  "List the changesets of an iModel in index order",
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

			params := imodels.NewQueryParams().
				WithRepresentation(imodels.RepresentationFull).
				WithRange(changesetRangeFromFlags(cmd))

			list, err := collect(client.Changesets().List(context.Background(), iModelID, params), top)
			if err != nil {
				return fmt.Errorf("failed to list changesets: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), list, func(table *tablewriter.Table) {
				table.Header("Index", "ID", "Description", "Changes", "Briefcase", "Pushed")

				for _, changeset := range list {
					_ = table.Append(
						strconv.Itoa(changeset.Index),
						changeset.ID,
						truncate(changeset.Description),
						changeset.ContainingChanges.String(),
						strconv.Itoa(changeset.BriefcaseID),
						formatTime(changeset.PushDateTime),
					)
				}
			})
		},
	}

	addRangeFlags(cmd)
	cmd.Flags().IntVar(&top, "top", 0, "maximum number of changesets to list")

	return cmd
}

func newChangesetsGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get changeset details",
		Long:  "Display a changeset selected by --id or --index",
		RunE: func(cmd *cobra.Command, args []string) error {
			iModelID, err := requireIModel(cmd)
			if err != nil {
				return err
			}

			ref, err := changesetRefFromFlags(cmd)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			changeset, err := client.Changesets().Get(context.Background(), iModelID, ref)
			if err != nil {
				return fmt.Errorf("failed to get changeset: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), changeset, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", changeset.ID)
				_ = table.Append("Index", strconv.Itoa(changeset.Index))
				_ = table.Append("Parent ID", valueOrNA(changeset.ParentID))
				_ = table.Append("Description", valueOrNA(truncate(changeset.Description)))
				_ = table.Append("Changes", changeset.ContainingChanges.String())
				_ = table.Append("Briefcase", strconv.Itoa(changeset.BriefcaseID))
				_ = table.Append("File Size", strconv.FormatInt(changeset.FileSize, 10))
				_ = table.Append("State", titleCase(string(changeset.State)))
				_ = table.Append("Pushed", formatTime(changeset.PushDateTime))
			})
		},
	}

	addChangesetRefFlags(cmd)

	return cmd
}

func newChangesetsDownloadCommand() *cobra.Command {
	var targetDir string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download changesets",
		Long:  "Download the changeset files of an index range into a directory",
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

			downloaded, err := client.Changesets().DownloadList(context.Background(), iModelID, changesetRangeFromFlags(cmd), targetDir)
			if err != nil {
				return fmt.Errorf("failed to download changesets: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), downloaded, func(table *tablewriter.Table) {
				table.Header("Index", "ID", "File")

				for _, changeset := range downloaded {
					_ = table.Append(strconv.Itoa(changeset.Index), changeset.ID, changeset.FilePath)
				}
			})
		},
	}

	addRangeFlags(cmd)
	cmd.Flags().StringVarP(&targetDir, "dir", "d", ".", "directory to download into")

	return cmd
}

func addChangesetRefFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "changeset ID")
	cmd.Flags().Int("index", 0, "changeset index, 0 is the baseline")
}
