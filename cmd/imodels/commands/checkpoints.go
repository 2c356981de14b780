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

// NewCheckpointsCommand creates the checkpoints command group.
func NewCheckpointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checkpoints",
		Aliases: []string{"checkpoint", "cp"},
		Short:   "Find checkpoints",
		Long:    "Find the checkpoints of an iModel",
	}

	cmd.PersistentFlags().String("imodel", "", "iModel ID")

	cmd.AddCommand(newCheckpointsGetCommand())
	cmd.AddCommand(newCheckpointsResolveCommand())

	return cmd
}

func newCheckpointsGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get the checkpoint of a changeset",
		Long:  "Display the checkpoint generated exactly at the changeset selected by --id or --index",
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

			checkpoint, err := client.Checkpoints().Get(context.Background(), iModelID, ref)
			if err != nil {
				return fmt.Errorf("failed to get checkpoint: %w", err)
			}

			return renderCheckpoint(cmd, checkpoint)
		},
	}

	addChangesetRefFlags(cmd)

	return cmd
}

func newCheckpointsResolveCommand() *cobra.Command {
	var v1, v2 bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the nearest preceding checkpoint",
		Long: `Find the nearest checkpoint at or before the changeset selected by --id or
--index. Use --v1 for checkpoints downloadable as a single file or --v2 for
container-backed checkpoints.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			iModelID, err := requireIModel(cmd)
			if err != nil {
				return err
			}

			ref, err := changesetRefFromFlags(cmd)
			if err != nil {
				return err
			}

			acceptable, err := checkpointPredicate(v1, v2)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			checkpoint, err := client.Checkpoints().GetCurrentOrPreceding(context.Background(), iModelID, ref, acceptable)
			if err != nil {
				return fmt.Errorf("failed to resolve checkpoint: %w", err)
			}

			if checkpoint == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No checkpoint found")

				return nil
			}

			return renderCheckpoint(cmd, checkpoint)
		},
	}

	addChangesetRefFlags(cmd)
	cmd.Flags().BoolVar(&v1, "v1", false, "only checkpoints downloadable as a single file")
	cmd.Flags().BoolVar(&v2, "v2", false, "only container-backed checkpoints")

	return cmd
}

// checkpointPredicate selects the checkpoint kind; no flag accepts any.
func checkpointPredicate(v1, v2 bool) (imodels.CheckpointPredicate, error) {
	switch {
	case v1 && v2:
		return nil, constants.ErrInvalidCheckpointKind
	case v1:
		return imodels.HasV1Checkpoint, nil
	case v2:
		return imodels.HasV2Checkpoint, nil
	default:
		return nil, nil
	}
}

func renderCheckpoint(cmd *cobra.Command, checkpoint *imodels.Checkpoint) error {
	return renderOutput(cmd.OutOrStdout(), checkpoint, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Changeset Index", strconv.Itoa(checkpoint.ChangesetIndex))
		_ = table.Append("Changeset ID", valueOrNA(checkpoint.ChangesetID))
		_ = table.Append("State", titleCase(string(checkpoint.State)))
		_ = table.Append("V1 (file)", strconv.FormatBool(imodels.HasV1Checkpoint(checkpoint)))
		_ = table.Append("V2 (container)", strconv.FormatBool(imodels.HasV2Checkpoint(checkpoint)))

		if checkpoint.DirectoryAccessInfo != nil {
			_ = table.Append("Container", truncate(checkpoint.DirectoryAccessInfo.Storage.BaseURL+"/"+checkpoint.DirectoryAccessInfo.BaseDirectory))
		}
	})
}
