package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"

	// Output formats.
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"

	// JSON formatting.
	defaultJSONIndent = 2

	dateTimeFormat = "2006-01-02 15:04:05"
)

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := viper.GetString("output")

	switch format {
	case "", OutputFormatTable:
		return OutputFormatTable, nil
	case OutputFormatJSON, OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// renderOutput writes value as JSON or YAML, or as the table built by fill.
func renderOutput(writer io.Writer, value interface{}, fill func(table *tablewriter.Table)) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return encoder.Encode(value)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	default:
		table := tablewriter.NewWriter(writer)
		fill(table)

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// titleCase turns API enum values such as "notInitialized" into table text.
func titleCase(value string) string {
	if value == "" {
		return NotAvailable
	}

	return cases.Title(language.English, cases.NoLower).String(value)
}

// truncate shortens text to the table column width.
func truncate(text string) string {
	if len(text) <= constants.TableMaxColumnWidth {
		return text
	}

	return text[:constants.TableMaxColumnWidth-3] + "..."
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return NotAvailable
	}

	return value.Local().Format(dateTimeFormat)
}

// requireIModel returns the --imodel flag value.
func requireIModel(cmd *cobra.Command) (string, error) {
	iModelID, _ := cmd.Flags().GetString("imodel")
	if iModelID == "" {
		return "", constants.ErrIModelIDRequired
	}

	return iModelID, nil
}

// changesetRefFromFlags reads --id or --index.
func changesetRefFromFlags(cmd *cobra.Command) (imodels.ChangesetRef, error) {
	idChanged := cmd.Flags().Changed("id")
	indexChanged := cmd.Flags().Changed("index")

	switch {
	case idChanged && !indexChanged:
		id, _ := cmd.Flags().GetString("id")

		return imodels.ChangesetByID(id), nil
	case indexChanged && !idChanged:
		index, _ := cmd.Flags().GetInt("index")

		return imodels.ChangesetByIndex(index), nil
	default:
		return imodels.ChangesetRef{}, constants.ErrInvalidChangesetRef
	}
}

// changesetRangeFromFlags reads the optional --after and --last flags.
func changesetRangeFromFlags(cmd *cobra.Command) imodels.ChangesetRange {
	var changesets imodels.ChangesetRange

	if cmd.Flags().Changed("after") {
		after, _ := cmd.Flags().GetInt("after")
		changesets.AfterIndex = &after
	}

	if cmd.Flags().Changed("last") {
		last, _ := cmd.Flags().GetInt("last")
		changesets.LastIndex = &last
	}

	return changesets
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("after", 0, "only changesets after this index")
	cmd.Flags().Int("last", 0, "only changesets up to and including this index")
}

// collect drains an iterator, stopping after top items when top is positive.
func collect[T any](iterator *imodels.EntityListIterator[T], top int) ([]T, error) {
	if top > 0 {
		return iterator.Take(top) //nolint:wrapcheck // Iterator errors are already wrapped
	}

	return iterator.ToArray() //nolint:wrapcheck // Iterator errors are already wrapped
}

// stderrLogger writes client log entries to standard error.
type stderrLogger struct {
	writer io.Writer
}

func newStderrLogger() *stderrLogger {
	return &stderrLogger{writer: os.Stderr}
}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var builder strings.Builder

	builder.WriteString(level)
	builder.WriteString(" ")
	builder.WriteString(msg)

	for _, key := range keys {
		fmt.Fprintf(&builder, " %s=%v", key, fields[key])
	}

	_, _ = fmt.Fprintln(l.writer, builder.String())
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l *stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l *stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l *stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }

var _ imodels.Logger = (*stderrLogger)(nil)
