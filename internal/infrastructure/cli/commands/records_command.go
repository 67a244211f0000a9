package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

// NewRecordsCommand creates the records command with all subcommands
func NewRecordsCommand(deps *Deps) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect recorded generations",
	}

	recordsCmd.AddCommand(
		newRecordsListCommand(deps),
		newRecordsSearchCommand(deps),
		newRecordsShowCommand(deps),
		newRecordsExportCommand(deps),
	)

	return recordsCmd
}

// newRecordsListCommand creates the 'records list' subcommand
func newRecordsListCommand(deps *Deps) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent records across all channels, deleted ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return errors.New(ErrInvalidLimit)
			}
			return listRecords(cmd.Context(), cmd.OutOrStdout(), deps, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultRecordsLimit, "Max records to show")
	return cmd
}

// newRecordsSearchCommand creates the 'records search' subcommand
func newRecordsSearchCommand(deps *Deps) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search [substring]",
		Short: "Search the listing exactly as the web page does",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			substring := ""
			if len(args) == 1 {
				substring = args[0]
			}
			return searchRecords(cmd.Context(), cmd.OutOrStdout(), deps, substring, page)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-indexed)")
	return cmd
}

// newRecordsShowCommand creates the 'records show' subcommand
func newRecordsShowCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <message-id>",
		Short: "Show the record for a message id as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRecord(cmd.Context(), cmd.OutOrStdout(), deps, args[0])
		},
	}
}

// newRecordsExportCommand creates the 'records export' subcommand
func newRecordsExportCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export all records to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportRecords(cmd.Context(), cmd.OutOrStdout(), deps, args[0])
		},
	}
}

// listRecords prints the newest records
func listRecords(ctx context.Context, out io.Writer, deps *Deps, limit int) error {
	container, err := deps.Container(ctx)
	if err != nil {
		return err
	}
	if container.Store == nil {
		return errors.New(ErrRecordStoreUnavailable)
	}

	records, err := container.Store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoRecords)
		return nil
	}

	for _, rec := range records {
		writeRecordLine(out, rec)
	}
	return nil
}

// searchRecords prints one listing page
func searchRecords(ctx context.Context, out io.Writer, deps *Deps, substring string, page int) error {
	container, err := deps.Container(ctx)
	if err != nil {
		return err
	}

	result, err := container.SearchService.Search(ctx, substring, page)
	if err != nil {
		return err
	}
	if result.TotalCount == 0 {
		fmt.Fprintln(out, MsgNoMatches)
		return nil
	}

	for _, rec := range result.Items {
		writeRecordLine(out, rec)
	}
	fmt.Fprintf(out, "page %d of %d (%s matches)\n",
		result.Page, result.TotalPages(), humanize.Comma(int64(result.TotalCount)))
	return nil
}

// showRecord prints a single record
func showRecord(ctx context.Context, out io.Writer, deps *Deps, messageID string) error {
	if _, err := domain.ParseMessageID(messageID); err != nil {
		return err
	}
	container, err := deps.Container(ctx)
	if err != nil {
		return err
	}

	rec, err := container.Store.FindByCorrelationKey(ctx, messageID)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", messageID, err)
	}

	view := recordView{InteractionRecord: rec}
	if posted, err := domain.MessageTime(rec.CorrelationKey); err == nil {
		view.MessageTime = &posted
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// recordView adds the message's own timestamp, decoded from its id.
type recordView struct {
	domain.InteractionRecord
	MessageTime *time.Time `json:"message_time,omitempty"`
}

// exportRecords writes every record to path
func exportRecords(ctx context.Context, out io.Writer, deps *Deps, path string) error {
	container, err := deps.Container(ctx)
	if err != nil {
		return err
	}

	if err := container.Store.ExportJSON(ctx, path); err != nil {
		return fmt.Errorf("failed to export records to %s: %w", path, err)
	}
	fmt.Fprintf(out, "Exported records to %s\n", path)
	return nil
}

func writeRecordLine(out io.Writer, rec domain.InteractionRecord) {
	state := "live"
	if rec.Deleted {
		state = "deleted"
	}
	fmt.Fprintf(out, "%s | %s | %s | %s | %s | %s\n",
		rec.CreatedAt.Format(domain.TimestampFormat),
		humanize.Time(rec.CreatedAt),
		rec.CorrelationKey,
		state,
		rec.Author.DisplayName,
		rec.Prompt)
}
