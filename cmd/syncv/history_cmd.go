package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gmurga/syncv/internal/history"
)

func init() {
	rootCmd.AddCommand(newHistoryCmd())
}

func newHistoryCmd() *cobra.Command {
	var dbPath string
	var runID string
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sync passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				events, err := store.Events(runID)
				if err != nil {
					return err
				}
				printEvents(cmd, events)
				return nil
			}

			runs, err := store.Runs(limit)
			if err != nil {
				return err
			}
			printRuns(cmd, runs)
			return nil
		},
	}

	historyCmd.Flags().StringVarP(&dbPath, "history-db", "d", "", "path of the sqlite history file")
	historyCmd.Flags().StringVarP(&runID, "run", "r", "", "show the events of one run instead of the run list")
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to show")
	historyCmd.MarkFlagRequired("history-db")

	return historyCmd
}

func printRuns(cmd *cobra.Command, runs []history.RunRecord) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Run", "Started", "Took", "Created", "Copied", "Updated", "Deleted", "Skipped", "Errors", "Bytes"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range runs {
		table.Append([]string{
			r.RunID,
			r.Started.Local().Format(time.RFC3339),
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
			strconv.Itoa(r.DirsCreated),
			strconv.Itoa(r.FilesCopied),
			strconv.Itoa(r.FilesUpdated),
			strconv.Itoa(r.FilesDeleted + r.DirsDeleted),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Errors),
			humanize.Bytes(uint64(r.BytesCopied)),
		})
	}
	table.Render()
}

func printEvents(cmd *cobra.Command, events []history.EventRecord) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Action", "Path", "Status", "Error"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, e := range events {
		table.Append([]string{e.Action, e.Path, e.Status, e.Error})
	}
	table.Render()
}
