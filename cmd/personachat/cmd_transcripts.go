package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var transcriptLimit int

// transcriptsCmd browses archived transcripts
var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Browse archived transcripts",
	Long: `List and print transcripts saved by /export in the chat or by ask --archive.

Subcommands:
  list - List archived transcripts, newest first
  show - Print one transcript`,
	RunE: runTranscriptsList,
}

var transcriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived transcripts, newest first",
	RunE:  runTranscriptsList,
}

var transcriptsShowCmd = &cobra.Command{
	Use:   "show <transcript-id>",
	Short: "Print an archived transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscriptsShow,
}

func init() {
	transcriptsCmd.PersistentFlags().IntVarP(&transcriptLimit, "limit", "n", 20, "Maximum transcripts to list (0 for all)")
	transcriptsCmd.AddCommand(transcriptsListCmd)
	transcriptsCmd.AddCommand(transcriptsShowCmd)
}

func runTranscriptsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.requireArchive()
	if err != nil {
		return err
	}
	entries, err := store.List(cmd.Context(), transcriptLimit)
	if err != nil {
		return fmt.Errorf("failed to list transcripts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No archived transcripts found.")
		return nil
	}
	fmt.Fprintln(out, "Archived Transcripts")
	fmt.Fprintln(out, strings.Repeat("─", 50))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s  %s  %-10s %3d turns  %s\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.PersonaName, e.Turns, e.Model)
	}
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "Total: %d transcripts\n", len(entries))
	return nil
}

func runTranscriptsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.requireArchive()
	if err != nil {
		return err
	}
	e, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("transcript %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), e.Text)
	return nil
}
