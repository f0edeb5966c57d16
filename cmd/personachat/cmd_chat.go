package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"personachat/cmd/personachat/chat"
	"personachat/cmd/personachat/ui"
	"personachat/internal/session"
)

var exportDir string

// chatCmd starts the interactive interface. It is also the root default.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	Long: `Opens the terminal chat interface.

Without an API key you are asked for one first. The key is kept in memory only.
Type /help inside the chat for commands.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory for exported transcripts (default: current)")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.startPersona()
	if err != nil {
		return err
	}

	model := chat.New(chat.Options{
		State:     session.NewState(cfg.LLM.APIKey),
		Build:     a.build,
		Session:   a.sessionOptions(),
		Catalog:   a.catalog,
		Persona:   p,
		Config:    cfg.Generation,
		Archive:   a.archive,
		Usage:     a.usage,
		Styles:    ui.NewStyles(ui.ThemeByName(cfg.UI.Theme)),
		ExportDir: exportDir,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}
