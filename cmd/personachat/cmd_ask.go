package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"personachat/internal/archive"
	"personachat/internal/session"
)

var (
	askTimeout time.Duration
	askArchive bool
)

// askCmd sends one message and prints the reply
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message to a persona and print the reply",
	Long: `Primes the persona, sends a single message and prints the reply.

Example:
  personachat ask --persona riku "What is honor?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "Overall timeout")
	askCmd.Flags().BoolVar(&askArchive, "archive", false, "Save the exchange to the transcript archive")
}

func runAsk(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return session.ErrEmptyMessage
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.startPersona()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	st := session.NewState(cfg.LLM.APIKey)
	manager := a.newManager()
	if _, err := manager.EnsureReady(ctx, st, p, cfg.Generation); err != nil {
		if errors.Is(err, session.ErrNoCredential) {
			return fmt.Errorf("%w: pass --api-key or set GEMINI_API_KEY", err)
		}
		return err
	}
	reply, err := manager.Send(ctx, st, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Speaker(), reply)

	if askArchive {
		store, err := a.requireArchive()
		if err != nil {
			return err
		}
		snap := st.Snapshot()
		entry := &archive.Entry{
			SessionID:   snap.SessionID,
			PersonaID:   p.ID,
			PersonaName: p.Name,
			Model:       snap.Config.Model,
			Turns:       len(snap.Turns),
			Text:        st.Export(),
		}
		if err := store.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to archive transcript: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "archived as %s\n", entry.ID)
	}
	return nil
}
