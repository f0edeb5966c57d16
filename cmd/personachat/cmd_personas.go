package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var personaCategory string

// personasCmd lists the catalog
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available personas",
	RunE:  runPersonasList,
}

var personasShowCmd = &cobra.Command{
	Use:   "show <persona-id>",
	Short: "Show one persona's prompt and greeting",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonasShow,
}

func init() {
	personasCmd.Flags().StringVar(&personaCategory, "category", "", "Only list this category")
	personasCmd.AddCommand(personasShowCmd)
}

func runPersonasList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	shown := 0
	for _, category := range a.catalog.Categories() {
		if personaCategory != "" && !strings.EqualFold(category, personaCategory) {
			continue
		}
		fmt.Fprintf(out, "%s\n", category)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		for _, p := range a.catalog.InCategory(category) {
			fmt.Fprintf(out, "  %-12s %-20s %s\n", p.ID, p.DisplayName(), p.Trait)
			shown++
		}
		fmt.Fprintln(out)
	}
	if shown == 0 {
		return fmt.Errorf("no personas in category %q", personaCategory)
	}
	fmt.Fprintf(out, "Total: %d personas\n", shown)
	return nil
}

func runPersonasShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.catalog.Get(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", p.DisplayName(), p.ID)
	fmt.Fprintf(out, "Category: %s\n", p.Category)
	if p.Trait != "" {
		fmt.Fprintf(out, "Trait:    %s\n", p.Trait)
	}
	if p.Backstory != "" {
		fmt.Fprintf(out, "\n%s\n", p.Backstory)
	}
	fmt.Fprintf(out, "\nSystem prompt:\n  %s\n", p.SystemPrompt)
	fmt.Fprintf(out, "\nGreeting:\n  %s\n", p.GreetingText())
	return nil
}
