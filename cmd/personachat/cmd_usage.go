package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"personachat/internal/usage"
)

var usageJSON bool

// usageCmd prints accumulated token usage
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage by persona, model and provider",
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "Print raw JSON")
}

func runUsage(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	stats := a.usage.Stats()
	out := cmd.OutOrStdout()
	if usageJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "Requests: %d\n", stats.Requests)
	fmt.Fprintf(out, "Tokens:   %d (in %d, out %d)\n", stats.Total.Total, stats.Total.Input, stats.Total.Output)
	printBreakdown(cmd, "By persona", stats.ByPersona)
	printBreakdown(cmd, "By model", stats.ByModel)
	printBreakdown(cmd, "By provider", stats.ByProvider)
	return nil
}

func printBreakdown(cmd *cobra.Command, title string, m map[string]usage.TokenCounts) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return m[keys[i]].Total > m[keys[j]].Total })

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", title)
	for _, k := range keys {
		c := m[k]
		fmt.Fprintf(out, "  %-24s %8d (in %d, out %d)\n", k, c.Total, c.Input, c.Output)
	}
}
