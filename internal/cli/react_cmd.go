package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haytac/cogbot/internal/reaction"
	"github.com/spf13/cobra"
)

// NewReactCmd previews the reactions the react command would add for text,
// without connecting to Discord.
func NewReactCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "react <text>",
		Short:   "Preview the emoji reactions planned for a piece of text",
		Example: "  cogbot react hello",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			text := strings.Join(args, " ")

			plan, err := reaction.NewPlanner(nil).Plan(text)
			switch {
			case errors.Is(err, reaction.ErrUnresolvableDuplicate):
				fmt.Fprintln(out, "Cannot react: the text repeats a character too often.")
				return nil
			case errors.Is(err, reaction.ErrEmptyResult):
				fmt.Fprintln(out, "Nothing to react with.")
				return nil
			case err != nil:
				return err
			}

			strategy := plan.Strategy
			if strategy == "" {
				strategy = "direct"
			}
			fmt.Fprintf(out, "Strategy: %s\n", strategy)
			fmt.Fprintf(out, "Reactions (%d): %s\n", len(plan.Tokens), formatTokens(plan.Tokens))
			return nil
		},
	}
}

func formatTokens(tokens []reaction.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
