package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/tessera/internal/errors"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Print the category, message and explanation of an error code.
Without a code, list every registered code.

Examples:
  tessera explain E140
  tessera explain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range errors.Codes() {
					t, _ := errors.Lookup(code)
					fmt.Fprintf(w, "%s  %-10s %s\n", errors.Paint(errors.Bold, code), t.Category, t.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			t, ok := errors.Lookup(code)
			if !ok {
				return errors.New("E202").
					WithDetailf("unknown error code %q", args[0]).
					WithSuggestion("Run 'tessera explain' to list the codes")
			}
			fmt.Fprintf(w, "%s %s\n", errors.Paint(errors.Bold, code+":"), t.Message)
			fmt.Fprintf(w, "  Category: %s\n", t.Category)
			fmt.Fprintf(w, "  %s\n", t.Detail)
			return nil
		},
	}
	return cmd
}
