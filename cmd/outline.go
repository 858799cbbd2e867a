package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mdlive/internal/syntax"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the heading outline of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutline,
}

func init() {
	outlineCmd.Flags().Bool("tree", false, "dump the full syntax tree instead")
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	tree := syntax.NewParser().ParseContext(cmd.Context(), data)

	out := cmd.OutOrStdout()
	if dump, _ := cmd.Flags().GetBool("tree"); dump {
		return tree.Dump(out)
	}
	for _, h := range tree.Headings() {
		indent := strings.Repeat("  ", max(h.Level-1, 0))
		if _, err := fmt.Fprintf(out, "%s%s  (line %d)\n", indent, h.Text, h.Line); err != nil {
			return err
		}
	}
	return nil
}
