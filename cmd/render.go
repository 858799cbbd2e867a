package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/mdlive/internal/ui/markdown"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a file as it appears in reading mode",
	Long: `Render Markdown with glamour and print it. Math, diagrams and wiki links
are drawn the same way the editor draws them. Reads stdin when no file or
"-" is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntP("width", "w", 0, "wrap width (default: render.width or the terminal width)")
	renderCmd.Flags().StringP("style", "s", "", "glamour style (default: render.style)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
		path string
	)
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = renderWidth(cfg.Render.Width)
	}
	style, _ := cmd.Flags().GetString("style")
	if style == "" {
		style = cfg.Render.Style
	}

	engine := newEngine(cfg, path)
	defer engine.Renderers().Close()
	r, err := markdown.New(width, style, engine)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(cmd.Context(), string(data))
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

// renderWidth picks the configured width, then the terminal's, then 80.
func renderWidth(configured int) int {
	if configured > 0 {
		return configured
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
