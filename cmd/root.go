package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/mdlive/internal/config"
	"github.com/zjrosen/mdlive/internal/decorate"
	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/tracing"
	"github.com/zjrosen/mdlive/internal/ui/livepreview"
	"github.com/zjrosen/mdlive/internal/ui/styles"
	"github.com/zjrosen/mdlive/internal/widget"
)

func init() {
	// Query the terminal background before any program starts so the OSC 11
	// reply cannot race bubbletea's input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	version    = "dev"
	cfgFile    string
	debug      bool
	cfg        config.Config
	configPath string
	cleanups   []func()
)

var rootCmd = &cobra.Command{
	Use:   "mdlive [file]",
	Short: "A live-preview Markdown editor for the terminal",
	Long: `mdlive edits Markdown in place: markup away from the cursor is hidden or
drawn as widgets (bullets, checkboxes, math, diagrams) and the construct
under the cursor shows its source.`,
	Version:           version,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runEditor,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/mdlive/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write a debug log (also MDLIVE_DEBUG=1)")
	rootCmd.Flags().BoolP("line-numbers", "n", false, "show line numbers")
	rootCmd.Flags().Bool("no-auto-reload", false, "do not reload when the file changes on disk")
}

// setup loads the config and starts logging, tracing and the theme. It runs
// before every command.
func setup(_ *cobra.Command, _ []string) error {
	v := config.NewViper(cfgFile)
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded
	configPath = v.ConfigFileUsed()
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	if err := initLog(); err != nil {
		return err
	}

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  "mdlive",
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown", err)
		}
	})

	if err := styles.ApplyTheme(cfg.Theme.StyleTheme()); err != nil {
		return fmt.Errorf("applying theme: %w", err)
	}
	return nil
}

func initLog() error {
	path := cfg.Log.Path
	if path == "" && (debug || os.Getenv("MDLIVE_DEBUG") != "") {
		path = filepath.Join(os.TempDir(), "mdlive.log")
	}
	if path == "" {
		return nil
	}
	closeLog, err := log.Init(path)
	if err != nil {
		return fmt.Errorf("opening log %s: %w", path, err)
	}
	log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	cleanups = append(cleanups, closeLog)
	log.Info(log.CatConfig, "mdlive starting", "version", version, "config", configPath)
	return nil
}

// engineOptions turns the decorate config into engine options.
func engineOptions(c config.Config) []decorate.Option {
	return []decorate.Option{
		decorate.WithDiagramLanguages(c.Decorate.DiagramLanguages...),
		decorate.WithBullet(c.Decorate.Bullet),
		decorate.WithCheckboxGlyphs(c.Decorate.CheckboxChecked, c.Decorate.CheckboxUnchecked),
	}
}

// newRenderers builds the widget services for a document. Relative image
// paths resolve against the document's folder.
func newRenderers(c config.Config, docPath string) *widget.Renderers {
	return widget.NewRenderers(
		widget.WithCacheTTL(c.Cache.TTL),
		widget.WithImageRoot(imageRoot(docPath)),
	)
}

func imageRoot(docPath string) string {
	if docPath == "" || docPath == "-" {
		return ""
	}
	return filepath.Dir(docPath)
}

func newEngine(c config.Config, docPath string) *decorate.Engine {
	return decorate.New(append(engineOptions(c), decorate.WithRenderers(newRenderers(c, docPath)))...)
}

func runEditor(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	if noReload, _ := cmd.Flags().GetBool("no-auto-reload"); noReload {
		cfg.Editor.AutoReload = false
	}
	if lineNumbers, _ := cmd.Flags().GetBool("line-numbers"); lineNumbers {
		cfg.Editor.LineNumbers = true
	}

	renderers := newRenderers(cfg, path)
	defer renderers.Close()

	model, err := livepreview.New(livepreview.Config{
		Path:           path,
		EngineOptions:  engineOptions(cfg),
		Renderers:      renderers,
		GlamourStyle:   cfg.Render.Style,
		Highlight:      cfg.Editor.Highlight,
		LineNumbers:    cfg.Editor.LineNumbers,
		AutoReload:     cfg.Editor.AutoReload,
		ReloadDebounce: cfg.Editor.ReloadDebounce,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	zone.NewGlobal()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	final, err := p.Run()
	if m, ok := final.(livepreview.Model); ok {
		m.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		cleanups = nil
	}()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
