package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/cellrope/internal/config"
	"github.com/dshills/cellrope/internal/engine"
	"github.com/dshills/cellrope/internal/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath    string
	jsonOut       bool
	logLevel      string
	ambiguousWide bool
	normalize     bool
	fg, bg        string
	bold          bool

	cfg *config.Config
	log *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cellrope",
		Short: "Inspect terminal cell encoding and cell/text offset mapping",
		Long: `cellrope encodes UTF-8 text into terminal cells the way a terminal
line stores it, and shows how cells map to UTF-16 text offsets.

Text is taken from the first argument, or from stdin when no argument is
given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	pf.BoolVar(&a.jsonOut, "json", false, "write JSON instead of text")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&a.ambiguousWide, "ambiguous-wide", false, "treat East Asian ambiguous-width characters as wide")
	pf.BoolVar(&a.normalize, "normalize", false, "NFC-normalize clusters before interning")
	pf.StringVar(&a.fg, "fg", "", "foreground color name or #rrggbb for the encoded text")
	pf.StringVar(&a.bg, "bg", "", "background color name or #rrggbb for the encoded text")
	pf.BoolVar(&a.bold, "bold", false, "encode the text bold")

	root.AddCommand(
		a.cellsCmd(),
		a.textCmd(),
		a.deltaCmd(),
		a.editCmd(),
	)
	return root
}

// setup builds the configuration: defaults, then the file, then
// CELLROPE_* variables, then explicit flags.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("ambiguous-wide") {
		cfg.Registry.AmbiguousWide = a.ambiguousWide
	}
	if flags.Changed("normalize") {
		cfg.Registry.Normalize = a.normalize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: cmd.ErrOrStderr(),
		Prefix: "cellrope",
	}).WithField("command", cmd.Name())
	a.log.Debug("config loaded (expansion factor %d)", cfg.Rope.ExpansionFactor)
	return nil
}

func parseColor(name string) (tcell.Color, error) {
	if name == "" {
		return tcell.ColorDefault, nil
	}
	c := tcell.GetColor(strings.ToLower(name))
	if c == tcell.ColorDefault {
		return c, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}

// style returns the style selected by --fg, --bg and --bold.
func (a *app) style() (tcell.Style, error) {
	fg, err := parseColor(a.fg)
	if err != nil {
		return tcell.StyleDefault, fmt.Errorf("--fg: %w", err)
	}
	bg, err := parseColor(a.bg)
	if err != nil {
		return tcell.StyleDefault, fmt.Errorf("--bg: %w", err)
	}
	return tcell.StyleDefault.Foreground(fg).Background(bg).Bold(a.bold), nil
}

// input returns args[0], or stdin with one trailing newline removed.
func input(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// line encodes text into a fresh Line.
func (a *app) line(text string) (*engine.Line, error) {
	st, err := a.style()
	if err != nil {
		return nil, err
	}
	return engine.New(
		engine.WithConfig(a.cfg),
		engine.WithLogger(a.log),
		engine.WithText(text),
		engine.WithTextStyle(st),
	)
}
