// Command tessera renders, previews and exports YAML tree documents.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/tessera"
	"github.com/vango-dev/tessera/internal/config"
	"github.com/vango-dev/tessera/internal/errors"
)

// Version information set at build time.
var (
	version = tessera.Version
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	config      string
	logLevel    string
	noColor     bool
	errorFormat string
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		format, _ := root.PersistentFlags().GetString("error-format")
		style, _ := errors.ParseStyle(format)
		printError(os.Stderr, err, style)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "tessera",
		Short: "Render markup trees to safe HTML",
		Long: `Tessera builds markup trees and serializes them to safe HTML.

Tree documents are YAML files describing nodes, layout stacks and grids.
Use tessera to render one document, preview a directory over HTTP or
export a directory to disk or S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			errors.SetColor(!g.noColor)
			if _, ok := errors.ParseStyle(g.errorFormat); !ok {
				return errors.New("E202").
					WithDetailf("--error-format %q", g.errorFormat).
					WithSuggestion("Use text, compact or json")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.config, "config", "c", "", "Config file or directory (default: nearest tessera.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&g.errorFormat, "error-format", "text", "Error output format (text, compact, json)")

	rootCmd.AddCommand(
		renderCmd(g),
		serveCmd(g),
		exportCmd(g),
		benchCmd(g),
		explainCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig resolves the configuration: an explicit --config path, else
// the nearest project root, else defaults.
func loadConfig(g *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case g.config != "":
		info, statErr := os.Stat(g.config)
		if statErr == nil && info.IsDir() {
			cfg, err = config.Load(g.config)
		} else {
			cfg, err = config.LoadFile(g.config)
		}
	default:
		root, findErr := config.FindProjectRoot(".")
		if findErr != nil {
			cfg = config.New()
		} else {
			cfg, err = config.Load(root)
		}
	}
	if err != nil {
		return nil, err
	}

	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	return cfg, nil
}

func newEngine(g *globalFlags, opts ...tessera.Option) (*tessera.Engine, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	return tessera.New(cfg, opts...)
}

// printError prints err to w in style.
func printError(w io.Writer, err error, style errors.Style) {
	errors.Fprint(w, err, style)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", errors.Paint(errors.Green, "✓"), fmt.Sprintf(format, args...))
}
