package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/treefile"
)

func renderCmd(g *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <document.yaml>",
		Short: "Render a tree document to HTML",
		Long: `Render one YAML tree document and print the HTML.

Examples:
  tessera render page.yaml
  tessera render page.yaml -o page.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, g, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func runRender(cmd *cobra.Command, g *globalFlags, path, output string) error {
	engine, err := newEngine(g)
	if err != nil {
		return err
	}

	doc, err := treefile.Load(path, engine.Options())
	if err != nil {
		return err
	}

	html, err := engine.RenderDocument(cmd.Context(), doc.Node)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return errors.New("E180").WithDetail(err.Error()).Wrap(err)
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, html); err != nil {
		return err
	}
	if output == "" {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
